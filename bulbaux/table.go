package bulbaux

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
)

// WriteSettingsTable writes s as a table of groups, setting names and values.
func WriteSettingsTable(w io.Writer, s glbulb.Settings) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Group", "Setting", "Value"})
	for _, row := range settingsRows(s) {
		table.Append(row[:])
	}
	table.Render()
}

// WriteFrameStatsTable writes the frame statistics of a session.
func WriteFrameStatsTable(w io.Writer, fs FrameStats) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frames", "Mean", "Min", "Max", "Screenshots"})
	table.Append([]string{
		strconv.Itoa(fs.Frames),
		fs.Mean().String(),
		fs.Min.String(),
		fs.Max.String(),
		strconv.Itoa(fs.Screenshots),
	})
	table.SetFooter([]string{"", "", "", "FPS", fmt.Sprintf("%.1f", fs.FPS())})
	table.Render()
}

// settingsRows lists the settings grouped as they are shown on screen.
func settingsRows(s glbulb.Settings) [][3]string {
	return [][3]string{
		{"Camera", "Distance", fmtf(s.CamDistance)},
		{"", "Yaw", fmtf(s.CamYaw)},
		{"", "Pitch", fmtf(s.CamPitch)},
		{"", "FOV", fmtf(s.FOV)},
		{"", "Auto rotate", strconv.FormatBool(s.AutoRotate)},
		{"", "Rotation speed", fmtf(s.RotationSpeed)},
		{"Fractal", "Power", fmtf(s.Power)},
		{"", "Iterations", strconv.Itoa(s.MaxIterations)},
		{"", "Bailout", fmtf(s.Bailout)},
		{"Raymarch", "Max steps", strconv.Itoa(s.MaxSteps)},
		{"", "Max distance", fmtf(s.MaxDist)},
		{"", "Epsilon", strconv.FormatFloat(float64(s.Epsilon), 'g', 3, 32)},
		{"Shading", "Ambient occlusion", strconv.FormatBool(s.EnableAO)},
		{"", "Soft shadows", strconv.FormatBool(s.EnableShadows)},
		{"", "Color A", fmtColor(s.ColorA)},
		{"", "Color B", fmtColor(s.ColorB)},
	}
}

func fmtf(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', 3, 32)
}

func fmtColor(c ms3.Vec) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", c.X, c.Y, c.Z)
}
