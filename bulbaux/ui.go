//go:build !tinygo && cgo

package bulbaux

import (
	"bytes"
	"fmt"
	"image"
	"path/filepath"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glbulb"
	"github.com/soypat/glbulb/glbuild"
	"github.com/soypat/glgl/v4.6-core/glgl"
)

func ui(cfg UIConfig) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	window, term, err := startGLFW(cfg)
	if err != nil {
		return err
	}
	defer term()

	programmer := glbuild.NewDefaultProgrammer()
	var vert, frag bytes.Buffer
	_, err = programmer.WriteVertex(&vert)
	if err != nil {
		return err
	}
	_, err = programmer.WriteFragment(&frag)
	if err != nil {
		return err
	}
	vert.WriteByte(0)
	frag.WriteByte(0)
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vert.String(),
		Fragment: frag.String(),
	})
	if err != nil {
		return fmt.Errorf("compiling raymarch program: %w", err)
	}
	defer prog.Delete()
	prog.Bind()
	sink, err := newUniformSink(prog)
	if err != nil {
		return err
	}

	// Fullscreen quad.
	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	defer gl.DeleteVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	defer gl.DeleteBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	vertices := []float32{
		-1.0, -1.0,
		1.0, -1.0,
		-1.0, 1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(vertices), gl.Ptr(vertices), gl.STATIC_DRAW)
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		return err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))

	hud, err := newHUDRenderer(vbo)
	if err != nil {
		return err
	}
	defer hud.Delete()
	var saver screenshotSaver
	defer saver.Wait()

	// Input is queued by callbacks during PollEvents and applied before synchronizing.
	shared := cfg.Settings
	var (
		actions    []Action
		dragging   bool
		firstMove  bool
		lastX      float64
		lastY      float64
		win        = windowState{showOverlay: cfg.Overlay}
		stats      FrameStats
	)
	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if action == glfw.Press && key == glfw.KeyEscape {
			w.SetShouldClose(true)
		}
	})
	window.SetCharCallback(func(w *glfw.Window, char rune) {
		if a := ActionForRune(char); a != ActionNone {
			actions = append(actions, a)
		}
	})
	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if button != glfw.MouseButtonLeft {
			return
		}
		dragging = action == glfw.Press
		firstMove = dragging
	})
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if !dragging {
			return
		}
		if firstMove {
			lastX, lastY = xpos, ypos
			firstMove = false
		}
		dx, dy := float32(xpos-lastX), float32(lastY-ypos)
		lastX, lastY = xpos, ypos
		shared.Update(func(s *glbulb.Settings) { Drag(s, dx, dy) })
	})
	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		shared.Update(func(s *glbulb.Settings) { Scroll(s, float32(yoff)) })
	})

	ctx := cfg.Context
	start := time.Now()
	lastFrame := start
	logger.Infof("rendering at %dx%d", cfg.Width, cfg.Height)
	for !window.ShouldClose() {
		if ctx != nil && ctx.Err() != nil {
			break
		}
		glfw.PollEvents()
		for _, a := range actions {
			if win.handle(a) {
				continue
			}
			shared.Update(func(s *glbulb.Settings) { ApplyAction(s, a) })
			logger.Debugf("applied %s", a)
		}
		actions = actions[:0]

		width, height := window.GetFramebufferSize()
		if width == 0 || height == 0 {
			// Minimized.
			glfw.WaitEventsTimeout(0.1)
			continue
		}
		gl.Viewport(0, 0, int32(width), int32(height))
		elapsed := float32(time.Since(start).Seconds())
		snap := shared.Synchronize(elapsed, width, height)

		prog.Bind()
		gl.BindVertexArray(vao)
		err = sink.Upload(snap)
		if err != nil {
			logger.Warningf("uploading uniforms: %s", err)
		}
		gl.DrawArrays(gl.TRIANGLES, 0, 6)

		if win.showOverlay {
			err = hud.Draw(shared.Load(), stats.FPS(), width, height)
			if err != nil {
				logger.Warningf("drawing overlay: %s", err)
			}
		}
		if win.screenshot {
			win.screenshot = false
			stats.Screenshots++
			saveScreenshot(&saver, cfg.ScreenshotDir, width, height)
		}
		window.SwapBuffers()
		now := time.Now()
		stats.Record(now.Sub(lastFrame))
		lastFrame = now
	}

	var buf bytes.Buffer
	WriteFrameStatsTable(&buf, stats)
	logger.Noticef("frame statistics\n%s", buf.String())
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}

func startGLFW(cfg UIConfig) (window *glfw.Window, term func(), err error) {
	if err := glfw.Init(); err != nil {
		return nil, nil, fmt.Errorf("initializing GLFW: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.SRGBCapable, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	window, err = glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, nil, fmt.Errorf("creating window: %w", err)
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, nil, fmt.Errorf("initializing OpenGL: %w", err)
	}
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}
	// Fragment output is linear, let the framebuffer encode it.
	gl.Enable(gl.FRAMEBUFFER_SRGB)
	logger.Infof("OpenGL %s", gl.GoStr(gl.GetString(gl.VERSION)))
	term = func() {
		window.Destroy()
		glfw.Terminate()
	}
	return window, term, nil
}

// uniformSink uploads snapshots to the uniforms of a bound program.
type uniformSink struct {
	locs map[string]int32
}

var _ glbulb.UniformSink = (*uniformSink)(nil)

func newUniformSink(prog glgl.Program) (*uniformSink, error) {
	sink := &uniformSink{locs: make(map[string]int32)}
	err := glbuild.ForEachUniform(glbulb.Snapshot{}, func(name string, _ any) error {
		loc, err := prog.UniformLocation(name + "\x00")
		if err != nil {
			// Unused uniforms are optimized out by the compiler. Uploads to -1 are ignored.
			logger.Debugf("uniform %s inactive: %s", name, err)
			loc = -1
		}
		sink.locs[name] = loc
		return nil
	})
	return sink, err
}

func (sink *uniformSink) Upload(snap glbulb.Snapshot) error {
	err := glbuild.ForEachUniform(&snap, func(name string, value any) error {
		loc := sink.locs[name]
		switch v := value.(type) {
		case float32:
			gl.Uniform1f(loc, v)
		case int32:
			gl.Uniform1i(loc, v)
		case ms2.Vec:
			gl.Uniform2f(loc, v.X, v.Y)
		case ms3.Vec:
			gl.Uniform3f(loc, v.X, v.Y, v.Z)
		default:
			return fmt.Errorf("unsupported uniform type %T", value)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return glgl.Err()
}

func saveScreenshot(saver *screenshotSaver, dir string, width, height int) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(width), int32(height), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if err := glgl.Err(); err != nil {
		logger.Errorf("reading framebuffer: %s", err)
		return
	}
	flipRows(img)
	saver.Save(filepath.Join(dir, ScreenshotName(time.Now())), img)
}

const hudVertex = glbuild.VersionStr + `in vec2 aPos;
out vec2 vUV;
uniform vec4 u_rect;
void main() {
	vec2 uv = aPos * 0.5 + 0.5;
	vUV = vec2(uv.x, 1.0 - uv.y);
	gl_Position = vec4(mix(u_rect.xy, u_rect.zw, uv), 0.0, 1.0);
}
` + "\x00"

const hudFragment = glbuild.VersionStr + `in vec2 vUV;
out vec4 fragColor;
uniform sampler2D u_hud;
void main() {
	fragColor = texture(u_hud, vUV);
}
` + "\x00"

// hudRenderer draws the settings overlay texture in the top left corner.
type hudRenderer struct {
	overlay *Overlay
	img     *image.RGBA
	prog    glgl.Program
	vao     uint32
	tex     uint32
	rectLoc int32
	last    glbulb.Settings
	lastFPS float32
	drawn   bool
}

func newHUDRenderer(quadVBO uint32) (*hudRenderer, error) {
	overlay, err := NewOverlay(13)
	if err != nil {
		return nil, err
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   hudVertex,
		Fragment: hudFragment,
	})
	if err != nil {
		return nil, fmt.Errorf("compiling overlay program: %w", err)
	}
	prog.Bind()
	defer prog.Unbind()
	h := &hudRenderer{
		overlay: overlay,
		img:     image.NewRGBA(image.Rectangle{Max: overlay.Size()}),
		prog:    prog,
	}
	h.rectLoc, err = prog.UniformLocation("u_rect\x00")
	if err != nil {
		prog.Delete()
		return nil, err
	}
	gl.GenVertexArrays(1, &h.vao)
	gl.BindVertexArray(h.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, quadVBO)
	posAttrib, err := prog.AttribLocation("aPos\x00")
	if err != nil {
		h.Delete()
		return nil, err
	}
	gl.EnableVertexAttribArray(posAttrib)
	gl.VertexAttribPointer(posAttrib, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))

	gl.GenTextures(1, &h.tex)
	gl.BindTexture(gl.TEXTURE_2D, h.tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	bb := h.img.Bounds()
	// Overlay pixels are sRGB encoded, sampling decodes them to linear.
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.SRGB8_ALPHA8, int32(bb.Dx()), int32(bb.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	if err := glgl.Err(); err != nil {
		h.Delete()
		return nil, fmt.Errorf("creating overlay texture: %w", err)
	}
	return h, nil
}

// Draw redraws the overlay texture when the displayed values change and
// blends it over the frame.
func (h *hudRenderer) Draw(s glbulb.Settings, fps float32, width, height int) error {
	h.prog.Bind()
	defer h.prog.Unbind()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, h.tex)
	fpsChanged := fps-h.lastFPS > 0.5 || h.lastFPS-fps > 0.5
	if !h.drawn || s != h.last || fpsChanged {
		h.overlay.Draw(h.img, s, fps)
		bb := h.img.Bounds()
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(bb.Dx()), int32(bb.Dy()), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(h.img.Pix))
		h.last, h.lastFPS, h.drawn = s, fps, true
	}
	sz := h.img.Bounds().Size()
	x1 := -1 + 2*float32(sz.X)/float32(width)
	y0 := 1 - 2*float32(sz.Y)/float32(height)
	gl.Uniform4f(h.rectLoc, -1, y0, x1, 1)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.BindVertexArray(h.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.Disable(gl.BLEND)
	return glgl.Err()
}

func (h *hudRenderer) Delete() {
	if h.tex != 0 {
		gl.DeleteTextures(1, &h.tex)
	}
	if h.vao != 0 {
		gl.DeleteVertexArrays(1, &h.vao)
	}
	h.prog.Delete()
}
