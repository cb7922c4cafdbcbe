//go:build tinygo || !cgo

package bulbaux

import "errors"

func ui(cfg UIConfig) error {
	return errors.New("require cgo for UI rendering")
}
