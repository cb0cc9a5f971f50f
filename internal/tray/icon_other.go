//go:build !windows

package tray

import "image"

// platformIcon passes PNG data through unchanged; macOS and Linux trays take PNG
func platformIcon(data []byte, _ image.Image) ([]byte, error) {
	return cloneIcon(data), nil
}
