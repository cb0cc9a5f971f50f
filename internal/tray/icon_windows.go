//go:build windows

package tray

import (
	"bytes"
	"fmt"
	"image"

	ico "github.com/sergeymakinen/go-ico"
)

// platformIcon re-encodes the icon as ICO, the only format the Windows
// notification area loads
func platformIcon(_ []byte, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := ico.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode ico: %w", err)
	}
	return buf.Bytes(), nil
}
