package tray

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
)

// ErrEmptyIcon is returned when icon data is empty
var ErrEmptyIcon = errors.New("empty icon data")

// DecodeIcon validates PNG icon data and converts it to the byte format the
// platform tray expects
func DecodeIcon(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyIcon
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode icon: %w", err)
	}

	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("icon has invalid bounds %dx%d", b.Dx(), b.Dy())
	}

	return platformIcon(data, img)
}

func cloneIcon(data []byte) []byte {
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp
}
