package tray

import (
	_ "embed"
)

var (
	//go:embed icons/status-gray.png
	iconGray []byte

	//go:embed icons/status-green.png
	iconGreen []byte

	//go:embed icons/status-red.png
	iconRed []byte

	//go:embed icons/status-yellow.png
	iconYellow []byte
)

// StatusKind is the state shown by the tray icon
type StatusKind int

const (
	StatusUnknown StatusKind = iota
	StatusReady
	StatusError
	StatusBuilding
)

// ParseStatus maps a status name to its kind. Matching is exact and case
// sensitive; anything unrecognized is StatusUnknown.
func ParseStatus(s string) StatusKind {
	switch s {
	case "ready":
		return StatusReady
	case "error":
		return StatusError
	case "building":
		return StatusBuilding
	default:
		return StatusUnknown
	}
}

// String returns the status name accepted by ParseStatus
func (k StatusKind) String() string {
	switch k {
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusBuilding:
		return "building"
	default:
		return "unknown"
	}
}

// Color names the icon variant used for the status
func (k StatusKind) Color() string {
	switch k {
	case StatusReady:
		return "green"
	case StatusError:
		return "red"
	case StatusBuilding:
		return "yellow"
	default:
		return "gray"
	}
}

// Icon returns the embedded PNG for the status
func (k StatusKind) Icon() []byte {
	switch k {
	case StatusReady:
		return iconGreen
	case StatusError:
		return iconRed
	case StatusBuilding:
		return iconYellow
	default:
		return iconGray
	}
}

// DefaultIcon returns the gray icon shown before any status is set
func DefaultIcon() []byte {
	return iconGray
}
