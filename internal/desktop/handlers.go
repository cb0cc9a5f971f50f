package desktop

import (
	"fmt"
	"os/exec"
	"runtime"
)

// openPath hands a file path or URL to the platform opener
func openPath(target string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", target)
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Start()
}
