// Package browser hands exported files to the desktop's default viewer.
package browser

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// command is replaced in tests.
var command = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenFile opens the file at path with the application registered for its
// type, such as a spreadsheet program for a CSV report.
func OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	switch runtime.GOOS {
	case "darwin":
		return command("open", abs)
	case "linux", "freebsd", "openbsd":
		return command("xdg-open", abs)
	case "windows":
		return command("rundll32", "url.dll,FileProtocolHandler", abs)
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
