// Package browser opens URLs in the user's default web browser.
package browser

import (
	"fmt"
	"io"
	"net/url"
	"os/exec"
	"runtime"
)

// launcher starts the browser command. Tests replace it.
var launcher = func(cmd *exec.Cmd) error {
	return cmd.Start()
}

// Command returns the command that opens rawURL on the current platform.
// Only http and https URLs are accepted.
func Command(rawURL string) (*exec.Cmd, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("refusing to open non-HTTP URL %q", rawURL)
	}

	switch runtime.GOOS {
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", rawURL), nil
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// Open opens rawURL in the default browser without waiting for it.
func Open(rawURL string) error {
	cmd, err := Command(rawURL)
	if err != nil {
		return err
	}
	if err := launcher(cmd); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// Navigator opens URLs in the browser. When Out is set and the browser
// cannot be started, the URL is printed there instead and the navigation
// counts as done.
type Navigator struct {
	Out io.Writer
}

func (n *Navigator) Navigate(rawURL string) error {
	err := Open(rawURL)
	if err == nil {
		return nil
	}
	if n.Out == nil {
		return err
	}

	fmt.Fprintf(n.Out, "Could not open a browser (%v).\nOpen this URL to continue:\n\n  %s\n\n", err, rawURL)
	return nil
}
