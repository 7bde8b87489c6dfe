package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrPromptAborted is returned when the user interrupts a prompt with Ctrl+C.
var ErrPromptAborted = errors.New("input aborted")

// contentTerminator ends multi-line input when entered on a line by itself.
const contentTerminator = "."

// ReadContent reads multi-line text from an interactive terminal. Input ends
// at EOF (Ctrl+D) or at a line containing only ".".
func ReadContent(label string, stdin io.ReadCloser, stdout io.Writer) (string, error) {
	fmt.Fprintf(stdout, "%s (finish with a single '.' line or Ctrl+D):\n", label)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		Stdin:           stdin,
		Stdout:          stdout,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	var lines []string
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			return "", ErrPromptAborted
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if line == contentTerminator {
			break
		}
		lines = append(lines, line)
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
