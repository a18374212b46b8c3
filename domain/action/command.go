package action

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// CommandRunner executes a command line and reports failure.
type CommandRunner interface {
	Run(ctx context.Context, commandLine string) error
}

// ShellRunner runs command lines through the platform shell, the same way an
// operator would type them.
type ShellRunner struct{}

// Run implements CommandRunner. A non-zero exit status is returned as an error
// carrying the trimmed combined output.
func (ShellRunner) Run(ctx context.Context, commandLine string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", commandLine)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", commandLine)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("command %q: %w (output: %s)", commandLine, err, strings.TrimSpace(out.String()))
	}
	return nil
}

// RenderCommand substitutes value into the single placeholder of template.
// Both "{value}" and "{dpi}" are recognised.
func RenderCommand(template string, value int) string {
	v := strconv.Itoa(value)
	out := strings.Replace(template, "{value}", v, 1)
	return strings.Replace(out, "{dpi}", v, 1)
}
