package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/fnscript/lang"
	"github.com/ardnew/fnscript/log"
)

const (
	defaultEditor = "vi"
	editIndent    = 4
)

// editCommand implements [tea.ExecCommand]. It writes the session's
// functions to a temporary file, opens the user's editor on it, and parses
// the result, offering to edit again until the file parses or the user
// declines.
type editCommand struct {
	program *lang.Program
	ctxFunc func() context.Context
	logger  log.Logger
	editor  string

	edited *lang.Program // set by Run on success; nil if the file was emptied

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// editDoneMsg reports the outcome of an [editCommand].
type editDoneMsg struct {
	program *lang.Program
	err     error
}

// edit returns the command that runs the editor and reports back with an
// [editDoneMsg].
func (m model) edit() tea.Cmd {
	c := &editCommand{
		program: m.session.Program(),
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
		editor:  editorCommand(os.Getenv("VISUAL"), os.Getenv("EDITOR")),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	return tea.Exec(c, func(err error) tea.Msg {
		return editDoneMsg{program: c.edited, err: err}
	})
}

// editorCommand returns the first non-empty editor setting.
func editorCommand(candidates ...string) string {
	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}

	return defaultEditor
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-parse-retry loop.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	var buf bytes.Buffer
	if err := c.program.Format(ctx, &buf, editIndent); err != nil {
		return fmt.Errorf("format program: %w", err)
	}

	f, err := os.CreateTemp("", "fnscript-repl-*.fn")
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	content := buf.Bytes()
	in := bufio.NewReader(c.stdin)

	for {
		if err := os.WriteFile(path, content, 0o600); err != nil {
			return err
		}

		if err := c.runEditor(ctx, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			c.logger.TraceContext(ctx, "edit emptied")

			return nil
		}

		prog, err := lang.Parse(string(data))

		c.logger.TraceContext(ctx, "edit parse",
			slog.Int("source_length", len(data)),
			slog.Bool("success", err == nil))

		if err == nil {
			c.edited = prog

			return nil
		}

		fmt.Fprintf(c.stderr, "\n%s\n", describe(string(data), err))
		fmt.Fprint(c.stdout, "Edit again? [Y/n] ")

		answer, err := in.ReadString('\n')
		if err != nil || !confirmed(answer) {
			return ErrEditDeclined
		}

		content = data
	}
}

func (c *editCommand) runEditor(ctx context.Context, path string) error {
	args := strings.Fields(c.editor)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	return cmd.Run()
}

// confirmed reports whether answer to a yes/no prompt defaulting to yes
// means yes.
func confirmed(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "n", "no":
		return false
	}

	return true
}
