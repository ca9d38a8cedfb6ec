package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/fnscript/builtin"
	"github.com/ardnew/fnscript/lang"
	"github.com/ardnew/fnscript/log"
)

const prompt = "➜ "

const helpMessage = `Commands:
  :help    Print this message
  :list    List functions and session variables
  :edit    Edit the session's functions in $VISUAL or $EDITOR
  :clear   Forget session variables and clear the screen
  :quit    Exit (also Ctrl+D, or Ctrl+C on an empty line)

Input is a function definition, or statements with an optional trailing
expression. Variables assigned at the prompt persist between inputs.
Tab and Shift+Tab cycle completions; Up and Down browse history.`

var (
	promptStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	resultStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	selectedStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(lipgloss.Color("4"))
)

// Config holds what a REPL session starts from.
type Config struct {
	Program *lang.Program // may be nil
	Globals lang.Env
	History *History // may be nil
	Logger  log.Logger
	Options []lang.Option
}

// Run starts an interactive session on the terminal. It returns when the
// user quits or ctx is canceled.
func Run(ctx context.Context, cfg Config) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if !log.IsTerminal(os.Stdin) || !log.IsTerminal(os.Stdout) {
		return ErrTerminal
	}

	cfg.Logger.TraceContext(ctx, "repl start",
		slog.Int("history", cfg.History.Len()),
		slog.Int("globals", len(cfg.Globals)))

	m := newModel(ctx, cfg)

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

// model is the Bubble Tea model of the REPL.
type model struct {
	ctxFunc    func() context.Context
	input      textinput.Model
	session    *lang.Session
	output     *bytes.Buffer // captures print and println
	history    *History
	historyIdx int
	logger     log.Logger

	matches      fuzzy.Matches
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int

	width    int
	quitting bool
}

const defaultWidth = 80

func newModel(ctx context.Context, cfg Config) model {
	output := new(bytes.Buffer)
	natives := builtin.New(builtin.WithOutput(output))
	opts := append([]lang.Option{lang.WithLogger(cfg.Logger)}, cfg.Options...)

	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.CharLimit = 4096
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		session:    lang.NewSession(cfg.Program, cfg.Globals, natives, opts...),
		output:     output,
		history:    cfg.History,
		historyIdx: cfg.History.Len(),
		logger:     cfg.Logger,
		suggIdx:    -1,
		width:      defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case editDoneMsg:
		return m, tea.Println(m.edited(msg))

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-lipgloss.Width(prompt)-2, 1)

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	return m.input.View() + "\n" + m.hint() + "\n"
}

// hint returns the line shown below the prompt.
func (m model) hint() string {
	input := m.input.Value()

	switch {
	case m.historyIdx < m.history.Len():
		return hintStyle.Render(fmt.Sprintf("history %d/%d", m.historyIdx+1, m.history.Len()))

	case strings.TrimSpace(input) == "":
		return hintStyle.Render("Type an expression, a definition, or :help")
	}

	if call := detectFunctionCall(input, m.cursor()); call.inCall && !m.tabActive {
		if sig, ok := m.signature(call.name); ok {
			return renderSignatureHint(sig, call.argIndex)
		}
	}

	if len(m.matches) > 0 {
		selected := -1
		if m.tabActive {
			selected = m.suggIdx
		}

		return renderCandidateBar(m.matches, selected, m.width)
	}

	return ""
}

// signature returns the call signature of a user function or native.
func (m model) signature(name string) (string, bool) {
	if fn, ok := m.session.Program().Function(name); ok {
		return fn.Signature(), true
	}

	return builtin.Signature(name)
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		m.refresh()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive {
			m.tabActive = false
			m.refresh()

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.browse(-1), nil

	case tea.KeyDown:
		return m.browse(1), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.setCursor(m.preTabCursor)
			m.refresh()
		}

		return m, nil
	}

	var cmd tea.Cmd

	m.tabActive = false
	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh()

	return m, cmd
}

// cursor returns the byte offset of the cursor in the input. The text
// input tracks its cursor in runes.
func (m model) cursor() int {
	value := []rune(m.input.Value())

	return len(string(value[:min(m.input.Position(), len(value))]))
}

// setCursor moves the cursor to the byte offset off.
func (m *model) setCursor(off int) {
	value := m.input.Value()

	m.input.SetCursor(utf8.RuneCountInString(value[:min(off, len(value))]))
}

// refresh recomputes completions for the word at the cursor.
func (m *model) refresh() {
	m.matches, m.wordStart, m.wordEnd = complete(
		m.input.Value(), m.cursor(), m.session.Names())

	if !m.tabActive {
		m.suggIdx = -1
	}
}

// cycle moves the completion selection by step and substitutes it into
// the input. A single candidate is accepted immediately.
func (m model) cycle(step int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		m.replaceWord(m.matches[0].Str)
		m.tabActive = false
		m.matches = nil

		return m
	}

	if !m.tabActive {
		m.tabActive = true
		m.preTabText = m.input.Value()
		m.preTabCursor = m.cursor()
		m.suggIdx = -1

		if step < 0 {
			m.suggIdx = 0
		}
	}

	m.suggIdx = (m.suggIdx + step + n) % n
	m.replaceWord(m.matches[m.suggIdx].Str)

	return m
}

func (m *model) replaceWord(s string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + s + input[m.wordEnd:])
	m.setCursor(m.wordStart + len(s))
	m.wordEnd = m.wordStart + len(s)
}

// browse moves through history by step; moving past the newest entry
// clears the input.
func (m model) browse(step int) model {
	idx := min(max(m.historyIdx+step, 0), m.history.Len())
	if idx == m.historyIdx {
		return m
	}

	m.historyIdx = idx
	m.tabActive = false

	line, _ := m.history.Entry(idx)
	m.input.SetValue(line)
	m.input.CursorEnd()
	m.refresh()

	return m
}

func (m model) submit() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(input); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history write failed", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	lines, action := m.respond(input)

	printed := make([]tea.Cmd, 0, len(lines)+2)
	printed = append(printed, tea.Println(promptStyle.Render(prompt)+input))

	for _, line := range lines {
		printed = append(printed, tea.Println(line))
	}

	switch action {
	case actionQuit:
		m.quitting = true

		printed = append(printed, tea.Quit)
	case actionClear:
		printed = append([]tea.Cmd{tea.ClearScreen}, printed[1:]...)
	case actionEdit:
		printed = append(printed, m.edit())
	}

	return m, tea.Sequence(printed...)
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionClear
	actionEdit
)

// respond evaluates one submitted line and returns the styled lines to
// print.
func (m model) respond(input string) ([]string, action) {
	ctx := m.ctxFunc()

	if cmd, ok := strings.CutPrefix(input, ":"); ok {
		m.logger.TraceContext(ctx, "repl command", slog.String("command", cmd))

		switch strings.TrimSpace(cmd) {
		case "q", "quit", "exit":
			return nil, actionQuit
		case "h", "help":
			return []string{hintStyle.Render(helpMessage)}, actionNone
		case "l", "list":
			return m.list(), actionNone
		case "c", "clear":
			m.session.Clear()

			return nil, actionClear
		case "e", "edit":
			return nil, actionEdit
		default:
			return []string{errorStyle.Render("unknown command :" + cmd + " (try :help)")}, actionNone
		}
	}

	m.output.Reset()

	result, err := m.session.Eval(ctx, input)

	var lines []string

	if out := strings.TrimSuffix(m.output.String(), "\n"); out != "" {
		lines = append(lines, strings.Split(out, "\n")...)
	}

	m.logger.TraceContext(ctx, "repl eval",
		slog.String("input", input),
		slog.Bool("failed", err != nil))

	if err != nil {
		return append(lines, errorStyle.Render(describe(input, err))), actionNone
	}

	if !result.IsUnit() {
		lines = append(lines, resultStyle.Render(result.Literal()))
	}

	return lines, actionNone
}

// edited applies the outcome of an editor session and describes it.
func (m model) edited(msg editDoneMsg) string {
	switch {
	case errors.Is(msg.err, ErrEditDeclined):
		return hintStyle.Render("edit discarded")

	case msg.err != nil:
		return errorStyle.Render("edit failed: " + msg.err.Error())

	case msg.program == nil:
		return hintStyle.Render("edit canceled: file was empty")
	}

	m.session.Replace(msg.program)

	m.logger.TraceContext(m.ctxFunc(), "edit applied",
		slog.Int("function_count", len(msg.program.Functions)))

	return resultStyle.Render(fmt.Sprintf("loaded %d function(s)", len(msg.program.Functions)))
}

// describe renders err for display under the input line.
func describe(input string, err error) string {
	var pe *lang.ParseError
	if errors.As(err, &pe) {
		return strings.TrimSuffix(pe.Format(), "\n")
	}

	var re *lang.RuntimeError
	if errors.As(err, &re) {
		return strings.TrimSuffix(re.Format(input), "\n")
	}

	return "error: " + err.Error()
}

// list describes the session's functions and variables.
func (m model) list() []string {
	var lines []string

	for fn := range m.session.Program().All() {
		lines = append(lines, "  fn "+fn.Signature())
	}

	locals := m.session.Locals()
	for _, name := range m.session.Names() {
		if v, ok := locals[name]; ok {
			lines = append(lines, "  "+name+" = "+hintStyle.Render(v.Literal()))
		}
	}

	if len(lines) == 0 {
		return []string{hintStyle.Render("  (nothing defined)")}
	}

	return lines
}
