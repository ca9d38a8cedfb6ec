package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles colorizes the parts of a record.
type prettyStyles struct {
	key, time, source, msg lipgloss.Style
	levels                 map[Level]lipgloss.Style
}

func makePrettyStyles(w io.Writer) prettyStyles {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return prettyStyles{
		key:    fg("8"),
		time:   fg("8"),
		source: fg("4"),
		msg:    r.NewStyle().Bold(true),
		levels: map[Level]lipgloss.Style{
			LevelTrace: fg("5"),
			LevelDebug: fg("6"),
			LevelInfo:  fg("2"),
			LevelWarn:  fg("3"),
			LevelError: fg("1").Bold(true),
		},
	}
}

// level returns the style of the nearest named level at or below l.
func (s prettyStyles) level(l Level) lipgloss.Style {
	best, found := LevelTrace, false

	for named := range s.levels {
		if named <= l && (!found || named > best) {
			best, found = named, true
		}
	}

	return s.levels[best]
}

// prettyHandler writes human-oriented records. Text records are one line
// with colored keys; JSON records are indented objects.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	styles prettyStyles
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr
	group  string
}

func newPrettyHandler(w io.Writer, format Format, opts *slog.HandlerOptions) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		styles: makePrettyStyles(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], h.qualify(attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.prefixed(name)

	return &c
}

func (h *prettyHandler) prefixed(key string) string {
	if h.group == "" {
		return key
	}

	return h.group + "." + key
}

func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		if !a.Equal(slog.Attr{}) {
			out = append(out, slog.Attr{Key: h.prefixed(a.Key), Value: a.Value})
		}
	}

	return out
}

// header returns the built-in attributes of r after ReplaceAttr.
func (h *prettyHandler) header(r slog.Record) (timestamp, level string) {
	replace := func(a slog.Attr) slog.Attr {
		if h.opts.ReplaceAttr != nil {
			return h.opts.ReplaceAttr(nil, a)
		}

		return a
	}

	if !r.Time.IsZero() {
		if a := replace(slog.Time(slog.TimeKey, r.Time)); a.Key != "" {
			timestamp = a.Value.String()
		}
	}

	level = replace(slog.Any(slog.LevelKey, r.Level)).Value.String()

	return timestamp, level
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := h.attrs

	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, h.qualify([]slog.Attr{a})...)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeJSON(&buf, r, attrs)
	} else {
		h.writeText(&buf, r, attrs)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) source(r slog.Record) string {
	if !h.opts.AddSource {
		return ""
	}

	if src := r.Source(); src != nil && src.File != "" {
		return fmt.Sprintf("%s:%d", src.File, src.Line)
	}

	return ""
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, r slog.Record, attrs []slog.Attr) {
	timestamp, level := h.header(r)

	var parts []string

	if timestamp != "" {
		parts = append(parts, h.styles.time.Render(timestamp))
	}

	parts = append(parts, h.styles.level(Level(r.Level)).Render(fmt.Sprintf("%-5s", level)))

	if src := h.source(r); src != "" {
		parts = append(parts, h.styles.source.Render(src))
	}

	parts = append(parts, h.styles.msg.Render(r.Message))

	for _, a := range attrs {
		parts = append(parts, h.styles.key.Render(a.Key+"=")+textValue(a.Value))
	}

	buf.WriteString(strings.Join(parts, " "))
	buf.WriteByte('\n')
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, r slog.Record, attrs []slog.Attr) {
	timestamp, level := h.header(r)

	obj := make(map[string]any, len(attrs)+4)
	if timestamp != "" {
		obj[slog.TimeKey] = timestamp
	}

	obj[slog.LevelKey] = level
	obj[slog.MessageKey] = r.Message

	if src := h.source(r); src != "" {
		obj[slog.SourceKey] = src
	}

	for _, a := range attrs {
		obj[a.Key] = jsonValue(a.Value)
	}

	data, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		data = fmt.Appendf(nil, "%q", err.Error())
	}

	buf.Write(data)
	buf.WriteByte('\n')
}

// textValue renders v without quotes unless it contains spaces.
func textValue(v slog.Value) string {
	s := v.Resolve().String()
	if strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}

	return s
}

// jsonValue converts v to a value json.Marshal renders faithfully.
func jsonValue(v slog.Value) any {
	v = v.Resolve()

	switch v.Kind() {
	case slog.KindGroup:
		obj := make(map[string]any)
		for _, a := range v.Group() {
			obj[a.Key] = jsonValue(a.Value)
		}

		return obj
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}

		return v.Any()
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	default:
		return v.String()
	}
}
