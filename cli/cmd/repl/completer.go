package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// commands are the REPL commands, completed when the input begins with ':'.
var commands = []string{":clear", ":edit", ":help", ":list", ":quit"}

// isWordRune reports whether r can appear in an identifier or command word.
func isWordRune(r rune) bool {
	return r == '_' || r == ':' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when the cursor is between two non-word characters.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size
	}

	end = cursor
	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// complete returns the candidates matching the word at cursor, ranked best
// first. Commands are offered only for a word at the start of the line.
func complete(input string, cursor int, names []string) (matches fuzzy.Matches, start, end int) {
	word, start, end := wordBounds(input, cursor)
	if word == "" {
		return nil, start, end
	}

	candidates := names
	if strings.HasPrefix(word, ":") {
		if strings.TrimSpace(input[:start]) != "" {
			return nil, start, end
		}

		candidates = commands
	}

	return fuzzy.Find(word, candidates), start, end
}

// renderCandidateBar renders matches on one line no wider than width,
// ending with an ellipsis when some do not fit.
func renderCandidateBar(matches fuzzy.Matches, selected int, width int) string {
	const sep = "  "

	ellipsis := hintStyle.Render("…")

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, i == selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += len(sep)
		}

		if i > 0 && used+w+len(sep)+1 > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate highlights the characters of match that matched the word.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, bold := suggestionStyle, suggestionStyle.Bold(true)
	if selected {
		base, bold = selectedStyle, selectedStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(bold.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
