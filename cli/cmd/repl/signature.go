package repl

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// functionCall describes the innermost call enclosing the cursor.
type functionCall struct {
	name     string
	argIndex int
	inCall   bool
}

// detectFunctionCall finds the innermost unclosed call before cursor and
// the index of the argument being typed. Parentheses and commas inside
// string literals are ignored.
func detectFunctionCall(input string, cursor int) functionCall {
	cursor = min(max(cursor, 0), len(input))

	var (
		stack    []functionCall
		inString bool
	)

	for i := 0; i < cursor; i++ {
		c := input[i]

		if c == '"' {
			inString = !inString

			continue
		}

		if inString {
			continue
		}

		switch c {
		case '(':
			stack = append(stack, functionCall{name: calleeBefore(input, i), inCall: true})
		case ')':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ',':
			if len(stack) > 0 {
				stack[len(stack)-1].argIndex++
			}
		}
	}

	if len(stack) == 0 || stack[len(stack)-1].name == "" {
		return functionCall{}
	}

	return stack[len(stack)-1]
}

// calleeBefore returns the identifier ending right before the '(' at open,
// or "" for a grouping parenthesis.
func calleeBefore(input string, open int) string {
	end := open
	for end > 0 && input[end-1] == ' ' {
		end--
	}

	start := end
	for start > 0 && isWordRune(rune(input[start-1])) && input[start-1] != ':' {
		start--
	}

	name := input[start:end]
	if name == "" || name[0] < 'A' || (name[0] > 'Z' && name[0] < 'a') || name[0] > 'z' {
		return ""
	}

	switch name {
	case "if", "else", "fn":
		return ""
	}

	return name
}

// splitSignature splits "name(a, b) => T" into its name, parameters, and
// the text following the parameter list.
func splitSignature(sig string) (name string, params []string, rest string) {
	open := strings.Index(sig, "(")
	closing := strings.LastIndex(sig, ")")

	if open < 0 || closing < open {
		return sig, nil, ""
	}

	if inner := strings.TrimSpace(sig[open+1 : closing]); inner != "" {
		params = strings.Split(inner, ", ")
	}

	return sig[:open], params, sig[closing+1:]
}

// activeParam returns the parameter index highlighted for argIndex. A
// trailing variadic parameter absorbs every extra argument.
func activeParam(params []string, argIndex int) int {
	if len(params) == 0 {
		return -1
	}

	if argIndex >= len(params) {
		if strings.HasSuffix(params[len(params)-1], "...") {
			return len(params) - 1
		}

		return -1
	}

	return argIndex
}

var (
	signatureStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	signatureActiveStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
)

// renderSignatureHint renders sig with the parameter for argIndex
// highlighted.
func renderSignatureHint(sig string, argIndex int) string {
	name, params, rest := splitSignature(sig)
	active := activeParam(params, argIndex)

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render(", "))
		}

		if i == active {
			b.WriteString(signatureActiveStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")" + rest))

	return b.String()
}
