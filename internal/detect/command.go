package detect

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/shlex"
)

// Command is a shell command prepared for detection.
type Command struct {
	// Raw is the command as submitted.
	Raw string
	// Normalized has whitespace collapsed and is lowercased.
	Normalized string
	// Invocations are the simple commands found in Raw, in order.
	Invocations []Invocation
}

// Invocation is one simple command: a program name and its arguments.
type Invocation struct {
	// Name is the lowercased base name of the program.
	Name string
	// Args keeps the original case; quotes are removed.
	Args []string
}

var assignmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=`)

// wrappers run their first non-option argument as a command.
var wrappers = map[string]bool{
	"sudo":    true,
	"doas":    true,
	"env":     true,
	"nohup":   true,
	"time":    true,
	"nice":    true,
	"command": true,
	"xargs":   true,
	"timeout": true,
	"exec":    true,
}

// wrapperValueFlags take a separate value that is not the wrapped command.
var wrapperValueFlags = map[string]bool{
	"-u": true, "-g": true, "-C": true, "-D": true, "-h": true,
	"-U": true, "-n": true, "-I": true, "-P": true, "-L": true,
	"-s": true, "-k": true,
}

// ParseCommand splits raw into invocations. It never fails: input the shell
// lexer rejects is split on whitespace instead.
func ParseCommand(raw string) Command {
	cmd := Command{
		Raw:        raw,
		Normalized: strings.ToLower(strings.Join(strings.Fields(raw), " ")),
	}
	for _, seg := range splitSegments(raw) {
		tokens, err := shlex.Split(seg)
		if err != nil {
			tokens = strings.Fields(seg)
		}
		cmd.Invocations = append(cmd.Invocations, invocations(tokens, false)...)
	}
	return cmd
}

// Find returns the invocations of the named program.
func (c Command) Find(name string) []Invocation {
	var out []Invocation
	for _, inv := range c.Invocations {
		if inv.Name == name {
			out = append(out, inv)
		}
	}
	return out
}

// splitSegments splits on ; & && || | and newlines outside quotes.
func splitSegments(command string) []string {
	var segments []string
	var current strings.Builder
	inSingleQuote := false
	inDoubleQuote := false

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			segments = append(segments, s)
		}
		current.Reset()
	}

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if ch == '\\' && !inSingleQuote && i+1 < len(runes) {
			current.WriteRune(ch)
			current.WriteRune(runes[i+1])
			i++
			continue
		}
		if ch == '\'' && !inDoubleQuote {
			inSingleQuote = !inSingleQuote
			current.WriteRune(ch)
			continue
		}
		if ch == '"' && !inSingleQuote {
			inDoubleQuote = !inDoubleQuote
			current.WriteRune(ch)
			continue
		}
		if inSingleQuote || inDoubleQuote {
			current.WriteRune(ch)
			continue
		}

		switch ch {
		case '&':
			// Keep redirections such as 2>&1 and &> intact.
			if i > 0 && runes[i-1] == '>' || i+1 < len(runes) && runes[i+1] == '>' {
				current.WriteRune(ch)
				continue
			}
			if i+1 < len(runes) && runes[i+1] == '&' {
				i++
			}
			flush()
		case '|':
			if i+1 < len(runes) && runes[i+1] == '|' {
				i++
			}
			flush()
		case ';', '\n':
			flush()
		default:
			current.WriteRune(ch)
		}
	}
	flush()

	return segments
}

// invocations extracts the command at the head of tokens, looking through
// wrappers, plus any command substitutions among its arguments.
func invocations(tokens []string, nested bool) []Invocation {
	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		if assignmentPattern.MatchString(tok) {
			i++
			continue
		}
		name := commandName(tok)
		if !wrappers[name] {
			break
		}
		i++
		for i < len(tokens) && strings.HasPrefix(tokens[i], "-") {
			if wrapperValueFlags[tokens[i]] {
				i++
			}
			i++
		}
		if name == "timeout" && i < len(tokens) {
			i++ // duration
		}
	}
	if i >= len(tokens) {
		return nil
	}

	name := commandName(tokens[i])
	if name == "" {
		return nil
	}

	args := make([]string, 0, len(tokens)-i-1)
	for _, a := range tokens[i+1:] {
		if nested {
			a = strings.TrimRight(a, ")`")
		}
		args = append(args, a)
	}

	out := []Invocation{{Name: name, Args: args}}
	for j := i + 1; j < len(tokens); j++ {
		if rest, ok := substitutionStart(tokens[j]); ok {
			sub := append(strings.Fields(rest), tokens[j+1:]...)
			out = append(out, invocations(sub, true)...)
		}
	}
	return out
}

// substitutionStart reports whether tok opens a command substitution and
// returns the remainder of the token.
func substitutionStart(tok string) (string, bool) {
	for _, p := range []string{"$(", "`", "<(", ">("} {
		if idx := strings.Index(tok, p); idx >= 0 {
			return tok[idx+len(p):], true
		}
	}
	return "", false
}

// commandName reduces a token in command position to a lowercase base name.
func commandName(tok string) string {
	tok = strings.TrimLeft(tok, "$(`{")
	tok = strings.TrimRight(tok, ")`;")
	if tok == "" {
		return ""
	}
	return strings.ToLower(filepath.Base(tok))
}

// shortFlags reports whether arg is a cluster of single-letter options.
func shortFlags(arg string) bool {
	return len(arg) > 1 && arg[0] == '-' && arg[1] != '-'
}
