package detect

import (
	"regexp"
)

// Labels reported by CommandInjection.
const (
	LabelShellC       = "shell-c"
	LabelEval         = "eval"
	LabelExec         = "exec"
	LabelSubstitution = "command-substitution"
	LabelBacktick     = "backtick-substitution"
	LabelPipeToShell  = "pipe-to-shell"
	LabelSudo         = "sudo"
)

type injectionPattern struct {
	label string
	re    *regexp.Regexp
}

// injectionPatterns run against the normalized command. The exec pattern
// skips find's -exec and -execdir actions.
var injectionPatterns = []injectionPattern{
	{LabelShellC, regexp.MustCompile(`\b(?:ba|z)?sh\s+-[a-z]*c\b`)},
	{LabelEval, regexp.MustCompile(`\beval\s+`)},
	{LabelExec, regexp.MustCompile(`(?:^|[^-\w])exec\s+`)},
	{LabelSubstitution, regexp.MustCompile(`\$\([^)]+\)`)},
	{LabelBacktick, regexp.MustCompile("`[^`]+`")},
	{LabelPipeToShell, regexp.MustCompile(`\|\s*(?:sh|bash|zsh)\b`)},
}

var sudoPattern = regexp.MustCompile(`(?:^|[^\w./-])sudo\s`)

// CommandInjection flags constructs that hand control to a nested shell or
// evaluator.
func CommandInjection(cmd Command) (res Result) {
	defer guard(&res)

	for _, p := range injectionPatterns {
		if p.re.MatchString(cmd.Normalized) {
			return match(p.label)
		}
	}
	return NoMatch
}

// Sudo flags a standalone sudo token.
func Sudo(cmd Command) (res Result) {
	defer guard(&res)

	if sudoPattern.MatchString(cmd.Normalized) {
		return match(LabelSudo)
	}
	return NoMatch
}
