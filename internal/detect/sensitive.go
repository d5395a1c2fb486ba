package detect

import (
	"regexp"
	"strings"
)

// LabelSensitivePattern is reported for secret assignments in commands.
const LabelSensitivePattern = "sensitive-pattern"

// envFile is the dotenv name; every ".env.<variant>" component is sensitive
// too, except the sample markers.
const envFile = ".env"

// sensitiveNames are credential-bearing path components or component runs.
var sensitiveNames = []string{
	"secrets.json",
	"credentials.json",
	"private.key",
	"id_rsa",
	"id_ed25519",
	".ssh/config",
	".aws/credentials",
}

var sensitiveExtensions = []string{".pem", ".key", ".pfx", ".p12"}

// sampleMarkers exempt template files from the sensitive-path check.
var sampleMarkers = []string{".env.sample", ".env.example"}

// secretAssignments are matched case-sensitively against the raw command.
var secretAssignments = []*regexp.Regexp{
	regexp.MustCompile(`API_KEY\s*[=:]`),
	regexp.MustCompile(`SECRET_KEY\s*[=:]`),
	regexp.MustCompile(`PASSWORD\s*[=:]`),
	regexp.MustCompile(`AWS_SECRET`),
	regexp.MustCompile(`PRIVATE_KEY`),
}

// SensitivePath flags a file path naming a credential-bearing file. Paths
// containing a sample marker are exempt.
func SensitivePath(p string) (res Result) {
	defer guard(&res)

	if isSample(p) {
		return NoMatch
	}
	return sensitiveComponents(p)
}

// SensitiveCommand flags shell commands that reference a credential-bearing
// file or assign a secret-named variable. Sample markers are removed before
// matching so "cp .env.example .env" still matches on ".env".
func SensitiveCommand(cmd Command) (res Result) {
	defer guard(&res)

	raw := cmd.Raw
	for _, m := range sampleMarkers {
		raw = strings.ReplaceAll(raw, m, "")
	}

	for _, inv := range cmd.Invocations {
		for _, tok := range append([]string{inv.Name}, inv.Args...) {
			for _, operand := range strings.FieldsFunc(tok, isOperandSeparator) {
				if isSample(operand) {
					continue
				}
				if r := sensitiveComponents(operand); r.Matched {
					return r
				}
			}
		}
	}

	for _, re := range secretAssignments {
		if re.MatchString(raw) {
			return match(LabelSensitivePattern)
		}
	}
	return NoMatch
}

// isOperandSeparator splits redirections and option values off a token.
func isOperandSeparator(r rune) bool {
	switch r {
	case '>', '<', '=', ',', '"', '\'', ' ', '\t':
		return true
	}
	return false
}

func isSample(p string) bool {
	for _, m := range sampleMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}

func sensitiveComponents(p string) Result {
	parts := pathComponents(strings.ToLower(p))
	for _, part := range parts {
		if part == envFile || strings.HasPrefix(part, envFile+".") {
			return match(part)
		}
	}
	for _, name := range sensitiveNames {
		if containsRun(parts, strings.Split(name, "/")) {
			return match(name)
		}
	}
	for _, part := range parts {
		for _, ext := range sensitiveExtensions {
			if len(part) > len(ext) && strings.HasSuffix(part, ext) {
				return match("*" + ext)
			}
		}
	}
	return NoMatch
}

// pathComponents splits on both separators so Windows paths are covered.
func pathComponents(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' || r == '\\' })
}

// containsRun reports whether run appears as consecutive elements of parts.
func containsRun(parts, run []string) bool {
	for i := 0; i+len(run) <= len(parts); i++ {
		ok := true
		for j := range run {
			if parts[i+j] != run[j] {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
