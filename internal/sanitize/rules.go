package sanitize

import (
	"regexp"
	"strings"
)

// rule is a single redaction pattern. Labelled rules capture the key in group
// 1 and the value in group 2, keep the key and replace the value; vendor rules
// replace the whole match because the token prefix identifies it.
type rule struct {
	ID       string
	Pattern  *regexp.Regexp
	Labelled bool
}

const (
	sep    = `["']?\s*[=:]\s*["']?`
	value  = `([^\s"'][^\s"']*)`
	bearer = `(?:Bearer\s+)?`
)

func labelled(id, pattern string) rule {
	return rule{ID: id, Pattern: regexp.MustCompile(pattern), Labelled: true}
}

func vendor(id, pattern string) rule {
	return rule{ID: id, Pattern: regexp.MustCompile(pattern)}
}

// labelRules run after the vendor rules and in order; the more specific keys
// precede the generic ones so the label written back is the full key.
var labelRules = []rule{
	labelled("authorization-bearer", `(?i)(Authorization)["']?\s*:\s*["']?Bearer\s+`+value),
	labelled("aws-secret", `(?i)(AWS_SECRET(?:_ACCESS_KEY|_KEY)?)`+sep+value),
	labelled("private-key-assignment", `(?i)(PRIVATE_KEY)`+sep+value),
	labelled("api-key", `(?i)(api_key|apikey|api-key)`+sep+value),
	labelled("password", `(?i)(password|passwd)`+sep+value),
	labelled("secret", `(?i)(secret_key|secret)`+sep+value),
	labelled("token", `(?i)(token|bearer)(?:`+sep+`|\s+)`+bearer+value),
}

// vendorRules match self-identifying credential formats.
var vendorRules = []rule{
	vendor("private-key-block", `-----BEGIN [A-Z ]*PRIVATE KEY(?: BLOCK)?-----(?s:.*?)-----END [A-Z ]*PRIVATE KEY(?: BLOCK)?-----`),
	vendor("private-key", `-----BEGIN [A-Z ]*PRIVATE KEY(?: BLOCK)?-----`),
	vendor("aws-access-key-id", `\b(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}\b`),
	vendor("github-token", `\b(?:ghp|gho|ghu|ghs|ghr)_[A-Za-z0-9]{36}\b`),
	vendor("github-fine-grained", `\bgithub_pat_[A-Za-z0-9_]{22,}`),
	vendor("gitlab-token", `\bglpat-[A-Za-z0-9\-]{20,}`),
	vendor("slack-token", `\bxox[baprs]-[A-Za-z0-9\-]{10,}`),
	vendor("stripe-key", `\b(?:sk|pk|rk)_(?:live|test)_[A-Za-z0-9]{24,}`),
	vendor("database-url", `(?i)\b(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqps?)://[^:\s/]+:[^@\s]+@[^\s"']+`),
	vendor("jwt", `\beyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*`),
	vendor("google-api-key", `\bAIza[A-Za-z0-9_\-]{35}`),
	vendor("anthropic-api-key", `\bsk-ant-[A-Za-z0-9_\-]{20,}`),
	vendor("openai-api-key", `\bsk-(?:proj-)?[A-Za-z0-9]{32,}`),
	vendor("sendgrid-api-key", `\bSG\.[A-Za-z0-9_\-]{22,}\.[A-Za-z0-9_\-]{43,}`),
	vendor("npm-token", `\bnpm_[A-Za-z0-9]{36}\b`),
}

// apply redacts every match of r in s. A labelled value that is already the
// marker is left alone, so applying a rule twice changes nothing.
func (r rule) apply(s string) string {
	if !r.Labelled {
		return r.Pattern.ReplaceAllLiteralString(s, Redacted)
	}

	matches := r.Pattern.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if s[m[4]:m[5]] == Redacted {
			continue
		}
		b.WriteString(s[last:m[0]])
		b.WriteString(s[m[2]:m[3]])
		b.WriteString("=" + Redacted)
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// RuleIDs lists every built-in rule in the order it is applied.
func RuleIDs() []string {
	ids := make([]string, 0, len(labelRules)+len(vendorRules))
	for _, r := range vendorRules {
		ids = append(ids, r.ID)
	}
	for _, r := range labelRules {
		ids = append(ids, r.ID)
	}
	return ids
}
