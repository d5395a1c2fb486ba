package sanitize

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	gitleaksConfig "github.com/zricethezav/gitleaks/v8/config"
	"github.com/zricethezav/gitleaks/v8/detect"
	gitleaksRegexp "github.com/zricethezav/gitleaks/v8/regexp"
)

// Finding is a secret reported by the deep scan.
type Finding struct {
	RuleID      string
	Description string
	Line        int
	Secret      string
}

// DeepScanner runs the gitleaks default rule set (several hundred patterns)
// over text that already passed the built-in rules.
type DeepScanner struct {
	mu       sync.Mutex
	detector *detect.Detector
}

// NewDeepScanner builds a detector from the gitleaks default config plus an
// optional allowlist.
func NewDeepScanner(allowlist *Allowlist) (*DeepScanner, error) {
	detector, err := detect.NewDetectorDefaultConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load gitleaks config: %w", err)
	}

	if !allowlist.Empty() {
		if err := applyAllowlist(&detector.Config, allowlist); err != nil {
			return nil, err
		}
	}

	return &DeepScanner{detector: detector}, nil
}

// Findings scans content without modifying it.
func (d *DeepScanner) Findings(content string) []Finding {
	if content == "" {
		return nil
	}

	d.mu.Lock()
	found := d.detector.DetectString(content)
	d.mu.Unlock()

	out := make([]Finding, 0, len(found))
	for _, f := range found {
		out = append(out, Finding{
			RuleID:      f.RuleID,
			Description: f.Description,
			Line:        f.StartLine,
			Secret:      f.Secret,
		})
	}
	return out
}

// Redact replaces every reported secret with the marker. Longer secrets go
// first so a secret containing another is removed whole.
func (d *DeepScanner) Redact(content string) string {
	findings := d.Findings(content)
	if len(findings) == 0 {
		return content
	}

	secrets := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Secret != "" && f.Secret != Redacted {
			secrets = append(secrets, f.Secret)
		}
	}
	sort.Slice(secrets, func(i, j int) bool { return len(secrets[i]) > len(secrets[j]) })

	for _, s := range secrets {
		content = strings.ReplaceAll(content, s, Redacted)
	}
	return content
}

// applyAllowlist appends a global allowlist entry to the gitleaks config.
func applyAllowlist(cfg *gitleaksConfig.Config, allowlist *Allowlist) error {
	global := &gitleaksConfig.Allowlist{
		Description: "toolgate project/user allowlist",
	}

	for _, p := range allowlist.Paths {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("%w: path pattern '%s': %v", ErrInvalidRegex, p, err)
		}
		global.Paths = append(global.Paths, (*gitleaksRegexp.Regexp)(re))
	}
	for _, p := range allowlist.Regexes {
		re, err := regexp.Compile(p)
		if err != nil {
			return fmt.Errorf("%w: content pattern '%s': %v", ErrInvalidRegex, p, err)
		}
		global.Regexes = append(global.Regexes, (*gitleaksRegexp.Regexp)(re))
	}
	global.StopWords = append(global.StopWords, allowlist.Regexes...)

	cfg.Allowlists = append(cfg.Allowlists, global)
	return nil
}
