package detect

import (
	"path"
	"strings"
)

// Labels reported by the delete detectors.
const (
	LabelRecursiveForce     = "recursive-force"
	LabelCatastrophicTarget = "catastrophic-target"
)

// catastrophicTargets are compared after path.Clean and lowercasing.
var catastrophicTargets = map[string]bool{
	"/":         true,
	"/*":        true,
	"~":         true,
	"~/*":       true,
	"$home":     true,
	"${home}":   true,
	"$home/*":   true,
	"${home}/*": true,
	"..":        true,
	"../*":      true,
	".":         true,
}

type rmArgs struct {
	recursive bool
	force     bool
	targets   []string
}

func parseRm(args []string) rmArgs {
	var out rmArgs
	operandsOnly := false
	for _, a := range args {
		switch {
		case operandsOnly:
			out.targets = append(out.targets, a)
		case a == "--":
			operandsOnly = true
		case a == "--recursive":
			out.recursive = true
		case a == "--force":
			out.force = true
		case strings.HasPrefix(a, "--"):
		case shortFlags(a):
			if strings.ContainsAny(a, "rR") {
				out.recursive = true
			}
			if strings.ContainsAny(a, "fF") {
				out.force = true
			}
		default:
			out.targets = append(out.targets, a)
		}
	}
	return out
}

// RecursiveForceDelete flags rm invocations that are both recursive and
// forced, whatever the flag order or clustering.
func RecursiveForceDelete(cmd Command) (res Result) {
	defer guard(&res)

	for _, inv := range cmd.Find("rm") {
		if a := parseRm(inv.Args); a.recursive && a.force {
			return match(LabelRecursiveForce)
		}
	}
	return NoMatch
}

// CatastrophicDelete flags recursive rm invocations whose target is the
// filesystem root, the home directory, the parent directory or the current
// directory.
func CatastrophicDelete(cmd Command) (res Result) {
	defer guard(&res)

	for _, inv := range cmd.Find("rm") {
		a := parseRm(inv.Args)
		if !a.recursive {
			continue
		}
		for _, t := range a.targets {
			if isCatastrophic(t) {
				return match(LabelCatastrophicTarget)
			}
		}
	}
	return NoMatch
}

// DestructiveDelete combines RecursiveForceDelete and CatastrophicDelete.
func DestructiveDelete(cmd Command) Result {
	if r := RecursiveForceDelete(cmd); r.Matched {
		return r
	}
	return CatastrophicDelete(cmd)
}

func isCatastrophic(target string) bool {
	if target == "" {
		return false
	}
	return catastrophicTargets[strings.ToLower(path.Clean(target))]
}
