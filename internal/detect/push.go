package detect

import (
	"strings"

	"github.com/fyrsmithlabs/toolgate/pkg/git"
)

// LabelAllBranches is reported for forced --all and --mirror pushes.
const LabelAllBranches = "all-branches"

// gitValueOptions take a separate value before the subcommand.
var gitValueOptions = map[string]bool{
	"-C": true, "-c": true, "--git-dir": true, "--work-tree": true, "--namespace": true,
}

// pushValueOptions take a separate value inside git push.
var pushValueOptions = map[string]bool{
	"-o": true, "--push-option": true, "--repo": true, "--receive-pack": true, "--exec": true,
}

// ForcePush flags a forced git push whose target is a protected branch. When
// the push names no branch, currentBranch supplies the implied one; it may be
// nil and is only called when needed.
func ForcePush(cmd Command, protected []string, currentBranch func() string) (res Result) {
	defer guard(&res)

	for _, inv := range cmd.Find("git") {
		args, ok := pushArgs(inv.Args)
		if !ok {
			continue
		}
		if r := forcePush(args, protected, currentBranch); r.Matched {
			return r
		}
	}
	return NoMatch
}

// pushArgs returns the arguments following "push" in a git invocation.
func pushArgs(args []string) ([]string, bool) {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if gitValueOptions[a] {
			i++
			continue
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		if strings.ToLower(a) == "push" {
			return args[i+1:], true
		}
		return nil, false
	}
	return nil, false
}

func forcePush(args []string, protected []string, currentBranch func() string) Result {
	force := false
	everything := false
	var positional []string

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--force", strings.HasPrefix(a, "--force-with-lease"):
			force = true
		case a == "--all", a == "--mirror", a == "--branches":
			everything = true
		case pushValueOptions[a]:
			i++
		case strings.HasPrefix(a, "--"):
		case shortFlags(a):
			if strings.Contains(a, "f") {
				force = true
			}
		default:
			positional = append(positional, a)
		}
	}

	// The remote comes first; the rest are refspecs.
	var refspecs []string
	if len(positional) > 1 {
		refspecs = positional[1:]
	}
	for _, r := range refspecs {
		if strings.HasPrefix(r, "+") {
			force = true
		}
	}
	if !force {
		return NoMatch
	}
	if everything {
		return match(LabelAllBranches)
	}

	// A remote slot holding a protected name is treated as a branch.
	if len(positional) > 0 && git.IsProtected(positional[0], protected) {
		return match(strings.ToLower(positional[0]))
	}

	impliesCurrent := len(refspecs) == 0
	for _, r := range refspecs {
		dst := refspecTarget(r)
		if dst == "head" {
			impliesCurrent = true
			continue
		}
		if git.IsProtected(dst, protected) {
			return match(dst)
		}
	}

	if impliesCurrent && currentBranch != nil {
		if branch := currentBranch(); branch != "" && git.IsProtected(branch, protected) {
			return match(strings.ToLower(branch))
		}
	}
	return NoMatch
}

// refspecTarget returns the lowercased destination branch of a refspec.
func refspecTarget(refspec string) string {
	r := strings.TrimPrefix(refspec, "+")
	if idx := strings.LastIndex(r, ":"); idx >= 0 {
		if dst := r[idx+1:]; dst != "" {
			r = dst
		} else {
			r = r[:idx]
		}
	}
	r = strings.TrimPrefix(r, "refs/heads/")
	return strings.ToLower(r)
}
