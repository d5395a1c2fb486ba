package detect

import (
	"strings"
)

// LabelUnfilteredFind is reported for "find ." without filters or exclusions.
const LabelUnfilteredFind = "current_directory_without_filters"

// RestrictedDirs are heavy or sensitive directories that scans must not enter.
var RestrictedDirs = []string{
	"node_modules",
	".git",
	"__pycache__",
	"dist",
	"build",
	".venv",
	"venv",
	".next",
	".cache",
	"target",
	"bin",
	"obj",
}

// scanArgs is the classified argument list of a scanning command.
type scanArgs struct {
	operands []string
	excluded []string
	filtered bool
	cwd      bool
}

// DirectoryScan flags tree-scanning commands whose operands reference a
// restricted directory, and "find ." traversals that have no name, type or
// depth filter and no exclusion of a restricted directory. The exclusion test
// is syntactic: any excluded pattern naming a restricted directory counts.
func DirectoryScan(cmd Command) (res Result) {
	defer guard(&res)

	for _, inv := range cmd.Invocations {
		var sa scanArgs
		switch inv.Name {
		case "find":
			sa = findArgs(inv.Args)
		case "grep", "egrep", "fgrep":
			if !grepRecursive(inv.Args) {
				continue
			}
			sa = searchArgs(inv.Args, grepOptions)
		case "rg":
			sa = searchArgs(inv.Args, rgOptions)
		case "ag":
			sa = searchArgs(inv.Args, agOptions)
		case "tree":
			sa = treeArgs(inv.Args)
		case "ls":
			if !lsRecursive(inv.Args) {
				continue
			}
			sa = plainArgs(inv.Args)
		default:
			continue
		}

		for _, op := range sa.operands {
			if dir := restrictedComponent(op); dir != "" {
				return match(dir)
			}
		}
		if sa.cwd && !sa.filtered && !sa.excludesRestricted() {
			return match(LabelUnfilteredFind)
		}
	}
	return NoMatch
}

func (s scanArgs) excludesRestricted() bool {
	for _, e := range s.excluded {
		if restrictedComponent(e) != "" {
			return true
		}
	}
	return false
}

func restrictedComponent(p string) string {
	for _, part := range pathComponents(strings.ToLower(p)) {
		for _, dir := range RestrictedDirs {
			if part == dir {
				return dir
			}
		}
	}
	return ""
}

var findMatchers = map[string]bool{
	"-name": true, "-iname": true, "-path": true, "-ipath": true, "-wholename": true,
}

var findFilters = map[string]bool{
	"-name": true, "-iname": true, "-type": true, "-maxdepth": true,
}

func findArgs(args []string) scanArgs {
	var sa scanArgs

	prune := false
	for _, a := range args {
		if a == "-prune" {
			prune = true
		}
	}

	i := 0
	// Starting points precede the expression.
	for ; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "-") || a == "(" || a == "!" {
			break
		}
		if a == "." || a == "./" {
			sa.cwd = true
		}
		sa.operands = append(sa.operands, a)
	}

	for ; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-exec", a == "-execdir", a == "-ok", a == "-okdir":
			for i++; i < len(args) && args[i] != ";" && args[i] != "+"; i++ {
			}
		case (a == "-not" || a == "!") && i+2 < len(args) && findMatchers[args[i+1]]:
			sa.excluded = append(sa.excluded, args[i+2])
			i += 2
		case findMatchers[a] && i+1 < len(args):
			if findFilters[a] {
				sa.filtered = true
			}
			if prune {
				sa.excluded = append(sa.excluded, args[i+1])
			} else {
				sa.operands = append(sa.operands, args[i+1])
			}
			i++
		case findFilters[a]:
			sa.filtered = true
			i++
		case strings.HasPrefix(a, "-"), a == "(", a == ")", a == "!":
		default:
			sa.operands = append(sa.operands, a)
		}
	}
	return sa
}

// searchOptions describes how a search tool's options consume values.
type searchOptions struct {
	pattern  map[string]bool // value is a search pattern
	exclude  map[string]bool // value is an exclusion
	glob     map[string]bool // value is a glob, excluded when prefixed by !
	valued   map[string]bool // value is anything else
	implicit bool            // first positional is the pattern
}

var grepOptions = searchOptions{
	pattern:  map[string]bool{"-e": true, "--regexp": true, "-f": true, "--file": true},
	exclude:  map[string]bool{"--exclude-dir": true, "--exclude": true},
	valued:   map[string]bool{"--include": true, "-A": true, "-B": true, "-C": true, "-m": true, "--max-count": true, "-d": true, "-D": true},
	implicit: true,
}

var rgOptions = searchOptions{
	pattern:  map[string]bool{"-e": true, "--regexp": true, "-f": true, "--file": true},
	glob:     map[string]bool{"-g": true, "--glob": true, "--iglob": true},
	valued:   map[string]bool{"-t": true, "--type": true, "-T": true, "--type-not": true, "-A": true, "-B": true, "-C": true, "-m": true, "--max-count": true, "-d": true, "--max-depth": true, "--ignore-file": true, "-j": true, "--threads": true},
	implicit: true,
}

var agOptions = searchOptions{
	exclude:  map[string]bool{"--ignore": true, "--ignore-dir": true},
	valued:   map[string]bool{"-G": true, "--file-search-regex": true, "--depth": true, "-A": true, "-B": true, "-C": true, "-m": true, "--max-count": true},
	implicit: true,
}

func searchArgs(args []string, opts searchOptions) scanArgs {
	var sa scanArgs
	patternGiven := false
	var positional []string

	for i := 0; i < len(args); i++ {
		a := args[i]
		name, value, inline := strings.Cut(a, "=")
		if !strings.HasPrefix(a, "--") {
			name, value, inline = a, "", false
		}

		var hasValue bool
		if inline {
			hasValue = true
		} else if i+1 < len(args) && (opts.pattern[name] || opts.exclude[name] || opts.glob[name] || opts.valued[name]) {
			value = args[i+1]
			hasValue = true
			i++
		}

		switch {
		case opts.pattern[name]:
			patternGiven = true
		case opts.exclude[name] && hasValue:
			sa.excluded = append(sa.excluded, value)
		case opts.glob[name] && hasValue:
			if strings.HasPrefix(value, "!") {
				sa.excluded = append(sa.excluded, value)
			} else {
				sa.operands = append(sa.operands, value)
			}
		case opts.valued[name]:
		case a == "--":
			positional = append(positional, args[i+1:]...)
			i = len(args)
		case strings.HasPrefix(a, "-") && a != "-":
		default:
			positional = append(positional, a)
		}
	}

	if opts.implicit && !patternGiven && len(positional) > 0 {
		positional = positional[1:]
	}
	sa.operands = append(sa.operands, positional...)
	return sa
}

func treeArgs(args []string) scanArgs {
	var sa scanArgs
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-I" && i+1 < len(args):
			sa.excluded = append(sa.excluded, args[i+1])
			i++
		case (a == "-P" || a == "-L" || a == "-o") && i+1 < len(args):
			i++
		case strings.HasPrefix(a, "-"):
		default:
			sa.operands = append(sa.operands, a)
		}
	}
	return sa
}

func plainArgs(args []string) scanArgs {
	var sa scanArgs
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			sa.operands = append(sa.operands, a)
		}
	}
	return sa
}

func grepRecursive(args []string) bool {
	for _, a := range args {
		if a == "--recursive" || a == "--dereference-recursive" {
			return true
		}
		if shortFlags(a) && strings.ContainsAny(a, "rR") {
			return true
		}
	}
	return false
}

func lsRecursive(args []string) bool {
	for _, a := range args {
		if a == "--recursive" {
			return true
		}
		if shortFlags(a) && strings.Contains(a, "R") {
			return true
		}
	}
	return false
}
