// Package warn produces advisory warnings for file modifications that the
// gate allows.
package warn

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/fyrsmithlabs/toolgate/internal/action"
	"github.com/fyrsmithlabs/toolgate/pkg/git"
)

// binaryExtensions are treated as non-text files.
var binaryExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".ico": true, ".webp": true,
	".pdf": true, ".zip": true, ".tar": true, ".gz": true, ".tgz": true, ".bz2": true, ".xz": true, ".7z": true, ".rar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true, ".o": true, ".bin": true, ".class": true, ".jar": true,
	".pyc": true, ".wasm": true, ".sqlite": true, ".db": true,
	".mp3": true, ".mp4": true, ".mov": true, ".avi": true, ".wav": true, ".flac": true,
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
}

// lockFiles maps a dependency manifest to the lock files generated from it.
var lockFiles = map[string][]string{
	"package.json":    {"package-lock.json", "yarn.lock", "pnpm-lock.yaml"},
	"pyproject.toml":  {"uv.lock", "poetry.lock"},
	"Cargo.toml":      {"Cargo.lock"},
	"go.mod":          {"go.sum"},
	"Gemfile":         {"Gemfile.lock"},
	"composer.json":   {"composer.lock"},
	"requirements.in": {"requirements.txt"},
}

// Generator runs the warning heuristics.
type Generator struct {
	largeFileBytes int64
	protected      []string
}

// NewGenerator returns a generator that flags files of at least
// largeFileBytes and edits on any of the protected branches.
func NewGenerator(largeFileBytes int64, protected []string) *Generator {
	return &Generator{
		largeFileBytes: largeFileBytes,
		protected:      protected,
	}
}

// Check returns the warnings for a file modification. Relative paths resolve
// against cwd. currentBranch is called at most once and may return "" when the
// branch is unknown.
func (g *Generator) Check(in action.FileInput, cwd string, currentBranch func() string) []string {
	if !in.IsWrite() || in.Path == "" {
		return nil
	}

	path := in.Path
	if !filepath.IsAbs(path) && cwd != "" {
		path = filepath.Join(cwd, path)
	}

	var warnings []string
	if w := binaryFile(path); w != "" {
		warnings = append(warnings, w)
	}
	if w := g.largeFile(path); w != "" {
		warnings = append(warnings, w)
	}
	if w := manifestPair(path); w != "" {
		warnings = append(warnings, w)
	}
	if currentBranch != nil {
		if branch := currentBranch(); git.IsProtected(branch, g.protected) {
			warnings = append(warnings, fmt.Sprintf("Editing directly on protected branch '%s'; consider a feature branch", branch))
		}
	}
	return warnings
}

func binaryFile(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if !binaryExtensions[ext] {
		return ""
	}
	return fmt.Sprintf("%s looks like a binary file (%s); text edits may corrupt it", filepath.Base(path), ext)
}

// largeFile measures the file currently on disk, not the pending content.
func (g *Generator) largeFile(path string) string {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	if info.Size() < g.largeFileBytes {
		return ""
	}
	return fmt.Sprintf("%s is large (%s); consider targeted edits",
		filepath.Base(path), humanize.IBytes(uint64(info.Size())))
}

func manifestPair(path string) string {
	locks, ok := lockFiles[filepath.Base(path)]
	if !ok {
		return ""
	}
	dir := filepath.Dir(path)
	var present []string
	for _, lock := range locks {
		if _, err := os.Stat(filepath.Join(dir, lock)); err == nil {
			present = append(present, lock)
		}
	}
	if len(present) == 0 {
		return ""
	}
	return fmt.Sprintf("%s changed; regenerate %s to keep it in sync",
		filepath.Base(path), strings.Join(present, ", "))
}
