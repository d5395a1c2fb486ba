package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectoryScan(t *testing.T) {
	tests := []struct {
		command string
		label   string
	}{
		{"grep -r secret node_modules/", "node_modules"},
		{"grep -rn password src/__pycache__/x", "__pycache__"},
		{"grep --recursive foo ./dist", "dist"},
		{"find node_modules -name '*.js'", "node_modules"},
		{"find . -name '*.js' -path '*/node_modules/*'", "node_modules"},
		{"find . -name build -type d", "build"},
		{"rg TODO .git", ".git"},
		{"rg foo -g 'node_modules/**'", "node_modules"},
		{"ag foo dist/", "dist"},
		{"ls -R build", "build"},
		{"ls -laR .venv", ".venv"},
		{"tree venv", "venv"},
		{"find /usr/bin -name python", "bin"},
		{"find .", LabelUnfilteredFind},
		{"find ./", LabelUnfilteredFind},
		{"find . -print", LabelUnfilteredFind},
		{"cd app; find .", LabelUnfilteredFind},
		{`find . -not -path "*/foo/*"`, LabelUnfilteredFind},

		{`find . -name "*.py" -maxdepth 2`, ""},
		{"find . -type f", ""},
		{`find . -not -path "*/node_modules/*"`, ""},
		{"find . -path ./node_modules -prune -o -print", ""},
		{"find src -name '*.go' -exec grep -l foo {} +", ""},
		{"grep -r dist src/", ""},
		{"grep -rn TODO src --exclude-dir=node_modules", ""},
		{"grep secret node_modules/x.js", ""},
		{"rg TODO -g '!node_modules'", ""},
		{"rg build src", ""},
		{"rg -e build src", ""},
		{"ls -la node_modules", ""},
		{"ls -r build", ""},
		{"tree -I 'node_modules|dist' src", ""},
		{"tree", ""},
		{"cat build.gradle", ""},
		{"npm run build", ""},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			res := DirectoryScan(ParseCommand(tt.command))
			assert.Equal(t, tt.label != "", res.Matched)
			assert.Equal(t, tt.label, res.Label)
		})
	}
}
