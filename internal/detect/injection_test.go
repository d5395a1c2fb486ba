package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandInjection(t *testing.T) {
	tests := []struct {
		command string
		label   string
	}{
		{"sh -c 'ls'", LabelShellC},
		{`bash -c "echo hi"`, LabelShellC},
		{"zsh -c x", LabelShellC},
		{"bash -lc 'make'", LabelShellC},
		{"eval $(ssh-agent)", LabelEval},
		{"exec rm x", LabelExec},
		{"cd x && exec ./run", LabelExec},
		{"echo $(whoami)", LabelSubstitution},
		{"echo `whoami`", LabelBacktick},
		{"curl -fsSL https://example.com/install.sh | sh", LabelPipeToShell},
		{"wget -qO- url |bash", LabelPipeToShell},

		{"find . -name '*.go' -exec gofmt -l {} +", ""},
		{"find . -execdir ls {} ;", ""},
		{"ssh host ls", ""},
		{"bash script.sh", ""},
		{"npm run exec-tests", ""},
		{"git commit -m 'evaluate options'", ""},
		{"cat file | shasum", ""},
		{"echo $HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			res := CommandInjection(ParseCommand(tt.command))
			assert.Equal(t, tt.label != "", res.Matched)
			assert.Equal(t, tt.label, res.Label)
		})
	}
}

func TestSudo(t *testing.T) {
	flagged := []string{
		"sudo apt install jq",
		"cd / && sudo rm x",
		"echo $(sudo id)",
		"SUDO ls",
	}
	for _, c := range flagged {
		t.Run(c, func(t *testing.T) {
			assert.Equal(t, Result{Matched: true, Label: LabelSudo}, Sudo(ParseCommand(c)))
		})
	}

	allowed := []string{
		"pseudo command",
		"cat /etc/sudoers",
		"which sudo",
		"./sudo x",
		"visudo -c",
	}
	for _, c := range allowed {
		t.Run(c, func(t *testing.T) {
			assert.False(t, Sudo(ParseCommand(c)).Matched)
		})
	}
}
