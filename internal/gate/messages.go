package gate

import (
	"fmt"

	"github.com/fyrsmithlabs/toolgate/internal/config"
	"github.com/fyrsmithlabs/toolgate/internal/sanitize"
)

const scanTip = "Tip: Use Glob or Grep tools instead of bash find/grep for code search."

// explain returns the reason and hint lines for a blocking check. command is
// the shell command, if any; it is sanitized before being echoed.
func explain(check, label, command string) (string, []string) {
	switch check {
	case config.CheckSensitivePath:
		return fmt.Sprintf("Access to sensitive file '%s' is prohibited", label),
			[]string{"Use .env.sample or .env.example for template files instead"}
	case config.CheckSudo:
		return "sudo is disabled for safety (set TOOLGATE_ALLOW_SUDO=1 to allow)", nil
	case config.CheckDestructiveDelete:
		return "Dangerous rm command detected and prevented",
			[]string{"Command: " + sanitize.Text(command)}
	case config.CheckForcePush:
		return fmt.Sprintf("Force push to protected branch '%s' is prohibited", label),
			[]string{"This prevents rewriting production history"}
	case config.CheckDirectoryScan:
		return fmt.Sprintf("Scanning '%s' directory is prohibited", label),
			[]string{"This prevents performance issues and context pollution.", scanTip}
	case config.CheckCommandInjection:
		return "Command injection pattern detected",
			[]string{fmt.Sprintf("Pattern: %s", label)}
	}
	return fmt.Sprintf("Blocked by %s", check), nil
}
