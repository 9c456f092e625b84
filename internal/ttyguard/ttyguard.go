// Package ttyguard keeps terminal capability probes out of machine-readable
// output. Import it for side effects from main; it must run before the
// first lipgloss render.
//
// Lipgloss/termenv query the terminal background with OSC/DSR sequences
// when stdout is a TTY. Those bytes end up in front of the JSON printed by
// `trackr spec`, `trackr options` or `trackr summary --json` when that
// output is captured through a PTY. Setting CI=1 early disables the probe.
package ttyguard

import (
	"os"
	"strings"
)

// EnvTestMode marks non-interactive test runs.
const EnvTestMode = "TRACKR_TEST_MODE"

func init() {
	if os.Getenv("CI") != "" {
		return
	}
	if !ShouldSuppress(os.Args[1:], os.Getenv(EnvTestMode) != "") {
		return
	}
	_ = os.Setenv("CI", "1")
}

// machineCommands print JSON or plain text only.
var machineCommands = map[string]bool{
	"spec":    true,
	"options": true,
	"version": true,
	"import":  true,
}

// valueFlags are the root flags that take a separate value argument.
var valueFlags = map[string]bool{
	"--config":      true,
	"--dataset":     true,
	"--log-level":   true,
	"--cpu-profile": true,
}

// ShouldSuppress reports whether the invocation described by args produces
// output that must not carry terminal escape sequences.
func ShouldSuppress(args []string, testMode bool) bool {
	if testMode {
		return true
	}
	command := ""
	skip := false
	for _, arg := range args {
		switch {
		case skip:
			skip = false
		case arg == "--help" || arg == "-h" || arg == "--json" || arg == "--markdown":
			return true
		case valueFlags[arg]:
			skip = true
		case strings.HasPrefix(arg, "-"):
		case command == "":
			command = arg
		}
	}
	return machineCommands[command]
}
