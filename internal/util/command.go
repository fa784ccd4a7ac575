// Package util provides the low-level building blocks shared by the
// connector and workflow packages: shell command assembly, base64 pipe
// encoding, scoped name tracking, and small slice helpers.
package util

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// StdoutChannel is the sentinel value meaning "the process's own stdout",
// mirroring the Python original's use of asyncio.subprocess.STDOUT as the
// default for both Stdout and Stderr.
const StdoutChannel = ""

// CommandRequest describes a command to be assembled into a single POSIX
// shell line, as consumed by Connector.Run.
type CommandRequest struct {
	Command []string
	Env     []EnvVar // rendered in order, not as a map, to keep iteration deterministic
	Workdir string
	Stdin   string
	Stdout  string // StdoutChannel means "do not redirect"
	Stderr  string // equal to Stdout renders 2>&1; otherwise StdoutChannel means "do not redirect"
}

// EnvVar is one exported environment variable assignment.
type EnvVar struct {
	Name  string
	Value string
}

// BuildCommand assembles a POSIX-shell one-liner from req. It does not quote
// req.Command tokens — the caller is responsible for pre-quoting them — but
// it does shell-quote the stdin/stdout/stderr path operands.
func BuildCommand(req CommandRequest) string {
	var b strings.Builder

	if req.Workdir != "" {
		fmt.Fprintf(&b, "cd %s && ", req.Workdir)
	}
	for _, ev := range req.Env {
		fmt.Fprintf(&b, `export %s="%s" && `, ev.Name, ev.Value)
	}
	b.WriteString(strings.Join(req.Command, " "))
	if req.Stdin != "" {
		fmt.Fprintf(&b, " < %s", shellQuote(req.Stdin))
	}
	if req.Stdout != StdoutChannel {
		fmt.Fprintf(&b, " > %s", shellQuote(req.Stdout))
	}
	switch {
	case req.Stderr == req.Stdout:
		b.WriteString(" 2>&1")
	case req.Stderr != StdoutChannel:
		fmt.Fprintf(&b, " 2>%s", shellQuote(req.Stderr))
	}
	return b.String()
}

// EncodeCommand wraps command as a base64-encode-and-pipe-to-shell one-liner,
// ensuring that arbitrary quoting, newlines and shell metacharacters survive
// intermediate transport layers (ssh, kubectl exec, helper scripts). shell
// defaults to "sh" when empty.
func EncodeCommand(command string, shell string) string {
	if shell == "" {
		shell = "sh"
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(command))
	return fmt.Sprintf("echo %s | base64 -d | %s", encoded, shell)
}

// WrapCommand turns a shell command string into an argv slice suitable for
// direct subprocess execution (no intermediate shell interprets the command
// twice).
func WrapCommand(command string) []string {
	return []string{"/bin/sh", "-c", command}
}

// shellQuote produces a single POSIX-shell-safe quoted token for path
// operands. It follows the same rule shlex.quote applies in the Python
// original: wrap in single quotes, escaping embedded single quotes.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r == '_' || r == '-' || r == '.' || r == '/' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
