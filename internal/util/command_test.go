package util

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCommandAssemblesInOrder(t *testing.T) {
	got := BuildCommand(CommandRequest{
		Command: []string{"echo", "hi"},
		Env:     []EnvVar{{Name: "A", Value: "1"}},
		Workdir: "/w",
		Stdin:   "in.txt",
		Stdout:  "out.txt",
		Stderr:  StdoutChannel,
	})
	assert.Equal(t, `cd /w && export A="1" && echo hi < in.txt > out.txt`, got)
}

func TestBuildCommandIsDeterministic(t *testing.T) {
	req := CommandRequest{
		Command: []string{"ls", "-la"},
		Env:     []EnvVar{{Name: "X", Value: "y"}, {Name: "Z", Value: "w"}},
		Workdir: "/tmp",
	}
	first := BuildCommand(req)
	second := BuildCommand(req)
	assert.Equal(t, first, second)
}

func TestBuildCommandDefaultStderrMirrorsStdout(t *testing.T) {
	got := BuildCommand(CommandRequest{Command: []string{"echo", "hi"}})
	assert.Equal(t, "echo hi 2>&1", got)
}

func TestBuildCommandQuotesUnsafePaths(t *testing.T) {
	got := BuildCommand(CommandRequest{
		Command: []string{"cat"},
		Stdin:   "my file.txt",
		Stderr:  StdoutChannel,
	})
	assert.Contains(t, got, `'my file.txt'`)
}

func TestEncodeCommandRoundTrips(t *testing.T) {
	command := `cd /w && echo "hi there" > out.txt`
	encoded := EncodeCommand(command, "")
	require.True(t, strings.HasPrefix(encoded, "echo "))
	require.True(t, strings.HasSuffix(encoded, " | base64 -d | sh"))

	parts := strings.SplitN(encoded, " ", 2)
	require.Len(t, parts, 2)
	b64 := strings.TrimSuffix(parts[1], " | base64 -d | sh")
	decoded, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	assert.Equal(t, command, string(decoded))
}

func TestEncodeCommandDefaultsToSh(t *testing.T) {
	encoded := EncodeCommand("echo hi", "")
	assert.True(t, strings.HasSuffix(encoded, "| sh"))
}

func TestEncodeCommandCustomShell(t *testing.T) {
	encoded := EncodeCommand("echo hi", "bash")
	assert.True(t, strings.HasSuffix(encoded, "| bash"))
}

func TestWrapCommand(t *testing.T) {
	assert.Equal(t, []string{"/bin/sh", "-c", "echo hi"}, WrapCommand("echo hi"))
}
