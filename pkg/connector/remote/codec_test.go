package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodecRoundTrips(t *testing.T) {
	c := jsonCodec{}
	req := &execRequest{Location: "pod:container", Command: []string{"sh", "-c", "echo hi"}, CaptureOutput: true}

	data, err := c.Marshal(req)
	require.NoError(t, err)

	var got execRequest
	require.NoError(t, c.Unmarshal(data, &got))
	assert.Equal(t, *req, got)
}

func TestErrNonZeroExitMessage(t *testing.T) {
	err := errNonZeroExit(7)
	assert.Contains(t, err.Error(), "7")
}
