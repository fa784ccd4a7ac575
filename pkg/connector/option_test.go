package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetOptionBoolShortAndLong(t *testing.T) {
	assert.Equal(t, "-v ", GetOption("v", true))
	assert.Equal(t, "", GetOption("v", false))
	assert.Equal(t, "--wait ", GetOption("wait", true))
	assert.Equal(t, "", GetOption("wait", false))
}

func TestGetOptionString(t *testing.T) {
	assert.Equal(t, `--namespace "default" `, GetOption("namespace", "default"))
}

func TestGetOptionSliceRepeatsFlag(t *testing.T) {
	got := GetOption("set", []string{"a=1", "b=2"})
	assert.Equal(t, `--set "a=1" --set "b=2" `, got)
}

func TestGetOptionNilIsEmpty(t *testing.T) {
	assert.Equal(t, "", GetOption("namespace", nil))
}
