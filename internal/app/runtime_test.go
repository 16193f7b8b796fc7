package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshTestMode(t *testing.T) {
	for value, want := range map[string]bool{"1": true, "TRUE": true, "0": false, "": false} {
		t.Setenv(testModeEnv, value)
		RefreshTestMode()
		assert.Equal(t, want, InTestMode(), "value %q", value)
	}
}
