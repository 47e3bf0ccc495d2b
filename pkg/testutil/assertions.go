package testutil

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// IntegrationEnv gates tests that start containers.
const IntegrationEnv = "HIDS_INTEGRATION"

// RequireIntegration skips the test unless HIDS_INTEGRATION=1 and -short is off.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() || os.Getenv(IntegrationEnv) != "1" {
		t.Skipf("set %s=1 to run integration tests", IntegrationEnv)
	}
}

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// AssertErrorIs checks that err matches target and contains the expected substring.
func AssertErrorIs(t *testing.T, err, target error, expected string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, target), "expected %v to match %v", err, target)
	if expected != "" {
		assert.Contains(t, err.Error(), expected)
	}
}
