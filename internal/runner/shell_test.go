package runner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/models"
)

func TestRun_Success(t *testing.T) {
	r := NewShellRunner()

	result := r.Run(context.Background(), []string{`echo hello`})

	assert.Equal(t, models.OutcomeOK, result.Outcome)
	assert.Equal(t, "hello\n", result.Output)
}

func TestRun_FailureStopsBatch(t *testing.T) {
	r := NewShellRunner()

	result := r.Run(context.Background(), []string{
		`echo first`,
		`exit 3`,
		`echo never`,
	})

	assert.Equal(t, models.OutcomeFailed, result.Outcome)
	assert.Contains(t, result.Output, "first")
	assert.NotContains(t, result.Output, "never")
}

func TestRun_RestrictedCommandDenied(t *testing.T) {
	r := NewShellRunner()

	tests := []struct {
		name    string
		command string
	}{
		{"recursive root removal", "rm -rf /"},
		{"privilege escalation", "sudo rm file"},
		{"device overwrite", "dd if=/dev/zero of=/dev/sda"},
		{"filesystem format", "mkfs.ext4 /dev/sda1"},
		{"system shutdown", "shutdown -h now"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.Run(context.Background(), []string{tt.command})

			require.Equal(t, models.OutcomeDenied, result.Outcome)
			assert.NotEmpty(t, result.Reason)
			assert.Contains(t, result.Output, "not allowed by the security policy")
		})
	}
}

func TestRun_DeniedBeforeExecution(t *testing.T) {
	r := NewShellRunner()

	// The allowed command must not run when a later one is denied.
	marker := t.TempDir() + "/touched"
	result := r.Run(context.Background(), []string{
		"touch " + marker,
		"sudo reboot",
	})

	require.Equal(t, models.OutcomeDenied, result.Outcome)
	assert.NoFileExists(t, marker)
}

func TestRunUnchecked_BypassesPolicy(t *testing.T) {
	r := NewShellRunner()

	// Matches the privilege escalation pattern but is harmless: sudo is
	// only echoed, not executed.
	result := r.RunUnchecked(context.Background(), []string{`echo sudo-styled output`})

	assert.Equal(t, models.OutcomeOK, result.Outcome)
	assert.Contains(t, result.Output, "sudo-styled output")
}

func TestRun_HarmlessLookalikesAllowed(t *testing.T) {
	for _, command := range []string{
		`rm -rf /tmp/scratch`,
		`echo dd is a unix tool`,
		`chmod 755 /srv/app`,
	} {
		if rule := matchRestricted(command); rule != "" {
			t.Errorf("command %q wrongly matched rule %q", command, rule)
		}
	}
}
