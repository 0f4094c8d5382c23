package settings_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/harmonia-labs/harmonia/modules/settings"
)

func TestCanonicalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"active_provider", "active_provider"},
		{"activeProvider", "active_provider"},
		{"ACTIVE_PROVIDER", "active_provider"},
		{"Active Provider", "active_provider"},
		{"generation-hour", "generation_hour"},
		{"lastRunAt", "last_run_at"},
		{"  spaced  ", "spaced"},
		{"__wrapped__", "wrapped"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, settings.Canonicalize(tt.in))
		})
	}
}

func TestIsSecretKey(t *testing.T) {
	t.Parallel()

	assert.True(t, settings.IsSecretKey("provider_sendgrid_config"))
	assert.True(t, settings.IsSecretKey("openaiApiKey"))
	assert.True(t, settings.IsSecretKey("webhook_secret"))
	assert.False(t, settings.IsSecretKey("active_provider"))
	assert.False(t, settings.IsSecretKey("generation_hour"))
}
