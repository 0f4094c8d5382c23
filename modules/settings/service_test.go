package settings_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/modules/settings"
	"github.com/harmonia-labs/harmonia/pkg/cron"
	"github.com/harmonia-labs/harmonia/pkg/esp"
	"github.com/harmonia-labs/harmonia/pkg/secrets"
)

func newService(t *testing.T) (*settings.Service, *settings.MemoryStorage) {
	t.Helper()
	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	storage := settings.NewMemoryStorage()
	return settings.NewService(storage, appKey, nil, nil), storage
}

func TestProviderConfigRoundTrip(t *testing.T) {
	t.Parallel()

	svc, storage := newService(t)
	ctx := context.Background()

	cfg := esp.Config{APIKey: "sk-secret", SenderEmail: "hello@example.com", ListID: "42"}
	require.NoError(t, svc.SetProviderConfig(ctx, "SendGrid", cfg))

	// Stored value must be ciphertext, not the raw key.
	stored, err := storage.Get(ctx, settings.ProviderConfigKey("sendgrid"))
	require.NoError(t, err)
	assert.NotContains(t, stored, "sk-secret")

	got, err := svc.ProviderConfig(ctx, "sendgrid")
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestProviderConfigUnconfigured(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)

	got, err := svc.ProviderConfig(context.Background(), "brevo")
	require.NoError(t, err)
	assert.Equal(t, esp.Config{}, got)
}

func TestScheduleDefaults(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)

	sc := svc.Schedule(context.Background())
	assert.False(t, sc.Enabled)
	assert.Equal(t, cron.FrequencyDaily, sc.Frequency)
	assert.Equal(t, 9, sc.Hour)
	assert.Equal(t, 0, sc.Minute)
}

func TestSetSchedule(t *testing.T) {
	t.Parallel()

	svc, _ := newService(t)
	ctx := context.Background()

	want := settings.ScheduleSettings{
		Enabled:   true,
		Frequency: cron.FrequencyTwiceDaily,
		Hour:      7,
		Minute:    30,
	}
	require.NoError(t, svc.SetSchedule(ctx, want))
	assert.Equal(t, want, svc.Schedule(ctx))

	err := svc.SetSchedule(ctx, settings.ScheduleSettings{Frequency: "hourly", Hour: 25})
	require.Error(t, err)
}

func TestRecordRun(t *testing.T) {
	t.Parallel()

	svc, storage := newService(t)
	ctx := context.Background()
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, svc.RecordRun(ctx, "sleep hygiene", at, assert.AnError))

	keyword, err := storage.Get(ctx, settings.KeyLastKeyword)
	require.NoError(t, err)
	assert.Equal(t, "sleep hygiene", keyword)

	lastErr, err := storage.Get(ctx, settings.KeyLastError)
	require.NoError(t, err)
	assert.Equal(t, assert.AnError.Error(), lastErr)

	// A later successful run clears the error.
	require.NoError(t, svc.RecordRun(ctx, "morning light", at.Add(time.Hour), nil))
	lastErr, err = storage.Get(ctx, settings.KeyLastError)
	require.NoError(t, err)
	assert.Empty(t, lastErr)
}

func TestHandleList(t *testing.T) {
	t.Parallel()

	svc, storage := newService(t)
	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, settings.KeyActiveProvider, "sendgrid"))
	require.NoError(t, svc.SetProviderConfig(ctx, "sendgrid", esp.Config{APIKey: "sk-secret"}))

	srv := httptest.NewServer(svc.Handle())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "sendgrid", body.Data[settings.KeyActiveProvider])
	assert.Equal(t, "********", body.Data[settings.ProviderConfigKey("sendgrid")])
}

func TestHandleUpdate(t *testing.T) {
	t.Parallel()

	svc, storage := newService(t)
	srv := httptest.NewServer(svc.Handle())
	t.Cleanup(srv.Close)

	req, err := http.NewRequest(http.MethodPut, srv.URL+"/",
		strings.NewReader(`{"values":{"siteBaseURL":"https://example.com"}}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Key is canonicalized on write.
	value, err := storage.Get(context.Background(), "site_base_url")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", value)
}
