package generation_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/modules/blog"
	"github.com/harmonia-labs/harmonia/modules/generation"
	"github.com/harmonia-labs/harmonia/modules/settings"
	"github.com/harmonia-labs/harmonia/pkg/cron"
)

type serviceEnv struct {
	*pipelineEnv
	svc *generation.Service
}

func newServiceEnv(t *testing.T, phrase string, runner *cron.Runner) *serviceEnv {
	t.Helper()

	env := newPipelineEnv(t, phrase,
		generation.WithGenerator(&fakeGenerator{html: generatedHTML}))
	svc := generation.NewService(env.pipeline, env.keywords, env.runs, env.settings,
		runner, nil, nil, nil, nil)
	return &serviceEnv{pipelineEnv: env, svc: svc}
}

func TestTriggerEndpoint(t *testing.T) {
	t.Parallel()

	env := newServiceEnv(t, "conflict resolution", nil)
	srv := httptest.NewServer(env.svc.TriggerHandler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var body struct {
		Data generation.Run `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, generation.RunStatusSucceeded, body.Data.Status)
	assert.Equal(t, "conflict resolution", body.Data.Keyword)
	assert.NotNil(t, body.Data.PostID)
}

func TestTriggerWithoutKeywords(t *testing.T) {
	t.Parallel()

	env := newServiceEnv(t, "", nil)
	srv := httptest.NewServer(env.svc.TriggerHandler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL, "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	runner := cron.NewRunner()
	env := newServiceEnv(t, "active listening", runner)
	require.NoError(t, env.svc.RegisterJob(context.Background()))

	_, err := env.svc.Generate(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(env.svc.Handle())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Schedule    settings.ScheduleSettings `json:"schedule"`
			NextRun     *string                   `json:"next_run"`
			Running     bool                      `json:"running"`
			LastKeyword string                    `json:"last_keyword"`
			RecentRuns  []generation.Run          `json:"recent_runs"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, cron.FrequencyDaily, body.Data.Schedule.Frequency)
	assert.False(t, body.Data.Running)
	assert.NotNil(t, body.Data.NextRun)
	assert.Equal(t, "active listening", body.Data.LastKeyword)
	require.Len(t, body.Data.RecentRuns, 1)
	assert.Equal(t, generation.RunStatusSucceeded, body.Data.RecentRuns[0].Status)
}

func TestScheduledRunRespectsEnabledFlag(t *testing.T) {
	t.Parallel()

	runner := cron.NewRunner()
	env := newServiceEnv(t, "shared goals", runner)
	require.NoError(t, env.svc.RegisterJob(context.Background()))

	jobs := runner.Jobs()
	require.Len(t, jobs, 1)

	// Default schedule is disabled: a fire is a no-op.
	require.NoError(t, runner.Trigger(context.Background(), jobs[0]))
	_, total, err := env.posts.Repository().List(context.Background(), blog.ListFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	// Enabling the schedule makes the next fire produce a post.
	require.NoError(t, env.settings.SetSchedule(context.Background(), settings.ScheduleSettings{
		Enabled:   true,
		Frequency: cron.FrequencyDaily,
		Hour:      7,
		Minute:    30,
	}))
	env.svc.Reschedule(context.Background(), env.settings.Schedule(context.Background()))

	require.NoError(t, runner.Trigger(context.Background(), jobs[0]))
	_, total, err = env.posts.Repository().List(context.Background(), blog.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestKeywordEndpoints(t *testing.T) {
	t.Parallel()

	env := newServiceEnv(t, "", nil)
	srv := httptest.NewServer(env.svc.KeywordsHandle())
	t.Cleanup(srv.Close)

	var created generation.Keyword

	t.Run("add", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/", "application/json",
			strings.NewReader(`{"phrase":"Quality Time"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var body struct {
			Data generation.Keyword `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		created = body.Data
		assert.Equal(t, "quality time", created.Phrase)
	})

	t.Run("duplicate conflicts", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/", "application/json",
			strings.NewReader(`{"phrase":"quality time"}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("blank phrase fails validation", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/", "application/json",
			strings.NewReader(`{"phrase":"  "}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("list", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Data []generation.Keyword `json:"data"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.Len(t, body.Data, 1)
		assert.Equal(t, "quality time", body.Data[0].Phrase)
	})

	t.Run("delete", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete,
			fmt.Sprintf("%s/%s", srv.URL, created.ID), nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("delete unknown is 404", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodDelete,
			fmt.Sprintf("%s/%s", srv.URL, uuid.New()), nil)
		require.NoError(t, err)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
