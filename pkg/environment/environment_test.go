package environment_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/pkg/environment"
)

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := environment.WithContext(context.Background(), "production")
	assert.Equal(t, "production", environment.FromContext(ctx))
	assert.True(t, environment.IsProduction(ctx))
	assert.False(t, environment.IsDevelopment(ctx))
}

func TestFromContext_Missing(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", environment.FromContext(context.Background()))
	assert.Equal(t, "", environment.FromContext(nil)) //nolint:staticcheck // nil-safety is part of the contract
}

func TestPredicates_Aliases(t *testing.T) {
	t.Parallel()

	assert.True(t, environment.IsProduction(environment.WithContext(context.Background(), "prod")))
	assert.True(t, environment.IsDevelopment(environment.WithContext(context.Background(), "dev")))
	assert.True(t, environment.IsStaging(environment.WithContext(context.Background(), "stage")))
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	h := environment.Middleware(environment.Staging)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = environment.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	require.Equal(t, "staging", seen)
}
