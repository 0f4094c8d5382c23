package enhance_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-labs/harmonia/pkg/enhance"
)

func TestInsertAuthoritativeCitation(t *testing.T) {
	t.Parallel()

	t.Run("anchors to the first research phrase", func(t *testing.T) {
		t.Parallel()

		content := `<p>Research shows that couples who repair early stay together.</p><p>Other psychology findings agree.</p>`
		got := enhance.InsertAuthoritativeCitation(content)

		require.Contains(t, got, "doi.org")
		citePos := strings.Index(got, "doi.org")
		assert.Less(t, citePos, strings.Index(got, "psychology"))
	})

	t.Run("case insensitive phrase match", func(t *testing.T) {
		t.Parallel()

		got := enhance.InsertAuthoritativeCitation(`<p>STUDIES SHOW this works.</p>`)
		assert.Contains(t, got, "doi.org")
	})

	t.Run("no research phrase leaves content unchanged", func(t *testing.T) {
		t.Parallel()

		content := `<p>Here are five tips for date night.</p>`
		assert.Equal(t, content, enhance.InsertAuthoritativeCitation(content))
	})

	t.Run("idempotent", func(t *testing.T) {
		t.Parallel()

		once := enhance.InsertAuthoritativeCitation(`<p>Research shows repair matters.</p>`)
		twice := enhance.InsertAuthoritativeCitation(once)
		assert.Equal(t, once, twice)
		assert.Equal(t, 1, strings.Count(twice, "doi.org"))
	})

	t.Run("existing doi link blocks insertion", func(t *testing.T) {
		t.Parallel()

		content := `<p>Research shows <a href="https://doi.org/10.1000/x">this</a>.</p>`
		assert.Equal(t, content, enhance.InsertAuthoritativeCitation(content))
	})
}
