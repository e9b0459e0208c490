package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

const resultsPage = `<html><body><table>
<tr><td><a rel="nofollow" href="https://example.com/1" class="result-link">Osaka Castle &amp; Park</a></td></tr>
<tr><td class="result-snippet">A historic <b>castle</b> in central Osaka &quot;must see&quot;</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/2" class="result-link">Dotonbori</a></td></tr>
<tr><td class="result-snippet">Famous food street</td></tr>
<tr><td><a rel="nofollow" href="https://example.com/3" class="result-link">Umeda Sky Building</a></td></tr>
<tr><td class="result-snippet">Observation deck with city views</td></tr>
</table></body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*DuckDuckGo, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewDuckDuckGo(&Config{
		Endpoint:   srv.URL + "/?q=%s",
		MaxResults: 5,
	})
	return client, srv
}

func TestSearchParsesResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultsPage)
	})

	digest, err := client.Search(context.Background(), "things to do in Osaka")
	require.NoError(t, err)

	assert.Contains(t, digest, `Web search results for: "things to do in Osaka"`)
	assert.Contains(t, digest, "[1] Osaka Castle & Park")
	assert.Contains(t, digest, "[2] Dotonbori")
	assert.Contains(t, digest, "[3] Umeda Sky Building")

	// Tags stripped, entities decoded.
	assert.NotContains(t, digest, "<b>")
	assert.NotContains(t, digest, "&amp;")
	assert.Contains(t, digest, `A historic castle in central Osaka "must see"`)

	// Snippets indented under their titles.
	assert.Contains(t, digest, "\n   Famous food street")
}

func TestSearchEncodesQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		fmt.Fprint(w, resultsPage)
	})

	_, err := client.Search(context.Background(), "weather in Tokyo & Kyoto")
	require.NoError(t, err)
	assert.Equal(t, "weather in Tokyo & Kyoto", gotQuery)
}

func TestSearchCapsResults(t *testing.T) {
	var page strings.Builder
	page.WriteString("<html><body>\n")
	for i := 1; i <= 8; i++ {
		fmt.Fprintf(&page, "<tr><td><a href=\"https://example.com/%d\" class=\"result-link\">Result %d</a></td></tr>\n", i, i)
	}
	page.WriteString("</body></html>")

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page.String())
	})

	digest, err := client.Search(context.Background(), "anything")
	require.NoError(t, err)

	assert.Contains(t, digest, "[5] Result 5")
	assert.NotContains(t, digest, "[6]")
}

func TestSearchNoResultsSentinel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>nothing useful here</body></html>")
	})

	digest, err := client.Search(context.Background(), "gibberish query")
	require.NoError(t, err)
	assert.Equal(t, "no results found for: gibberish query", digest)
}

func TestSearchTransportFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSearchUnavailable))
}

func TestSearchNon200(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "service unavailable", http.StatusServiceUnavailable)
	})

	_, err := client.Search(context.Background(), "anything")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSearchUnavailable))
}

func TestNoResults(t *testing.T) {
	assert.Equal(t, "no results found for: x", NoResults("x"))
}

func TestExtractBetween(t *testing.T) {
	got, ok := extractBetween(`<a href="u" class="result-link">Title</a>`, `">`, "</a>")
	require.True(t, ok)
	assert.Equal(t, "Title", got)

	_, ok = extractBetween("no markers", `">`, "</a>")
	assert.False(t, ok)

	_, ok = extractBetween(`start "> but no end`, `">`, "</a>")
	assert.False(t, ok)
}
