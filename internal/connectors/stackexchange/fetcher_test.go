package stackexchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/search":
			q := r.URL.Query()
			assert.Equal(t, "goroutine leak", q.Get("intitle"))
			assert.Equal(t, "stackoverflow", q.Get("site"))
			assert.Equal(t, "withbody", q.Get("filter"))
			assert.Equal(t, "relevance", q.Get("sort"))
			w.Write([]byte(`{"items":[
				{"title":"How to find goroutine leaks?",
				 "body":"<p>My service keeps growing.</p>",
				 "link":"https://stackoverflow.com/q/1",
				 "answer_count":2,
				 "accepted_answer_id":42},
				{"title":"Unanswered question",
				 "body":"<p>No accepted answer.</p>",
				 "link":"https://stackoverflow.com/q/2",
				 "answer_count":0}]}`))
		case strings.HasPrefix(r.URL.Path, "/answers/42"):
			w.Write([]byte(`{"items":[{"body":"<p>Use <code>pprof</code>.</p>"}]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	f := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	docs, err := f.Search(context.Background(), "goroutine leak", 3)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "How to find goroutine leaks?", docs[0].Title)
	assert.Equal(t, "Question: My service keeps growing.\n\nAnswer: Use pprof.", docs[0].Text)
	assert.Equal(t, "Stack Overflow: How to find goroutine leaks?", docs[0].Source)
	assert.Equal(t, "https://stackoverflow.com/q/1", docs[0].URL)

	// No accepted answer leaves the answer part empty.
	assert.Equal(t, "Question: No accepted answer.\n\nAnswer: ", docs[1].Text)
}

func TestFetcher_SearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	f := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := f.Search(context.Background(), "anything", 3)
	assert.Error(t, err)
}

func TestCleanHTML(t *testing.T) {
	assert.Equal(t, "plain text", cleanHTML("<p>plain <b>text</b></p>"))
	assert.Equal(t, "", cleanHTML("<br/>"))

	long := "<p>" + strings.Repeat("a", 600) + "</p>"
	assert.Len(t, cleanHTML(long), maxBodyChars)
}
