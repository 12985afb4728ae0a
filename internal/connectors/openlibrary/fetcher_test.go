package openlibrary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "dune", q.Get("q"))
		assert.Equal(t, "2", q.Get("limit"))
		w.Write([]byte(`{"docs":[
			{"key":"/works/OL893415W",
			 "title":"Dune",
			 "author_name":["Frank Herbert"],
			 "first_publish_year":1965,
			 "first_sentence":["A beginning is the time for taking the most delicate care."]},
			{"key":"/works/OL000001W",
			 "title":"Obscure Book"}]}`))
	}))
	defer server.Close()

	f := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	docs, err := f.Search(context.Background(), "dune", 2)
	require.NoError(t, err)

	require.Len(t, docs, 2)
	assert.Equal(t, "Dune", docs[0].Title)
	assert.Equal(t,
		"Author: Frank Herbert\nPublished: 1965\nDescription: A beginning is the time for taking the most delicate care.",
		docs[0].Text)
	assert.Equal(t, "OpenLibrary: Dune", docs[0].Source)
	assert.Equal(t, "https://openlibrary.org/works/OL893415W", docs[0].URL)

	// Missing fields fall back to placeholders.
	assert.Equal(t,
		"Author: Unknown\nPublished: N/A\nDescription: No description available",
		docs[1].Text)
}

func TestFetcher_SearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	f := New(WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	_, err := f.Search(context.Background(), "anything", 2)
	assert.Error(t, err)
}
