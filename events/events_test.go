package events

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEventID(t *testing.T) {
	cases := map[string]string{
		"12345": "12345",
		"https://truckersmp.com/events/9876":          "9876",
		"https://truckersmp.com/events/9876-big-run":  "9876",
		"https://truckersmp.com/vtc/55":               "",
		"convoy friday":                               "",
		"":                                            "",
	}
	for input, want := range cases {
		assert.Equal(t, want, ExtractEventID(input), "input %q", input)
	}
}

func TestFetchParsesEventResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"error":false,"response":{"id":42,"name":"Friday Night Convoy","banner":"https://img.example/banner.png","start_at":"2026-09-04 19:00:00"}}`))
	}))
	defer srv.Close()

	meta, err := NewClient(srv.URL).Fetch(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Friday Night Convoy", meta.Name)
	assert.Equal(t, "https://img.example/banner.png", meta.Banner)
}

func TestFetchSurfacesAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Fetch(context.Background(), "42")
	assert.Error(t, err)
}
