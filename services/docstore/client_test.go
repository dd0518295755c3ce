package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strix/models"
)

func sampleDocument() models.UserDocument {
	doc := models.NewUserDocument()
	doc.Users["a@example.com"] = models.UserRecord{
		ID:       "u-1",
		Email:    "a@example.com",
		Username: "alice",
	}
	return doc
}

func TestFetchBareDocument(t *testing.T) {
	doc := sampleDocument()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/public/doc-1", r.URL.Path)
		json.NewEncoder(w).Encode(doc)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "doc-1")
	got := client.Fetch(context.Background())

	require.Contains(t, got.Users, "a@example.com")
	assert.Equal(t, "alice", got.Users["a@example.com"].Username)
}

func TestFetchWrappedDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": sampleDocument()})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "doc-1")
	got := client.Fetch(context.Background())

	require.Contains(t, got.Users, "a@example.com")
}

func TestFetchFailureYieldsEmptyDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "doc-1")
	got := client.Fetch(context.Background())

	require.NotNil(t, got.Users)
	assert.Empty(t, got.Users)
}

func TestReplaceSendsNamedPayloadWithAPIKey(t *testing.T) {
	var received struct {
		Name string              `json:"name"`
		Data models.UserDocument `json:"data"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/documents/doc-1", r.URL.Path)
		require.Equal(t, "secret", r.Header.Get("X-API-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", "doc-1")
	require.NoError(t, client.Replace(context.Background(), sampleDocument()))

	assert.Equal(t, "movies", received.Name)
	assert.Contains(t, received.Data.Users, "a@example.com")
}

// TestReplaceRetriesServerErrors verifies transient 5xx responses are retried
// and the write eventually succeeds.
func TestReplaceRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "doc-1")
	client.httpc = srv.Client()

	require.NoError(t, client.Replace(context.Background(), sampleDocument()))
	assert.Equal(t, 3, calls)
}

// TestReplaceDoesNotRetryClientErrors verifies a 401 aborts immediately.
func TestReplaceDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key", "doc-1")

	err := client.Replace(context.Background(), sampleDocument())
	require.ErrorIs(t, err, ErrReplaceFailed)
	assert.Equal(t, 1, calls)
}

func TestMutateAppliesChangeAndWritesBack(t *testing.T) {
	var (
		mu     sync.Mutex
		stored = sampleDocument()
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(stored)
		case http.MethodPut:
			var payload struct {
				Data models.UserDocument `json:"data"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			stored = payload.Data
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "doc-1")
	err := client.Mutate(context.Background(), func(doc *models.UserDocument) error {
		record := doc.Users["a@example.com"]
		record.Username = "alice2"
		doc.Users["a@example.com"] = record
		return nil
	})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "alice2", stored.Users["a@example.com"].Username)
}

func TestMutateFnErrorSkipsWrite(t *testing.T) {
	var puts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(sampleDocument())
		case http.MethodPut:
			puts++
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key", "doc-1")
	wantErr := errors.New("no such user")
	err := client.Mutate(context.Background(), func(doc *models.UserDocument) error {
		return wantErr
	})

	require.ErrorIs(t, err, wantErr)
	assert.Zero(t, puts)
}

func TestUnconfiguredClient(t *testing.T) {
	client := NewClient("", "", "")

	got := client.Fetch(context.Background())
	require.NotNil(t, got.Users)
	assert.Empty(t, got.Users)

	err := client.Mutate(context.Background(), func(doc *models.UserDocument) error { return nil })
	require.ErrorIs(t, err, ErrNotConfigured)
}
