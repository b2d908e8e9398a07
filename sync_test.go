package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchScoresSortsAndTrims(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/scores", r.URL.Path)
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		scores := make([]ScoreEntry, 0, 12)
		for i := 0; i < 12; i++ {
			scores = append(scores, ScoreEntry{Name: "p", Score: i})
		}
		_ = json.NewEncoder(w).Encode(scores)
	}))
	defer server.Close()

	sync := newScoreSync(server.URL+"/", "secret", true)
	msg := sync.FetchScoresCmd()().(scoresLoadedMsg)
	require.NoError(t, msg.err)
	require.Len(t, msg.scores, maxScores)
	assert.Equal(t, 11, msg.scores[0].Score)
}

func TestUploadScorePostsJSON(t *testing.T) {
	var got ScoreEntry
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("X-Api-Key"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	entry := ScoreEntry{Name: "ann", Score: 1200, Lines: 12, Level: 2, When: "2026-01-01 10:00"}
	msg := newScoreSync(server.URL, "", true).UploadScoreCmd(entry)().(scoreUploadedMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, entry, got)
}

func TestScoreSyncStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newScoreSync(server.URL, "", true).fetch(context.Background())
	var status statusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, http.StatusServiceUnavailable, int(status))
}

func TestDisabledSyncSkipsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s", r.URL)
	}))
	defer server.Close()

	sync := newScoreSync(server.URL, "", false)
	assert.Equal(t, scoresLoadedMsg{}, sync.FetchScoresCmd()())
	assert.Equal(t, scoreUploadedMsg{}, sync.UploadScoreCmd(ScoreEntry{})())

	var none *ScoreSync
	assert.False(t, none.Enabled())
	none.SetEnabled(true)
}

func TestNewScoreSyncFromEnv(t *testing.T) {
	t.Setenv(envScoreAPIURL, "")
	assert.Nil(t, NewScoreSyncFromEnv(true))

	t.Setenv(envScoreAPIURL, "http://scores.example")
	t.Setenv(envScoreAPIKey, "k")
	sync := NewScoreSyncFromEnv(true)
	require.NotNil(t, sync)
	assert.True(t, sync.Enabled())
	assert.Equal(t, "k", sync.apiKey)

	t.Setenv(envScoreSync, "off")
	assert.False(t, NewScoreSyncFromEnv(true).Enabled())
}
