package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const syncTimeout = 4 * time.Second

// ScoreSync talks to an optional remote high-score service. A nil
// *ScoreSync is valid and always disabled.
type ScoreSync struct {
	enabled bool
	baseURL string
	apiKey  string
	client  *http.Client
}

type scoresLoadedMsg struct {
	scores []ScoreEntry
	err    error
}

type scoreUploadedMsg struct {
	err error
}

// NewScoreSyncFromEnv builds a client from SXTETRIS_SCORE_* variables. It
// returns nil when no endpoint is configured.
func NewScoreSyncFromEnv(enabled bool) *ScoreSync {
	baseURL := envString(envScoreAPIURL)
	if baseURL == "" {
		return nil
	}
	if _, set := os.LookupEnv(envScoreSync); set {
		enabled = enabled && envBool(envScoreSync)
	}
	return newScoreSync(baseURL, envString(envScoreAPIKey), enabled)
}

func newScoreSync(baseURL, apiKey string, enabled bool) *ScoreSync {
	return &ScoreSync{
		enabled: enabled,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: syncTimeout},
	}
}

func (s *ScoreSync) Enabled() bool {
	return s != nil && s.enabled
}

func (s *ScoreSync) SetEnabled(enabled bool) {
	if s != nil {
		s.enabled = enabled
	}
}

func (s *ScoreSync) FetchScoresCmd() tea.Cmd {
	return func() tea.Msg {
		if !s.Enabled() {
			return scoresLoadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		scores, err := s.fetch(ctx)
		return scoresLoadedMsg{scores: scores, err: err}
	}
}

func (s *ScoreSync) UploadScoreCmd(entry ScoreEntry) tea.Cmd {
	return func() tea.Msg {
		if !s.Enabled() {
			return scoreUploadedMsg{}
		}
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		return scoreUploadedMsg{err: s.upload(ctx, entry)}
	}
}

func (s *ScoreSync) fetch(ctx context.Context) ([]ScoreEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/scores?limit=%d", s.baseURL, maxScores), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch scores: %w", err)
	}
	defer resp.Body.Close()
	var scores []ScoreEntry
	if err := json.NewDecoder(resp.Body).Decode(&scores); err != nil {
		return nil, fmt.Errorf("fetch scores: decode: %w", err)
	}
	sortScores(scores)
	if len(scores) > maxScores {
		scores = scores[:maxScores]
	}
	return scores, nil
}

func (s *ScoreSync) upload(ctx context.Context, entry ScoreEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("upload score: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/scores", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("upload score: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.do(req)
	if err != nil {
		return fmt.Errorf("upload score: %w", err)
	}
	return resp.Body.Close()
}

func (s *ScoreSync) do(req *http.Request) (*http.Response, error) {
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, statusError(resp.StatusCode)
	}
	return resp, nil
}

type statusError int

func (s statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", int(s), http.StatusText(int(s)))
}
