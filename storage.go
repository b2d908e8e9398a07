package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/shixinhuang99/sxtetris/game"
)

const (
	appDirName     = "sxtetris"
	maxScores      = 10
	sessionFile    = "session.json"
	sessionVersion = 2
)

type Config struct {
	Theme      string `json:"theme"`
	Sound      bool   `json:"sound"`
	Music      bool   `json:"music"`
	MusicFile  string `json:"music_file,omitempty"`
	Volume     int    `json:"volume"`
	Ghost      bool   `json:"ghost"`
	Animations bool   `json:"animations"`
	Scale      int    `json:"scale"`
	Sync       bool   `json:"sync"`
}

type ScoreEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Lines int    `json:"lines"`
	Level int    `json:"level"`
	When  string `json:"when"`
}

// savedSession wraps the game snapshot on disk. Version changes invalidate
// older saves.
type savedSession struct {
	Version  int           `json:"version"`
	Snapshot game.Snapshot `json:"snapshot"`
}

func defaultConfig() Config {
	return Config{
		Theme:      themes[0].Name,
		Sound:      true,
		Music:      false,
		Volume:     70,
		Ghost:      true,
		Animations: true,
		Scale:      1,
		Sync:       true,
	}
}

// dataDir returns the directory holding config, scores and the saved session,
// creating it if needed.
func dataDir() (string, error) {
	dir := envString(envHome)
	if dir == "" {
		root, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		dir = filepath.Join(root, appDirName)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

func dataPath(name string) (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func readJSON(name string, v any) error {
	path, err := dataPath(name)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

func writeJSON(name string, v any) error {
	path, err := dataPath(name)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return os.WriteFile(path, data, 0o644)
}

func loadConfig() (Config, error) {
	config := defaultConfig()
	if err := readJSON("config.json", &config); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultConfig(), nil
		}
		return defaultConfig(), err
	}
	if themeIndexByName(config.Theme) < 0 {
		config.Theme = themes[0].Name
	}
	config.Scale = clampScale(config.Scale)
	config.Volume = clampVolumePercent(config.Volume)
	return config, nil
}

func saveConfig(config Config) error {
	return writeJSON("config.json", config)
}

func loadScores() ([]ScoreEntry, error) {
	var scores []ScoreEntry
	if err := readJSON("scores.json", &scores); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ScoreEntry{}, nil
		}
		return []ScoreEntry{}, err
	}
	return scores, nil
}

func saveScores(scores []ScoreEntry) error {
	return writeJSON("scores.json", scores)
}

// loadSession returns the saved game, or nil when there is none or it cannot
// be read. A broken save is never an error for the caller.
func loadSession() *game.Snapshot {
	var saved savedSession
	if err := readJSON(sessionFile, &saved); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			DebugLogf("load session: %v", err)
		}
		return nil
	}
	if saved.Version != sessionVersion {
		DebugLogf("load session: version %d ignored", saved.Version)
		return nil
	}
	return &saved.Snapshot
}

func saveSession(snap game.Snapshot) error {
	return writeJSON(sessionFile, savedSession{Version: sessionVersion, Snapshot: snap})
}

func clearSession() {
	path, err := dataPath(sessionFile)
	if err != nil {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		DebugLogf("clear session: %v", err)
	}
}

func sortScores(scores []ScoreEntry) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score == scores[j].Score {
			return scores[i].When > scores[j].When
		}
		return scores[i].Score > scores[j].Score
	})
}

func insertScore(scores []ScoreEntry, entry ScoreEntry) []ScoreEntry {
	scores = append(append([]ScoreEntry(nil), scores...), entry)
	sortScores(scores)
	if len(scores) > maxScores {
		return scores[:maxScores]
	}
	return scores
}

// mergeScores combines local and remote tables, dropping exact duplicates.
func mergeScores(local []ScoreEntry, remote []ScoreEntry) []ScoreEntry {
	merged := make([]ScoreEntry, 0, len(local)+len(remote))
	seen := make(map[string]struct{})
	for _, list := range [][]ScoreEntry{local, remote} {
		for _, entry := range list {
			key := entry.Name + "|" + entry.When + "|" + strconv.Itoa(entry.Score)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, entry)
		}
	}
	sortScores(merged)
	if len(merged) > maxScores {
		return merged[:maxScores]
	}
	return merged
}
