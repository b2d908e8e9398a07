package main

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envScoreAPIURL = "SXTETRIS_SCORE_API_URL"
	envScoreAPIKey = "SXTETRIS_SCORE_API_KEY"
	envScoreSync   = "SXTETRIS_SCORE_SYNC"
	envMusicFile   = "SXTETRIS_MUSIC_FILE"
	envHome        = "SXTETRIS_HOME"
	envDebugLog    = "SXTETRIS_DEBUG_LOG"
)

// Set with -ldflags "-X main.defaultScoreAPIURL=..." for release builds.
var (
	defaultScoreAPIURL string
	defaultScoreAPIKey string
)

// loadEnv reads an optional .env file and then fills in build-time defaults.
// Variables already present in the environment always win.
func loadEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			DebugLogf("env file %s: %v", file, err)
		}
	}
	setDefaultEnv(envScoreAPIURL, defaultScoreAPIURL)
	setDefaultEnv(envScoreAPIKey, defaultScoreAPIKey)
}

func setDefaultEnv(key, value string) {
	if value == "" {
		return
	}
	if _, exists := os.LookupEnv(key); !exists {
		_ = os.Setenv(key, value)
	}
}

func envString(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envBool(key string) bool {
	switch strings.ToLower(envString(key)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
