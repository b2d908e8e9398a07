package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvFileDoesNotOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "SXTETRIS_MUSIC_FILE=/tmp/theme.mp3\nSXTETRIS_SCORE_SYNC=yes\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	t.Setenv(envScoreSync, "no")
	t.Setenv(envMusicFile, "")
	require.NoError(t, os.Unsetenv(envMusicFile))

	loadEnv(file, filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "/tmp/theme.mp3", envString(envMusicFile))
	assert.False(t, envBool(envScoreSync))
}

func TestEnvBool(t *testing.T) {
	for _, value := range []string{"1", "true", "YES", " on "} {
		t.Setenv("SXTETRIS_TEST_BOOL", value)
		assert.True(t, envBool("SXTETRIS_TEST_BOOL"), value)
	}
	for _, value := range []string{"", "0", "off", "nope"} {
		t.Setenv("SXTETRIS_TEST_BOOL", value)
		assert.False(t, envBool("SXTETRIS_TEST_BOOL"), value)
	}
}
