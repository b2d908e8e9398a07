package main

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shixinhuang99/sxtetris/game"
)

func TestEverySoundHasTones(t *testing.T) {
	for event := SoundMove; event <= SoundGameOver; event++ {
		assert.NotEmpty(t, tonesFor(event), "event %d", event)
	}
	assert.Nil(t, tonesFor(SoundGameOver+1))
}

func TestRenderTonesLength(t *testing.T) {
	rate := beep.SampleRate(defaultSampleRate)
	sequence := tonesFor(SoundLine2)
	require.Len(t, sequence, 2)

	pcm, err := renderTones(sequence, rate, 1)
	require.NoError(t, err)
	frames := rate.N(sequence[0].dur) + rate.N(toneGap) + rate.N(sequence[1].dur)
	assert.Len(t, pcm, frames*4)
	assert.NotEqual(t, make([]byte, len(pcm)), pcm)
}

func TestRenderTonesMuted(t *testing.T) {
	pcm, err := renderTones([]tone{{440, 20 * time.Millisecond, 0.5}}, beep.SampleRate(defaultSampleRate), 0)
	require.NoError(t, err)
	require.NotEmpty(t, pcm)
	assert.Equal(t, make([]byte, len(pcm)), pcm)
}

func TestRenderTonesRejectsNyquist(t *testing.T) {
	_, err := renderTones([]tone{{30000, 10 * time.Millisecond, 1}}, beep.SampleRate(defaultSampleRate), 1)
	assert.Error(t, err)
}

func TestSilentEngineIgnoresPlay(t *testing.T) {
	engine := NewSoundEngine(nil, 0, true)
	assert.False(t, engine.enabled)
	engine.SetEnabled(true)
	assert.False(t, engine.enabled)
	engine.SetVolume(3)
	assert.Equal(t, 1.0, engine.volume)
	engine.Play(SoundLock)
}

func TestSoundsForFeedback(t *testing.T) {
	tests := []struct {
		name    string
		fb      game.Feedback
		cleared int
		want    []SoundEvent
	}{
		{"nothing", 0, 0, nil},
		{"move", game.FeedbackMove, 0, []SoundEvent{SoundMove}},
		{"hard drop", game.FeedbackHardDrop | game.FeedbackLock, 0, []SoundEvent{SoundHardDrop}},
		{"lock", game.FeedbackLock, 0, []SoundEvent{SoundLock}},
		{"tetris", game.FeedbackHardDrop | game.FeedbackLock | game.FeedbackClear, 4, []SoundEvent{SoundLine4}},
		{"clear with level up", game.FeedbackLock | game.FeedbackClear | game.FeedbackLevelUp, 2, []SoundEvent{SoundLine2, SoundLevelUp}},
		{"pause", game.FeedbackPause, 0, []SoundEvent{SoundPause}},
		{"countdown", game.FeedbackTick, 0, []SoundEvent{SoundCountdown}},
		{"resume", game.FeedbackResume, 0, []SoundEvent{SoundGo}},
		{"game over wins", game.FeedbackGameOver | game.FeedbackLock, 0, []SoundEvent{SoundGameOver}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, soundsFor(tt.fb, tt.cleared))
		})
	}
}
