package main

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

const defaultSampleRate = 44100

// oto supports a single context per process, so sound effects and music
// share this one.
var (
	audioOnce       sync.Once
	audioCtx        *oto.Context
	audioSampleRate int
	audioErr        error
)

var audioLogf = debugScope("audio")

// initAudioContext opens the audio device. When a music file is configured
// the device runs at the track's sample rate so the decoder output can be
// played as is.
func initAudioContext(musicFile string) (*oto.Context, int, error) {
	audioOnce.Do(func() {
		sampleRate := defaultSampleRate
		if musicFile != "" {
			if dec, err := openTrack(musicFile); err == nil {
				sampleRate = dec.SampleRate()
			} else {
				audioLogf("sample rate fallback: %v", err)
			}
		}
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			audioErr = fmt.Errorf("open audio device: %w", err)
			return
		}
		<-ready
		audioCtx = ctx
		audioSampleRate = sampleRate
		audioLogf("ready at %d Hz", sampleRate)
	})
	return audioCtx, audioSampleRate, audioErr
}
