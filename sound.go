package main

import (
	"bytes"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

type SoundEvent int

const (
	SoundMove SoundEvent = iota
	SoundRotate
	SoundHardDrop
	SoundLock
	SoundLine1
	SoundLine2
	SoundLine3
	SoundLine4
	SoundLevelUp
	SoundPause
	SoundCountdown
	SoundGo
	SoundMenuMove
	SoundMenuSelect
	SoundGameOver
)

const (
	toneGap  = 10 * time.Millisecond
	toneFade = 3 * time.Millisecond
)

type tone struct {
	freq float64
	dur  time.Duration
	gain float64
}

type SoundEngine struct {
	mu      sync.RWMutex
	enabled bool
	volume  float64
	ctx     *oto.Context
	rate    beep.SampleRate
}

// NewSoundEngine plays synthesized effects on ctx. A nil ctx gives a silent
// engine.
func NewSoundEngine(ctx *oto.Context, sampleRate int, enabled bool) *SoundEngine {
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	return &SoundEngine{
		enabled: enabled && ctx != nil,
		volume:  0.7,
		ctx:     ctx,
		rate:    beep.SampleRate(sampleRate),
	}
}

func (s *SoundEngine) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled && s.ctx != nil
	s.mu.Unlock()
}

func (s *SoundEngine) SetVolume(volume float64) {
	s.mu.Lock()
	s.volume = clampVolume(volume)
	s.mu.Unlock()
}

func (s *SoundEngine) Play(event SoundEvent) {
	s.mu.RLock()
	ctx, enabled, volume := s.ctx, s.enabled, s.volume
	s.mu.RUnlock()
	if !enabled || ctx == nil {
		return
	}
	sequence := tonesFor(event)
	if len(sequence) == 0 {
		return
	}
	go func() {
		pcm, err := renderTones(sequence, s.rate, volume)
		if err != nil {
			audioLogf("render sound %d: %v", event, err)
			return
		}
		player := ctx.NewPlayer(bytes.NewReader(pcm))
		player.Play()
		for player.IsPlaying() {
			time.Sleep(5 * time.Millisecond)
		}
		_ = player.Close()
	}()
}

func tonesFor(event SoundEvent) []tone {
	switch event {
	case SoundMove:
		return []tone{{380, 25 * time.Millisecond, 0.18}}
	case SoundRotate:
		return []tone{{520, 40 * time.Millisecond, 0.25}}
	case SoundHardDrop:
		return []tone{{300, 20 * time.Millisecond, 0.22}, {200, 50 * time.Millisecond, 0.26}}
	case SoundLock:
		return []tone{{220, 70 * time.Millisecond, 0.3}}
	case SoundLine1:
		return []tone{{440, 90 * time.Millisecond, 0.3}}
	case SoundLine2:
		return []tone{{440, 70 * time.Millisecond, 0.3}, {660, 90 * time.Millisecond, 0.3}}
	case SoundLine3:
		return []tone{{440, 70 * time.Millisecond, 0.3}, {660, 70 * time.Millisecond, 0.3}, {880, 90 * time.Millisecond, 0.3}}
	case SoundLine4:
		return []tone{{660, 80 * time.Millisecond, 0.3}, {880, 80 * time.Millisecond, 0.3}, {990, 120 * time.Millisecond, 0.32}}
	case SoundLevelUp:
		return []tone{{523, 60 * time.Millisecond, 0.25}, {659, 60 * time.Millisecond, 0.25}, {784, 110 * time.Millisecond, 0.28}}
	case SoundPause:
		return []tone{{330, 60 * time.Millisecond, 0.2}, {262, 80 * time.Millisecond, 0.2}}
	case SoundCountdown:
		return []tone{{600, 60 * time.Millisecond, 0.22}}
	case SoundGo:
		return []tone{{900, 140 * time.Millisecond, 0.25}}
	case SoundMenuMove:
		return []tone{{260, 24 * time.Millisecond, 0.16}}
	case SoundMenuSelect:
		return []tone{{520, 70 * time.Millisecond, 0.2}}
	case SoundGameOver:
		return []tone{{262, 120 * time.Millisecond, 0.28}, {196, 120 * time.Millisecond, 0.28}, {131, 220 * time.Millisecond, 0.3}}
	}
	return nil
}

// renderTones synthesizes the sequence into interleaved 16-bit little endian
// stereo PCM.
func renderTones(sequence []tone, rate beep.SampleRate, master float64) ([]byte, error) {
	parts := make([]beep.Streamer, 0, 2*len(sequence))
	for i, t := range sequence {
		sine, err := generators.SineTone(rate, t.freq)
		if err != nil {
			return nil, err
		}
		n := rate.N(t.dur)
		shaped := newFade(beep.Take(n, sine), n, rate.N(toneFade))
		parts = append(parts, withGain(shaped, t.gain*clampVolume(master)))
		if i < len(sequence)-1 {
			parts = append(parts, beep.Silence(rate.N(toneGap)))
		}
	}
	return encodePCM(beep.Seq(parts...)), nil
}

func withGain(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

func encodePCM(s beep.Streamer) []byte {
	var out bytes.Buffer
	frames := make([][2]float64, 512)
	for {
		n, ok := s.Stream(frames)
		for _, frame := range frames[:n] {
			for _, v := range frame {
				v = math.Max(-1, math.Min(1, v))
				sample := int16(v * math.MaxInt16)
				out.WriteByte(byte(sample))
				out.WriteByte(byte(sample >> 8))
			}
		}
		if !ok || n == 0 {
			return out.Bytes()
		}
	}
}

// fade ramps the first and last few samples to avoid clicks.
type fade struct {
	streamer beep.Streamer
	pos      int
	total    int
	ramp     int
}

func newFade(s beep.Streamer, total, ramp int) beep.Streamer {
	return &fade{streamer: s, total: total, ramp: ramp}
}

func (f *fade) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		env := 1.0
		if f.ramp > 0 {
			if f.pos < f.ramp {
				env = float64(f.pos) / float64(f.ramp)
			} else if left := f.total - f.pos; left < f.ramp {
				env = math.Max(0, float64(left)/float64(f.ramp))
			}
		}
		samples[i][0] *= env
		samples[i][1] *= env
		f.pos++
	}
	return n, ok
}

func (f *fade) Err() error {
	return f.streamer.Err()
}

func clampVolume(value float64) float64 {
	return math.Max(0, math.Min(1, value))
}
