package main

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hajimehoshi/go-mp3"
)

// go-mp3 always decodes to 16-bit stereo.
const mp3FrameBytes = 4

// MusicPlayer loops a user supplied MP3 while a game is running. A nil
// *MusicPlayer is silent.
type MusicPlayer struct {
	ctx        *oto.Context
	sampleRate int

	mu      sync.Mutex
	path    string
	player  *oto.Player
	track   *loopTrack
	volume  float64
	enabled bool
}

func NewMusicPlayer(ctx *oto.Context, sampleRate int, path string, volume float64, enabled bool) *MusicPlayer {
	if ctx == nil {
		return nil
	}
	return &MusicPlayer{
		ctx:        ctx,
		sampleRate: sampleRate,
		path:       path,
		volume:     clampVolume(volume),
		enabled:    enabled,
	}
}

func (m *MusicPlayer) SetVolume(volume float64) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.volume = clampVolume(volume)
	m.mu.Unlock()
}

func (m *MusicPlayer) SetEnabled(enabled bool) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.enabled = enabled
	if !enabled {
		m.stopLocked()
	}
	m.mu.Unlock()
}

func (m *MusicPlayer) Playing() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.player != nil
}

// Start begins playback from the top of the track, or keeps the current
// playback going.
func (m *MusicPlayer) Start() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.enabled || m.path == "" || m.player != nil {
		return
	}
	dec, err := openTrack(m.path)
	if err != nil {
		audioLogf("music: %v", err)
		return
	}
	if dec.SampleRate() != m.sampleRate {
		audioLogf("music: %s is %d Hz, device runs at %d Hz", m.path, dec.SampleRate(), m.sampleRate)
		return
	}
	track := &loopTrack{src: dec}
	player := m.ctx.NewPlayer(&volumeReader{reader: track, getVolume: m.volumeValue})
	player.Play()
	m.player = player
	m.track = track
	audioLogf("music: playing %s (%s)", m.path, track.Duration(m.sampleRate).Round(time.Second))
}

// Pause holds playback at the current position.
func (m *MusicPlayer) Pause() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.player != nil {
		m.player.Pause()
	}
	m.mu.Unlock()
}

func (m *MusicPlayer) Resume() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.player != nil && m.enabled {
		m.player.Play()
	}
	m.mu.Unlock()
}

func (m *MusicPlayer) Stop() {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.stopLocked()
	m.mu.Unlock()
}

func (m *MusicPlayer) stopLocked() {
	if m.player != nil {
		_ = m.player.Close()
		m.player = nil
	}
	m.track = nil
}

func (m *MusicPlayer) volumeValue() float64 {
	m.mu.Lock()
	volume := m.volume
	m.mu.Unlock()
	return volume
}

func openTrack(path string) (*mp3.Decoder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open track: %w", err)
	}
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode track %s: %w", path, err)
	}
	return dec, nil
}

type lengthSeeker interface {
	io.ReadSeeker
	Length() int64
}

// loopTrack rewinds its source at end of stream so playback never ends.
type loopTrack struct {
	mu  sync.Mutex
	src io.ReadSeeker
}

func (l *loopTrack) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for total < len(p) {
		n, err := l.src.Read(p[total:])
		total += n
		if errors.Is(err, io.EOF) {
			if n == 0 && total == 0 && l.empty() {
				return 0, io.EOF
			}
			if _, serr := l.src.Seek(0, io.SeekStart); serr != nil {
				return total, serr
			}
			continue
		}
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
	}
	return total, nil
}

func (l *loopTrack) empty() bool {
	if ls, ok := l.src.(lengthSeeker); ok {
		return ls.Length() == 0
	}
	pos, err := l.src.Seek(0, io.SeekCurrent)
	return err == nil && pos == 0
}

// Duration is derived from the decoded length since go-mp3 only reports
// bytes.
func (l *loopTrack) Duration(sampleRate int) time.Duration {
	ls, ok := l.src.(lengthSeeker)
	if !ok || sampleRate <= 0 {
		return 0
	}
	frames := ls.Length() / mp3FrameBytes
	return time.Duration(frames) * time.Second / time.Duration(sampleRate)
}

type volumeReader struct {
	reader    io.Reader
	getVolume func() float64
}

func (v *volumeReader) Read(p []byte) (int, error) {
	n, err := v.reader.Read(p)
	gain := clampVolume(v.getVolume())
	if gain >= 0.999 {
		return n, err
	}
	for i := 0; i+1 < n; i += 2 {
		sample := int16(binary.LittleEndian.Uint16(p[i:]))
		binary.LittleEndian.PutUint16(p[i:], uint16(int16(float64(sample)*gain)))
	}
	return n, err
}
