package main

import (
	"bytes"
	"encoding/binary"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopTrackWraps(t *testing.T) {
	track := &loopTrack{src: bytes.NewReader([]byte{1, 2, 3, 4})}
	buf := make([]byte, 10)

	n, err := io.ReadFull(track, buf)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []byte{1, 2, 3, 4, 1, 2, 3, 4, 1, 2}, buf)
}

func TestLoopTrackEmptySource(t *testing.T) {
	track := &loopTrack{src: bytes.NewReader(nil)}
	n, err := track.Read(make([]byte, 4))
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, err, io.EOF)
}

type sizedReader struct {
	*bytes.Reader
}

func (s sizedReader) Length() int64 { return s.Size() }

func TestLoopTrackDuration(t *testing.T) {
	track := &loopTrack{src: sizedReader{bytes.NewReader(make([]byte, 4*44100*2))}}
	assert.Equal(t, 2*time.Second, track.Duration(44100))
	assert.Zero(t, track.Duration(0))
	assert.Zero(t, (&loopTrack{src: bytes.NewReader(nil)}).Duration(44100))
}

func TestVolumeReaderScales(t *testing.T) {
	pcm := make([]byte, 4)
	binary.LittleEndian.PutUint16(pcm[0:], uint16(int16(1000)))
	negative := int16(-1000)
	binary.LittleEndian.PutUint16(pcm[2:], uint16(negative))
	reader := &volumeReader{reader: bytes.NewReader(pcm), getVolume: func() float64 { return 0.5 }}

	out := make([]byte, 4)
	n, err := reader.Read(out)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, int16(500), int16(binary.LittleEndian.Uint16(out[0:])))
	assert.Equal(t, int16(-500), int16(binary.LittleEndian.Uint16(out[2:])))
}

func TestOpenTrackErrors(t *testing.T) {
	_, err := openTrack(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)
}

func TestNilMusicPlayerIsSilent(t *testing.T) {
	player := NewMusicPlayer(nil, defaultSampleRate, "song.mp3", 1, true)
	assert.Nil(t, player)
	player.Start()
	player.Pause()
	player.Resume()
	player.SetVolume(0.2)
	player.SetEnabled(false)
	player.Stop()
	assert.False(t, player.Playing())
}
