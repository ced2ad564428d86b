//go:build !headless

// audio_sink_oto.go - oto/v3-backed AudioSink, adapted from the teacher's
// audio_backend_oto.go OtoPlayer (atomic chip pointer, pre-allocated
// sample buffer) to drain DeviceAudio's raw DOC sound RAM instead of a
// synthesized ring buffer.

package main

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

func init() {
	compiledFeatures = append(compiledFeatures, "audio:oto")
}

// OtoAudioSink implements AudioSink by feeding the most recently drained
// sound-RAM snapshot to an oto player as 8-bit unsigned PCM, the simplest
// format that needs no synthesis math (waveform interpretation is an
// explicit non-goal per spec §1).
type OtoAudioSink struct {
	ctx    *oto.Context
	player *oto.Player
	buf    atomic.Pointer[[]byte]
	mu     sync.Mutex
	started bool
}

// NewOtoAudioSink opens an oto context at the given sample rate. Callers
// typically use the DOC's native 44100Hz cadence.
func NewOtoAudioSink(sampleRate int) (*OtoAudioSink, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatUnsignedInt8,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	sink := &OtoAudioSink{ctx: ctx}
	sink.player = ctx.NewPlayer(sink)
	return sink, nil
}

// Read implements io.Reader for oto's pull-based player, copying from
// whatever buffer Write most recently installed.
func (s *OtoAudioSink) Read(p []byte) (int, error) {
	b := s.buf.Load()
	if b == nil || len(*b) == 0 {
		for i := range p {
			p[i] = 0x80 // silence for unsigned 8-bit PCM
		}
		return len(p), nil
	}
	n := copy(p, *b)
	for i := n; i < len(p); i++ {
		p[i] = 0x80
	}
	return len(p), nil
}

// Write implements AudioSink: installs the latest drained sound-RAM
// window for the player to pull from on its next Read.
func (s *OtoAudioSink) Write(samples []byte) {
	cp := make([]byte, len(samples))
	copy(cp, samples)
	s.buf.Store(&cp)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.player.Play()
		s.started = true
	}
}

func (s *OtoAudioSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		s.player.Close()
		s.started = false
	}
}
