package audio

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

var errOutputUnavailable = errors.New("audio output is unavailable")

// Output turns a PCM stream into sound.
type Output interface {
	// Format is the PCM layout Play expects.
	Format() Format
	// Play starts r at volume and returns immediately.
	Play(r io.Reader, volume float64) (Stream, error)
}

// Stream is a sound started by an Output.
type Stream interface {
	// Stop halts playback; repeated calls are no-ops.
	Stop()
	// Playing reports whether the stream is still producing sound.
	Playing() bool
}

// OtoOutput plays through the system audio device. Only one oto context may
// exist per process, so it is created lazily on first Play and reused.
type OtoOutput struct {
	format Format
	ctx    *oto.Context
	err    error
	once   sync.Once
}

// NewOtoOutput returns an output with the given PCM layout.
func NewOtoOutput(format Format) *OtoOutput {
	return &OtoOutput{
		format: format,
	}
}

// Format returns the device PCM layout.
func (o *OtoOutput) Format() Format {
	return o.format
}

// Play starts r on a new oto player.
func (o *OtoOutput) Play(r io.Reader, volume float64) (Stream, error) {
	o.once.Do(o.init)

	if o.err != nil {
		return nil, o.err
	}

	player := o.ctx.NewPlayer(r)
	player.SetVolume(volume)
	player.Play()

	return &otoStream{player: player}, nil
}

func (o *OtoOutput) init() {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.format.SampleRate,
		ChannelCount: o.format.Channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		o.err = fmt.Errorf("%w: %w", errOutputUnavailable, err)

		return
	}

	<-ready

	o.ctx = ctx
}

type otoStream struct {
	player *oto.Player
	once   sync.Once
}

func (s *otoStream) Stop() {
	s.once.Do(func() {
		s.player.Pause()
		_ = s.player.Close()
	})
}

func (s *otoStream) Playing() bool {
	return s.player.IsPlaying()
}

// Silent is an Output that discards audio. It is used when audio is disabled.
type Silent struct {
	format Format
}

// NewSilent returns a silent output reporting format.
func NewSilent(format Format) *Silent {
	return &Silent{format: format}
}

// Format returns the reported PCM layout.
func (s *Silent) Format() Format {
	return s.format
}

// Play returns a stream that is "playing" until stopped.
func (s *Silent) Play(io.Reader, float64) (Stream, error) {
	return &silentStream{}, nil
}

type silentStream struct {
	stopped bool
	mu      sync.Mutex
}

func (s *silentStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
}

func (s *silentStream) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return !s.stopped
}
