package audio

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Player is the alarm tone: one looping sound at a time.
type Player struct {
	output  Output
	catalog *Catalog
	stream  Stream
	soundID string
	mu      sync.Mutex
}

// NewPlayer creates a player over output using catalog for named sounds.
func NewPlayer(output Output, catalog *Catalog) *Player {
	return &Player{
		output:  output,
		catalog: catalog,
	}
}

// Start stops any current tone and loops soundID. An empty, unknown or
// unreadable sound falls back to the beep.
func (p *Player) Start(ctx context.Context, soundID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	reader, volume := p.source(ctx, soundID)

	stream, err := p.output.Play(reader, volume)
	if err != nil {
		return fmt.Errorf("start tone: %w", err)
	}

	p.stream = stream
	p.soundID = soundID

	logger.DebugKV(ctx, "Tone started", "sound", soundID)

	return nil
}

// Stop halts the tone. Calling it with nothing playing is a no-op.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// Playing reports whether a tone is active.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.stream != nil && p.stream.Playing()
}

// SoundID returns the sound of the active tone; empty means the beep or nothing.
func (p *Player) SoundID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil {
		return ""
	}

	return p.soundID
}

func (p *Player) stopLocked() {
	if p.stream == nil {
		return
	}

	p.stream.Stop()
	p.stream = nil
	p.soundID = ""
}

func (p *Player) source(ctx context.Context, soundID string) (io.Reader, float64) {
	format := p.output.Format()

	if soundID != "" && p.catalog != nil {
		pcm, err := loadPCM(p.catalog, soundID, format)
		if err == nil {
			return newLoopReader(pcm), SoundVolume
		}

		logger.WarnKV(ctx, "Falling back to beep", "sound", soundID, "error", err)
	}

	return newLoopReader(beepPattern(format)), BeepVolume
}

// loadPCM reads a catalog sound and checks it matches the output layout.
func loadPCM(catalog *Catalog, soundID string, want Format) ([]byte, error) {
	path, err := catalog.File(soundID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sound: %w", err)
	}

	format, pcm, err := parseWAV(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if format != want {
		return nil, fmt.Errorf("%s is %d Hz x%d, output is %d Hz x%d: %w",
			path, format.SampleRate, format.Channels, want.SampleRate, want.Channels, errUnsupportedWAV)
	}

	return pcm, nil
}
