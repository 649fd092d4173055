package audio

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// Previewer plays catalog sounds once, independently of the alarm tone.
type Previewer struct {
	output  Output
	catalog *Catalog
	stream  Stream
	soundID string
	mu      sync.Mutex
}

// NewPreviewer creates a previewer over output.
func NewPreviewer(output Output, catalog *Catalog) *Previewer {
	return &Previewer{
		output:  output,
		catalog: catalog,
	}
}

// List returns the catalog sounds.
func (p *Previewer) List() []Sound {
	return p.catalog.List()
}

// Preview stops the previous preview and plays id once.
func (p *Previewer) Preview(ctx context.Context, id string) error {
	if !p.catalog.Has(id) {
		return fmt.Errorf("%q: %w", id, ErrUnknownSound)
	}

	pcm, err := loadPCM(p.catalog, id, p.output.Format())
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	stream, err := p.output.Play(bytes.NewReader(pcm), SoundVolume)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	p.stream = stream
	p.soundID = id

	logger.DebugKV(ctx, "Preview started", "sound", id)

	return nil
}

// Stop halts the preview, if any.
func (p *Previewer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// PlayingID returns the sound being previewed, or "" once it ended.
func (p *Previewer) PlayingID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stream == nil || !p.stream.Playing() {
		return ""
	}

	return p.soundID
}

func (p *Previewer) stopLocked() {
	if p.stream == nil {
		return
	}

	p.stream.Stop()
	p.stream = nil
	p.soundID = ""
}
