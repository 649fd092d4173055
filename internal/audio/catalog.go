package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownSound is returned for identifiers missing from the catalog.
var ErrUnknownSound = errors.New("unknown sound")

// Sound is a selectable alarm sound.
type Sound struct {
	// ID is the value stored in an alarm's soundType.
	ID string `json:"id"`
	// Name is the label shown to the user.
	Name string `json:"name"`
	// Path is the URL path of the file, relative to the sounds directory root.
	Path string `json:"path"`
}

// Catalog is the fixed list of sounds and the directory they are served from.
type Catalog struct {
	sounds []Sound
	dir    string
}

// DefaultCatalog returns the four bundled sounds rooted at dir.
func DefaultCatalog(dir string) *Catalog {
	sounds := make([]Sound, 0, 4)

	for i := 1; i <= 4; i++ {
		sounds = append(sounds, Sound{
			ID:   fmt.Sprintf("alarm%d", i),
			Name: fmt.Sprintf("Alarm %d", i),
			Path: fmt.Sprintf("/sounds/alarm%d.wav", i),
		})
	}

	return NewCatalog(dir, sounds)
}

// NewCatalog builds a catalog from an explicit list.
func NewCatalog(dir string, sounds []Sound) *Catalog {
	return &Catalog{
		sounds: append([]Sound(nil), sounds...),
		dir:    dir,
	}
}

// List returns a copy of all sounds in catalog order.
func (c *Catalog) List() []Sound {
	return append([]Sound(nil), c.sounds...)
}

// Find looks a sound up by id.
func (c *Catalog) Find(id string) (Sound, bool) {
	for _, s := range c.sounds {
		if s.ID == id {
			return s, true
		}
	}

	return Sound{}, false
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.Find(id)

	return ok
}

// Dir is the directory holding the sounds/ folder.
func (c *Catalog) Dir() string {
	return c.dir
}

// File returns the on-disk location of a sound.
func (c *Catalog) File(id string) (string, error) {
	s, ok := c.Find(id)
	if !ok {
		return "", fmt.Errorf("%q: %w", id, ErrUnknownSound)
	}

	return filepath.Join(c.dir, filepath.FromSlash(strings.TrimPrefix(s.Path, "/"))), nil
}
