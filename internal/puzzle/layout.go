package puzzle

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// DefaultWidth is the default canvas width.
	DefaultWidth = 300
	// DefaultHeight is the default canvas height.
	DefaultHeight = 300
	// DotRadius is the rendered radius of a dot.
	DotRadius = 20
	// Padding keeps dots away from the canvas edges.
	Padding = DotRadius + 10
	// MinDistance is the smallest allowed distance between two dot centres.
	MinDistance = DotRadius*2 + 10
	// MaxAttemptsPerDot bounds the rejection sampling for a single dot.
	MaxAttemptsPerDot = 100
)

var (
	// ErrPlacementFailed is returned when a dot cannot be placed without overlap.
	ErrPlacementFailed = errors.New("unable to place dots without overlap")
	// ErrInvalidLayout is returned for a non-positive count or a canvas that cannot hold a padded dot.
	ErrInvalidLayout = errors.New("invalid layout parameters")
)

// Dot is a numbered target on the canvas.
type Dot struct {
	// ID is the 1-based placement index, which is also the required click order.
	ID int `json:"id"`
	// X is the horizontal centre.
	X float64 `json:"x"`
	// Y is the vertical centre.
	Y float64 `json:"y"`
	// Connected is set once the dot has been clicked in order.
	Connected bool `json:"connected"`
}

// Line is a segment between two canvas points.
type Line struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// PlacementError describes which dot could not be placed.
type PlacementError struct {
	// DotID is the dot that exhausted its attempts.
	DotID int
	// Count is the requested number of dots.
	Count int
	// Width and Height are the canvas dimensions.
	Width, Height float64
}

// Error implements error.
func (e *PlacementError) Error() string {
	return fmt.Sprintf("dot %d of %d on %gx%g canvas after %d attempts: %v",
		e.DotID, e.Count, e.Width, e.Height, MaxAttemptsPerDot, ErrPlacementFailed)
}

// Unwrap lets errors.Is match ErrPlacementFailed.
func (e *PlacementError) Unwrap() error {
	return ErrPlacementFailed
}

// GenerateLayout places count dots inside the padded canvas so that every pair
// is at least MinDistance apart. Dots get IDs 1..count in placement order.
// It never returns a partial layout: either all dots are placed or the error is a *PlacementError.
func GenerateLayout(rng *rand.Rand, count int, width, height float64) ([]Dot, error) {
	if count < 1 {
		return nil, fmt.Errorf("count %d: %w", count, ErrInvalidLayout)
	}

	if width < 2*Padding || height < 2*Padding {
		return nil, fmt.Errorf("canvas %gx%g smaller than %d: %w", width, height, 2*Padding, ErrInvalidLayout)
	}

	var (
		spanX = width - 2*Padding
		spanY = height - 2*Padding
		dots  = make([]Dot, 0, count)
	)

	for id := 1; id <= count; id++ {
		placed := false

		for attempt := 0; attempt < MaxAttemptsPerDot; attempt++ {
			x := Padding + rng.Float64()*spanX
			y := Padding + rng.Float64()*spanY

			if !fits(dots, x, y) {
				continue
			}

			dots = append(dots, Dot{ID: id, X: x, Y: y})
			placed = true

			break
		}

		if !placed {
			return nil, &PlacementError{
				DotID:  id,
				Count:  count,
				Width:  width,
				Height: height,
			}
		}
	}

	return dots, nil
}

// fits reports whether (x, y) keeps MinDistance to every placed dot.
func fits(dots []Dot, x, y float64) bool {
	for _, d := range dots {
		if math.Hypot(d.X-x, d.Y-y) < MinDistance {
			return false
		}
	}

	return true
}

// NewRand returns a generator seeded from the runtime source.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // Dot placement is not security sensitive.
}

// NewSeededRand returns a deterministic generator for reproducible layouts.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // Deterministic by intent.
}
