package puzzle

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Status is the life-cycle stage of a puzzle instance.
type Status string

const (
	// StatusNotStarted is a generated puzzle that has not been presented yet.
	StatusNotStarted Status = "not_started"
	// StatusInProgress is a presented puzzle accepting clicks.
	StatusInProgress Status = "in_progress"
	// StatusSolved is terminal: every dot was connected in order.
	StatusSolved Status = "solved"
	// StatusCancelled is terminal: the instance was discarded without completion.
	StatusCancelled Status = "cancelled"
)

var (
	// ErrNotInProgress is returned when an operation needs a running puzzle.
	ErrNotInProgress = errors.New("puzzle is not in progress")
	// ErrAlreadySolved is returned when cancelling a solved puzzle.
	ErrAlreadySolved = errors.New("puzzle is already solved")
)

// Puzzle is a single run of the challenge. It is not safe for concurrent use;
// the owner serialises access.
type Puzzle struct {
	// width and height bound the pointer preview.
	width, height float64
	// dots is the layout with connection flags.
	dots []Dot
	// lines are the completed segments in click order.
	lines []Line
	// preview is the transient line to the pointer, if any.
	preview *Line
	// nextID is the dot expected by the next click.
	nextID int
	// elapsed counts seconds since the puzzle was presented.
	elapsed int
	// status is the life-cycle stage.
	status Status
}

// New wraps a generated layout in a puzzle instance for a width x height canvas.
func New(dots []Dot, width, height float64) *Puzzle {
	return &Puzzle{
		width:  width,
		height: height,
		dots:   dots,
		lines:  make([]Line, 0, len(dots)),
		nextID: 1,
		status: StatusNotStarted,
	}
}

// Generate builds a layout of count dots and wraps it in a puzzle instance.
func Generate(rng *rand.Rand, count int, width, height float64) (*Puzzle, error) {
	dots, err := GenerateLayout(rng, count, width, height)
	if err != nil {
		return nil, err
	}

	return New(dots, width, height), nil
}

// Start presents the puzzle and starts counting from zero.
func (p *Puzzle) Start() error {
	if p.status != StatusNotStarted {
		return fmt.Errorf("start from %s: %w", p.status, ErrNotInProgress)
	}

	p.status = StatusInProgress
	p.elapsed = 0

	return nil
}

// Tick adds one elapsed second while the puzzle is in progress.
func (p *Puzzle) Tick() {
	if p.status == StatusInProgress {
		p.elapsed++
	}
}

// Select handles a click on dot id. Out-of-order clicks are ignored without error.
func (p *Puzzle) Select(id int) (Selection, error) {
	if p.status != StatusInProgress {
		return Selection{NextID: p.nextID}, ErrNotInProgress
	}

	result := RecordSelection(p.dots, p.nextID, id)
	if !result.Accepted {
		return result, nil
	}

	p.dots = result.Dots
	p.nextID = result.NextID
	p.preview = nil

	if result.Line != nil {
		p.lines = append(p.lines, *result.Line)
	}

	if result.Complete {
		p.status = StatusSolved
	}

	return result, nil
}

// MovePointer updates the preview line from the last connected dot to (x, y).
// A pointer outside the canvas clears the preview. It reports whether a preview is shown.
func (p *Puzzle) MovePointer(x, y float64) bool {
	if p.status != StatusInProgress || p.nextID == 1 {
		p.preview = nil
		return false
	}

	if x < 0 || y < 0 || x > p.width || y > p.height {
		p.preview = nil
		return false
	}

	last := p.dots[p.nextID-2]
	p.preview = &Line{
		X1: last.X,
		Y1: last.Y,
		X2: x,
		Y2: y,
	}

	return true
}

// LeavePointer clears the preview line.
func (p *Puzzle) LeavePointer() {
	p.preview = nil
}

// Cancel discards the instance. Solved puzzles cannot be cancelled.
func (p *Puzzle) Cancel() error {
	if p.status == StatusSolved {
		return ErrAlreadySolved
	}

	p.status = StatusCancelled
	p.preview = nil

	return nil
}

// Status returns the life-cycle stage.
func (p *Puzzle) Status() Status {
	return p.status
}

// Elapsed returns the seconds counted since Start.
func (p *Puzzle) Elapsed() int {
	return p.elapsed
}

// NextID returns the dot expected by the next click.
func (p *Puzzle) NextID() int {
	return p.nextID
}

// View is a render-ready snapshot of a puzzle.
type View struct {
	Status         Status  `json:"status"`
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Dots           []Dot   `json:"dots"`
	Lines          []Line  `json:"lines"`
	Preview        *Line   `json:"preview,omitempty"`
	NextID         int     `json:"nextId"`
	Total          int     `json:"total"`
	ElapsedSeconds int     `json:"elapsedSeconds"`
	Elapsed        string  `json:"elapsed"`
}

// View returns a copy of the puzzle state.
func (p *Puzzle) View() View {
	v := View{
		Status:         p.status,
		Width:          p.width,
		Height:         p.height,
		Dots:           append([]Dot(nil), p.dots...),
		Lines:          append([]Line(nil), p.lines...),
		NextID:         p.nextID,
		Total:          len(p.dots),
		ElapsedSeconds: p.elapsed,
		Elapsed:        FormatElapsed(p.elapsed),
	}

	if p.preview != nil {
		preview := *p.preview
		v.Preview = &preview
	}

	return v
}

// FormatElapsed renders seconds as MM:SS.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}

	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
