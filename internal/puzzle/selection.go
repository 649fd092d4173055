package puzzle

// Selection is the outcome of a single dot click.
type Selection struct {
	// Accepted is true when the click hit the expected dot.
	Accepted bool `json:"accepted"`
	// Dots is the updated layout; unchanged when the click was ignored.
	Dots []Dot `json:"-"`
	// NextID is the dot expected by the following click.
	NextID int `json:"nextId"`
	// Line is the completed segment from the previous dot, if any.
	Line *Line `json:"line,omitempty"`
	// Complete is true once the last dot has been accepted.
	Complete bool `json:"complete"`
}

// RecordSelection applies a click on selectedID when expectedNextID is due.
// Out-of-order clicks are ignored: Accepted is false and nothing changes.
func RecordSelection(dots []Dot, expectedNextID int, selectedID int) Selection {
	ignored := Selection{
		Dots:   dots,
		NextID: expectedNextID,
	}

	if selectedID != expectedNextID || selectedID < 1 || selectedID > len(dots) {
		return ignored
	}

	updated := make([]Dot, len(dots))
	copy(updated, dots)

	current := &updated[selectedID-1]
	if current.ID != selectedID {
		return ignored
	}

	current.Connected = true

	result := Selection{
		Accepted: true,
		Dots:     updated,
		NextID:   expectedNextID + 1,
		Complete: selectedID == len(dots),
	}

	if expectedNextID > 1 {
		previous := updated[selectedID-2]
		result.Line = &Line{
			X1: previous.X,
			Y1: previous.Y,
			X2: current.X,
			Y2: current.Y,
		}
	}

	return result
}
