package progress

// Snapshot is the derived view of one input state.
type Snapshot struct {
	Input    string
	Cursor   int
	Classes  []Class
	Overflow string
}

// Errors counts incorrect characters, including overflow.
func (s Snapshot) Errors() int {
	n := len([]rune(s.Overflow))
	for _, c := range s.Classes {
		if c == Incorrect {
			n++
		}
	}
	return n
}

// Tracker follows the input for one target. It keeps only the latest input.
type Tracker struct {
	target string
	input  string
}

func NewTracker(target string) *Tracker {
	return &Tracker{target: target}
}

// Apply records input as the current value and recomputes the snapshot.
func (t *Tracker) Apply(input string) Snapshot {
	t.input = input
	return t.Snapshot()
}

// Snapshot recomputes the view of the current input.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		Input:    t.input,
		Cursor:   Cursor(t.input),
		Classes:  Diff(t.target, t.input),
		Overflow: Overflow(t.target, t.input),
	}
}

func (t *Tracker) Target() string { return t.target }
func (t *Tracker) Input() string  { return t.input }
func (t *Tracker) Cursor() int    { return Cursor(t.input) }
