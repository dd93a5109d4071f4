package session

// RevealKind names one supplementary block of a question.
type RevealKind int

const (
	RevealHint RevealKind = iota
	RevealSolution
	RevealAnswer
)

func (k RevealKind) String() string {
	switch k {
	case RevealHint:
		return "hint"
	case RevealSolution:
		return "solution"
	case RevealAnswer:
		return "answer"
	default:
		return "unknown"
	}
}

// Reveal holds independent visibility flags. The zero value hides all.
type Reveal struct {
	Hint     bool
	Solution bool
	Answer   bool
}

// Toggle flips the flag for k and leaves the others alone.
func (r Reveal) Toggle(k RevealKind) Reveal {
	switch k {
	case RevealHint:
		r.Hint = !r.Hint
	case RevealSolution:
		r.Solution = !r.Solution
	case RevealAnswer:
		r.Answer = !r.Answer
	}
	return r
}

// Shown reports whether the block for k is visible.
func (r Reveal) Shown(k RevealKind) bool {
	switch k {
	case RevealHint:
		return r.Hint
	case RevealSolution:
		return r.Solution
	case RevealAnswer:
		return r.Answer
	}
	return false
}
