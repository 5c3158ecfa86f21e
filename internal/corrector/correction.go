// Package corrector turns a mistyped shell command line into the line the
// user meant, using the commands on the system, corrections the user
// confirmed and the vocabulary of commands that ran successfully.
package corrector

// Stage identifies which step of the pipeline decided a line.
type Stage int

const (
	// StageNone means no step produced a correction.
	StageNone Stage = iota
	// StageExact means the command is already known and runs as typed.
	StageExact
	// StageLearnedLine means a confirmed correction matched the whole line.
	StageLearnedLine
	// StageLearnedBase means a confirmed correction matched the command.
	StageLearnedBase
	// StageStructural means the command and its tokens were matched by
	// similarity.
	StageStructural
)

func (s Stage) String() string {
	switch s {
	case StageExact:
		return "exact"
	case StageLearnedLine:
		return "learned-line"
	case StageLearnedBase:
		return "learned-base"
	case StageStructural:
		return "structural"
	default:
		return "none"
	}
}

// Correction is a suggested replacement for a command line.
type Correction struct {
	Original    string
	Corrected   string
	Stage       Stage
	Fixes       []TokenFix
	Confidence  float64
	Explanation string
}

// TokenFix records a single token correction.
type TokenFix struct {
	Original  string  `json:"original"`
	Corrected string  `json:"corrected"`
	Score     float64 `json:"score"`
}
