package moderation

import "context"

// Provider classifies a piece of user-authored text.
// Implementations never return errors: configuration problems and
// outages are expressed as verdict-shaped results.
type Provider interface {
	Name() string
	Moderate(ctx context.Context, text string) RawResult
}

// RawResult is the closed set of shapes a Provider may answer with.
type RawResult interface {
	rawResult()
}

// Pair is a decision with a reason and no categories.
type Pair struct {
	Safe   bool
	Reason string
}

// Triple is a decision carrying explicit provider categories.
type Triple struct {
	Safe       bool
	Reason     string
	Categories []string
}

func (Pair) rawResult()   {}
func (Triple) rawResult() {}
