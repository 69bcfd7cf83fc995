package ports

import (
	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// ParseResult is a validated deck plus a record of how it was recovered.
// Repair is never silent: when the repair pass produced the deck, Pass and
// Heuristics say so and the pipeline copies them into the report.
type ParseResult struct {
	Deck       *entities.Deck
	Pass       entities.ParsePass
	Heuristics []string // Named repair heuristics that fired, in order
}

// OutlineParser turns raw model output into a validated Deck. The strict
// pass targets outline grammar v1 exactly; the repair pass applies a bounded
// set of normalization heuristics before giving up with a typed
// unparsable-response failure.
type OutlineParser interface {
	Parse(raw string) (*ParseResult, error)
}
