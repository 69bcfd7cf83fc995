package ports

import (
	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// DeckRenderer materializes a bound deck into final document bytes.
// Rendering is deterministic for a given BoundDeck: structural content is
// byte-for-byte equivalent across runs; embedded timestamps are the
// documented exception. Rendering either fully succeeds or returns nothing.
type DeckRenderer interface {
	Render(bound *entities.BoundDeck) ([]byte, error)
}

// PreviewRenderer renders a bound deck to a standalone HTML document for
// in-browser preview.
type PreviewRenderer interface {
	RenderHTML(bound *entities.BoundDeck) ([]byte, error)
}
