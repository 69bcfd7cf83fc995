package ports

import (
	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// TemplateSource builds a TemplateDescriptor through one of its two
// construction paths. Downstream binding and rendering never branch on
// "was a template uploaded" beyond the descriptor's Origin field.
type TemplateSource interface {
	// Builtin returns the fixed default descriptor: one layout per slide
	// kind with fixed style defaults.
	Builtin() *entities.TemplateDescriptor

	// FromUpload derives a descriptor from an uploaded document. Bytes
	// that cannot be opened as a presentation container at all yield a
	// typed invalid-template failure; missing layout kinds are not an
	// error (binding falls back softly).
	FromUpload(data []byte) (*entities.TemplateDescriptor, error)
}
