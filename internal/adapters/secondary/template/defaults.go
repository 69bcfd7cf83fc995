package template

import (
	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// Source builds template descriptors from either construction path.
type Source struct{}

// NewSource creates a template source.
func NewSource() *Source {
	return &Source{}
}

// Builtin returns the default descriptor: one layout per slide kind with
// fixed typography. The slot indices match the layouts the renderer ships
// in its own package.
func (s *Source) Builtin() *entities.TemplateDescriptor {
	return &entities.TemplateDescriptor{
		Origin: entities.TemplateBuiltin,
		Layouts: []entities.LayoutSlot{
			{Name: "Title Slide", Kind: entities.KindTitle, HasBody: false, SourceIndex: 1},
			{Name: "Section Header", Kind: entities.KindSection, HasBody: false, SourceIndex: 2},
			{Name: "Title and Content", Kind: entities.KindBullets, HasBody: true, SourceIndex: 3},
			{Name: "Closing", Kind: entities.KindClosing, HasBody: false, SourceIndex: 4},
		},
		Styles: entities.StyleHints{
			HeadingFont:   "Calibri Light",
			BodyFont:      "Calibri",
			HeadingSizePt: 36,
			BodySizePt:    18,
			AccentColors:  []string{"4472C4", "ED7D31", "A5A5A5", "FFC000", "5B9BD5", "70AD47"},
		},
	}
}

// Compile-time check that Source implements ports.TemplateSource
var _ ports.TemplateSource = (*Source)(nil)
