package services

import (
	"fmt"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// TemplateBinder resolves each slide of a deck against a concrete layout
// slot of the target descriptor. Binding is total: every input slide yields
// exactly one bound slide, with a soft fallback to a generic content layout
// when the descriptor offers no exact kind match.
type TemplateBinder struct{}

// NewTemplateBinder creates a template binder.
func NewTemplateBinder() *TemplateBinder {
	return &TemplateBinder{}
}

// BindResult carries the bound deck plus the degradation notes collected
// during binding (one per slide that fell back to a generic layout).
type BindResult struct {
	Deck      *entities.BoundDeck
	Fallbacks []string
}

// Bind maps the deck onto the descriptor's layout slots.
func (b *TemplateBinder) Bind(deck *entities.Deck, descriptor *entities.TemplateDescriptor) (*BindResult, error) {
	if err := deck.Validate(); err != nil {
		return nil, entities.NewCompileError(entities.KindRenderFailure, "deck handed to binder is invalid", err)
	}
	if err := descriptor.Validate(); err != nil {
		return nil, entities.NewCompileError(entities.KindInvalidTemplate, "template descriptor is unusable", err)
	}

	bound := &entities.BoundDeck{
		Title:    deck.Title,
		Slides:   make([]entities.BoundSlide, 0, len(deck.Slides)),
		Styles:   descriptor.Styles,
		Origin:   descriptor.Origin,
		ThemeXML: descriptor.ThemeXML,
	}

	var fallbacks []string
	for i, slide := range deck.Slides {
		slot, exact := descriptor.SlotFor(slide.Kind)
		if !exact {
			fallbacks = append(fallbacks, fmt.Sprintf("slide %d (%s): no %q layout, using %q", i+1, slide.Heading, slide.Kind, slot.Name))
		}
		bound.Slides = append(bound.Slides, entities.BoundSlide{
			Spec:     slide,
			Slot:     slot,
			Fallback: !exact,
		})
	}

	return &BindResult{Deck: bound, Fallbacks: fallbacks}, nil
}
