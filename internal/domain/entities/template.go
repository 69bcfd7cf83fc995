package entities

import (
	"errors"
	"fmt"
)

// TemplateOrigin records which construction path produced a descriptor.
type TemplateOrigin string

const (
	TemplateBuiltin  TemplateOrigin = "builtin"
	TemplateUploaded TemplateOrigin = "uploaded"
)

// LayoutSlot is one layout available in the rendering target, with the
// slide kind it best serves. Uploaded templates contribute their own slots;
// the built-in set has exactly one slot per kind.
type LayoutSlot struct {
	Name        string    // Layout name as declared by the container
	Kind        SlideKind // The slide kind this slot serves
	HasBody     bool      // Whether the slot offers a body placeholder
	SourceIndex int       // Position within the source container
}

// StyleHints carries the template's typography and palette. Values are
// always populated: uploaded templates contribute theirs, the built-in
// descriptor supplies fixed defaults.
type StyleHints struct {
	HeadingFont   string
	BodyFont      string
	HeadingSizePt int
	BodySizePt    int
	AccentColors  []string // Hex RGB, no leading #
}

// TemplateDescriptor describes the layout slots and styles the renderer may
// target. It is derived once per compile, read-only afterwards, and owned by
// the binder for the duration of that compile.
type TemplateDescriptor struct {
	Origin  TemplateOrigin
	Layouts []LayoutSlot
	Styles  StyleHints
	// ThemeXML is the raw theme part of an uploaded container, carried
	// into the rendered output so the deck keeps the template's look.
	// Empty for the built-in descriptor.
	ThemeXML []byte
}

// Validate ensures the descriptor can bind every slide kind somehow: it
// needs at least one slot with a body placeholder to act as the generic
// content fallback.
func (t *TemplateDescriptor) Validate() error {
	if len(t.Layouts) == 0 {
		return errors.New("template descriptor has no layouts")
	}
	for _, l := range t.Layouts {
		if l.HasBody {
			return nil
		}
	}
	return errors.New("template descriptor has no content-capable layout")
}

// SlotFor returns the first slot serving the given kind, or the generic
// content fallback and false when no exact match exists.
func (t *TemplateDescriptor) SlotFor(kind SlideKind) (LayoutSlot, bool) {
	for _, l := range t.Layouts {
		if l.Kind == kind {
			return l, true
		}
	}
	return t.contentFallback(), false
}

func (t *TemplateDescriptor) contentFallback() LayoutSlot {
	for _, l := range t.Layouts {
		if l.HasBody {
			return l
		}
	}
	// Validate guarantees a content-capable layout; reaching here is a bug.
	return t.Layouts[0]
}

// BoundSlide is a SlideSpec resolved against a concrete layout slot.
type BoundSlide struct {
	Spec     SlideSpec
	Slot     LayoutSlot
	Fallback bool // True when no exact kind match existed
}

// BoundDeck is the deck after template binding, ready for rendering.
// Binding never drops slides: len(Slides) always equals the input deck's
// slide count.
type BoundDeck struct {
	Title  string
	Slides []BoundSlide
	Styles StyleHints
	Origin TemplateOrigin
	// ThemeXML mirrors TemplateDescriptor.ThemeXML.
	ThemeXML []byte
}

// Validate checks the bound deck mirrors a valid source deck.
func (b *BoundDeck) Validate() error {
	if len(b.Slides) == 0 {
		return errors.New("bound deck must have at least one slide")
	}
	for i := range b.Slides {
		if err := b.Slides[i].Spec.Validate(); err != nil {
			return fmt.Errorf("bound slide %d: %w", i+1, err)
		}
	}
	return nil
}
