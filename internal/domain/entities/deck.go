package entities

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxHeadingLength is the maximum number of runes allowed in a slide heading.
// Longer headings are truncated during parsing/repair rather than rejected.
const MaxHeadingLength = 120

// SlideKind classifies a slide for layout binding purposes.
type SlideKind string

const (
	KindTitle   SlideKind = "title"
	KindSection SlideKind = "section"
	KindBullets SlideKind = "bullets"
	KindClosing SlideKind = "closing"
)

// Valid reports whether the kind is one of the four canonical kinds.
func (k SlideKind) Valid() bool {
	switch k {
	case KindTitle, KindSection, KindBullets, KindClosing:
		return true
	}
	return false
}

// BulletSpec is a single bullet line with a nesting depth (0 = top level).
type BulletSpec struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Validate ensures the bullet has trimmed, non-empty text and a sane level.
func (b *BulletSpec) Validate() error {
	if strings.TrimSpace(b.Text) == "" {
		return errors.New("bullet text cannot be empty")
	}
	if b.Text != strings.TrimSpace(b.Text) {
		return errors.New("bullet text must be trimmed")
	}
	if b.Level < 0 {
		return errors.New("bullet level must be non-negative")
	}
	return nil
}

// SlideSpec is the canonical representation of one slide, independent of any
// rendering target.
type SlideSpec struct {
	Kind    SlideKind    `json:"kind"`
	Heading string       `json:"heading"`
	Bullets []BulletSpec `json:"bullets,omitempty"`
	Notes   string       `json:"notes,omitempty"`
}

// Validate ensures the slide satisfies the per-kind content rules.
func (s *SlideSpec) Validate() error {
	if !s.Kind.Valid() {
		return fmt.Errorf("unknown slide kind %q", s.Kind)
	}
	if strings.TrimSpace(s.Heading) == "" {
		return errors.New("slide heading cannot be empty")
	}
	if utf8.RuneCountInString(s.Heading) > MaxHeadingLength {
		return fmt.Errorf("slide heading exceeds %d runes", MaxHeadingLength)
	}
	if s.Kind == KindBullets && len(s.Bullets) == 0 {
		return errors.New("bullets slide must have at least one bullet")
	}

	prevLevel := -1
	for i := range s.Bullets {
		if err := s.Bullets[i].Validate(); err != nil {
			return fmt.Errorf("bullet %d: %w", i+1, err)
		}
		if s.Bullets[i].Level > prevLevel+1 {
			return fmt.Errorf("bullet %d: level %d skips depth (previous %d)", i+1, s.Bullets[i].Level, prevLevel)
		}
		prevLevel = s.Bullets[i].Level
	}
	return nil
}

// HasNotes returns true if the slide carries speaker notes.
func (s *SlideSpec) HasNotes() bool {
	return strings.TrimSpace(s.Notes) != ""
}

// Deck is the canonical in-memory representation of a presentation: an
// ordered sequence of slides, at least one, the first of kind title.
type Deck struct {
	Title  string      `json:"title"`
	Slides []SlideSpec `json:"slides"`
}

// Validate ensures the deck satisfies the structural invariants.
func (d *Deck) Validate() error {
	if len(d.Slides) == 0 {
		return errors.New("deck must have at least one slide")
	}
	if d.Slides[0].Kind != KindTitle {
		return fmt.Errorf("first slide must be %s, got %s", KindTitle, d.Slides[0].Kind)
	}
	for i := range d.Slides {
		if err := d.Slides[i].Validate(); err != nil {
			return fmt.Errorf("slide %d validation failed: %w", i+1, err)
		}
	}
	return nil
}

// SlideCount returns the total number of slides.
func (d *Deck) SlideCount() int {
	return len(d.Slides)
}
