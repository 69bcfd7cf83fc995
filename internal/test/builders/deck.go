package builders

import (
	"fmt"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// DeckBuilder helps build Deck entities for testing
type DeckBuilder struct {
	deck *entities.Deck
}

// NewDeckBuilder creates a new deck builder with a valid minimal deck: a
// title slide followed by one bullets slide.
func NewDeckBuilder() *DeckBuilder {
	return &DeckBuilder{
		deck: &entities.Deck{
			Title: "Test Deck",
			Slides: []entities.SlideSpec{
				{Kind: entities.KindTitle, Heading: "Test Deck"},
				{
					Kind:    entities.KindBullets,
					Heading: "First Topic",
					Bullets: []entities.BulletSpec{{Text: "a point"}},
				},
			},
		},
	}
}

// WithTitle sets the deck title and the title slide heading
func (b *DeckBuilder) WithTitle(title string) *DeckBuilder {
	b.deck.Title = title
	if len(b.deck.Slides) > 0 && b.deck.Slides[0].Kind == entities.KindTitle {
		b.deck.Slides[0].Heading = title
	}
	return b
}

// WithSlides replaces all slides
func (b *DeckBuilder) WithSlides(slides ...entities.SlideSpec) *DeckBuilder {
	b.deck.Slides = slides
	return b
}

// WithSlide appends a slide
func (b *DeckBuilder) WithSlide(slide entities.SlideSpec) *DeckBuilder {
	b.deck.Slides = append(b.deck.Slides, slide)
	return b
}

// WithBulletSlides appends the given number of bullets slides
func (b *DeckBuilder) WithBulletSlides(count int) *DeckBuilder {
	for i := 0; i < count; i++ {
		b.deck.Slides = append(b.deck.Slides, NewSlideBuilder().
			WithHeading(fmt.Sprintf("Topic %d", i+1)).
			Build())
	}
	return b
}

// WithClosing appends a closing slide
func (b *DeckBuilder) WithClosing(heading string) *DeckBuilder {
	b.deck.Slides = append(b.deck.Slides, entities.SlideSpec{
		Kind:    entities.KindClosing,
		Heading: heading,
	})
	return b
}

// Build returns the deck
func (b *DeckBuilder) Build() *entities.Deck {
	return b.deck
}

// SlideBuilder helps build SlideSpec entities for testing
type SlideBuilder struct {
	slide entities.SlideSpec
}

// NewSlideBuilder creates a new slide builder defaulting to a bullets slide
// with one bullet
func NewSlideBuilder() *SlideBuilder {
	return &SlideBuilder{
		slide: entities.SlideSpec{
			Kind:    entities.KindBullets,
			Heading: "Test Slide",
			Bullets: []entities.BulletSpec{{Text: "a point"}},
		},
	}
}

// WithKind sets the slide kind
func (b *SlideBuilder) WithKind(kind entities.SlideKind) *SlideBuilder {
	b.slide.Kind = kind
	return b
}

// WithHeading sets the slide heading
func (b *SlideBuilder) WithHeading(heading string) *SlideBuilder {
	b.slide.Heading = heading
	return b
}

// WithBullets replaces the slide bullets
func (b *SlideBuilder) WithBullets(bullets ...entities.BulletSpec) *SlideBuilder {
	b.slide.Bullets = bullets
	return b
}

// WithBullet appends a bullet at the given level
func (b *SlideBuilder) WithBullet(text string, level int) *SlideBuilder {
	b.slide.Bullets = append(b.slide.Bullets, entities.BulletSpec{Text: text, Level: level})
	return b
}

// WithNotes sets speaker notes
func (b *SlideBuilder) WithNotes(notes string) *SlideBuilder {
	b.slide.Notes = notes
	return b
}

// Build returns the slide
func (b *SlideBuilder) Build() entities.SlideSpec {
	return b.slide
}

// BoundDeckBuilder helps build BoundDeck entities for testing the renderer
type BoundDeckBuilder struct {
	bound *entities.BoundDeck
}

// NewBoundDeckBuilder binds a deck against the given descriptor layouts
// without going through the binder service.
func NewBoundDeckBuilder(deck *entities.Deck, descriptor *entities.TemplateDescriptor) *BoundDeckBuilder {
	bound := &entities.BoundDeck{
		Title:    deck.Title,
		Styles:   descriptor.Styles,
		Origin:   descriptor.Origin,
		ThemeXML: descriptor.ThemeXML,
	}
	for _, spec := range deck.Slides {
		slot, exact := descriptor.SlotFor(spec.Kind)
		bound.Slides = append(bound.Slides, entities.BoundSlide{
			Spec:     spec,
			Slot:     slot,
			Fallback: !exact,
		})
	}
	return &BoundDeckBuilder{bound: bound}
}

// Build returns the bound deck
func (b *BoundDeckBuilder) Build() *entities.BoundDeck {
	return b.bound
}
