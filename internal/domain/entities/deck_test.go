package entities

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDeck() *Deck {
	return &Deck{
		Title: "Quarterly Review",
		Slides: []SlideSpec{
			{Kind: KindTitle, Heading: "Quarterly Review"},
			{Kind: KindBullets, Heading: "Results", Bullets: []BulletSpec{
				{Text: "Revenue up", Level: 0},
				{Text: "EMEA strongest", Level: 1},
			}},
			{Kind: KindSection, Heading: "Outlook"},
			{Kind: KindClosing, Heading: "Thank You"},
		},
	}
}

func TestDeckValidate(t *testing.T) {
	t.Run("valid deck passes", func(t *testing.T) {
		assert.NoError(t, validDeck().Validate())
	})

	t.Run("empty deck fails", func(t *testing.T) {
		deck := &Deck{Title: "Empty"}
		assert.Error(t, deck.Validate())
	})

	t.Run("first slide must be title", func(t *testing.T) {
		deck := validDeck()
		deck.Slides[0].Kind = KindSection
		err := deck.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "title")
	})

	t.Run("bullets slide needs at least one bullet", func(t *testing.T) {
		deck := validDeck()
		deck.Slides[1].Bullets = nil
		assert.Error(t, deck.Validate())
	})

	t.Run("title slide may have no bullets", func(t *testing.T) {
		deck := validDeck()
		deck.Slides[0].Bullets = nil
		assert.NoError(t, deck.Validate())
	})
}

func TestSlideSpecValidate(t *testing.T) {
	t.Run("heading required", func(t *testing.T) {
		s := SlideSpec{Kind: KindSection, Heading: "  "}
		assert.Error(t, s.Validate())
	})

	t.Run("heading capped at max length", func(t *testing.T) {
		s := SlideSpec{Kind: KindSection, Heading: strings.Repeat("x", MaxHeadingLength+1)}
		assert.Error(t, s.Validate())
	})

	t.Run("bullet text must be non-empty after trim", func(t *testing.T) {
		s := SlideSpec{Kind: KindBullets, Heading: "H", Bullets: []BulletSpec{{Text: "   "}}}
		assert.Error(t, s.Validate())
	})

	t.Run("nesting may deepen one level at a time", func(t *testing.T) {
		s := SlideSpec{Kind: KindBullets, Heading: "H", Bullets: []BulletSpec{
			{Text: "a", Level: 0},
			{Text: "b", Level: 1},
			{Text: "c", Level: 2},
			{Text: "d", Level: 0},
		}}
		assert.NoError(t, s.Validate())
	})

	t.Run("depth skip rejected", func(t *testing.T) {
		s := SlideSpec{Kind: KindBullets, Heading: "H", Bullets: []BulletSpec{
			{Text: "a", Level: 0},
			{Text: "b", Level: 2},
		}}
		err := s.Validate()
		require.Error(t, err)
	})

	t.Run("first bullet must start at level zero", func(t *testing.T) {
		s := SlideSpec{Kind: KindBullets, Heading: "H", Bullets: []BulletSpec{
			{Text: "a", Level: 1},
		}}
		assert.Error(t, s.Validate())
	})

	t.Run("negative level rejected", func(t *testing.T) {
		s := SlideSpec{Kind: KindBullets, Heading: "H", Bullets: []BulletSpec{
			{Text: "a", Level: -1},
		}}
		assert.Error(t, s.Validate())
	})
}

func TestSlideSpecHasNotes(t *testing.T) {
	assert.False(t, (&SlideSpec{}).HasNotes())
	assert.False(t, (&SlideSpec{Notes: "  "}).HasNotes())
	assert.True(t, (&SlideSpec{Notes: "mention the demo"}).HasNotes())
}
