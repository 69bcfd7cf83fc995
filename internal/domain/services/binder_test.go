package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/test/builders"
)

func fullDescriptor() *entities.TemplateDescriptor {
	return &entities.TemplateDescriptor{
		Origin: entities.TemplateBuiltin,
		Layouts: []entities.LayoutSlot{
			{Name: "Title Slide", Kind: entities.KindTitle, SourceIndex: 1},
			{Name: "Section Header", Kind: entities.KindSection, SourceIndex: 2},
			{Name: "Title and Content", Kind: entities.KindBullets, HasBody: true, SourceIndex: 3},
			{Name: "Closing", Kind: entities.KindClosing, SourceIndex: 4},
		},
	}
}

func TestTemplateBinderBind(t *testing.T) {
	binder := NewTemplateBinder()

	t.Run("binds every slide exactly once", func(t *testing.T) {
		deck := builders.NewDeckBuilder().WithBulletSlides(3).WithClosing("Thank You").Build()

		result, err := binder.Bind(deck, fullDescriptor())
		require.NoError(t, err)
		assert.Len(t, result.Deck.Slides, len(deck.Slides))
		assert.Empty(t, result.Fallbacks)
		for i, bs := range result.Deck.Slides {
			assert.Equal(t, deck.Slides[i].Heading, bs.Spec.Heading)
			assert.False(t, bs.Fallback)
		}
	})

	t.Run("missing kind falls back without dropping the slide", func(t *testing.T) {
		desc := fullDescriptor()
		// Remove the closing layout
		desc.Layouts = desc.Layouts[:3]
		deck := builders.NewDeckBuilder().WithClosing("Thank You").Build()

		result, err := binder.Bind(deck, desc)
		require.NoError(t, err)
		assert.Len(t, result.Deck.Slides, len(deck.Slides))

		last := result.Deck.Slides[len(result.Deck.Slides)-1]
		assert.True(t, last.Fallback)
		assert.Equal(t, "Title and Content", last.Slot.Name)

		require.Len(t, result.Fallbacks, 1)
		assert.Contains(t, result.Fallbacks[0], "Thank You")
		assert.Contains(t, result.Fallbacks[0], "closing")
	})

	t.Run("invalid deck is a render failure", func(t *testing.T) {
		deck := &entities.Deck{Title: "broken"}
		_, err := binder.Bind(deck, fullDescriptor())
		require.Error(t, err)
		assert.True(t, entities.IsKind(err, entities.KindRenderFailure))
	})

	t.Run("unusable descriptor is an invalid template", func(t *testing.T) {
		deck := builders.NewDeckBuilder().Build()
		desc := &entities.TemplateDescriptor{
			Origin:  entities.TemplateUploaded,
			Layouts: []entities.LayoutSlot{{Name: "Title Only", Kind: entities.KindTitle}},
		}
		_, err := binder.Bind(deck, desc)
		require.Error(t, err)
		assert.True(t, entities.IsKind(err, entities.KindInvalidTemplate))
	})

	t.Run("styles and origin carried through", func(t *testing.T) {
		desc := fullDescriptor()
		desc.Styles = entities.StyleHints{HeadingFont: "Georgia", BodyFont: "Verdana"}
		desc.Origin = entities.TemplateUploaded
		desc.ThemeXML = []byte("<a:theme/>")

		result, err := binder.Bind(builders.NewDeckBuilder().Build(), desc)
		require.NoError(t, err)
		assert.Equal(t, "Georgia", result.Deck.Styles.HeadingFont)
		assert.Equal(t, entities.TemplateUploaded, result.Deck.Origin)
		assert.Equal(t, []byte("<a:theme/>"), result.Deck.ThemeXML)
	})
}
