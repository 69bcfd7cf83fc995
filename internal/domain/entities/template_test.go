package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDescriptor() *TemplateDescriptor {
	return &TemplateDescriptor{
		Origin: TemplateBuiltin,
		Layouts: []LayoutSlot{
			{Name: "Title Slide", Kind: KindTitle, SourceIndex: 1},
			{Name: "Section Header", Kind: KindSection, SourceIndex: 2},
			{Name: "Title and Content", Kind: KindBullets, HasBody: true, SourceIndex: 3},
		},
	}
}

func TestTemplateDescriptorValidate(t *testing.T) {
	assert.NoError(t, testDescriptor().Validate())

	t.Run("no layouts", func(t *testing.T) {
		d := &TemplateDescriptor{Origin: TemplateUploaded}
		assert.Error(t, d.Validate())
	})

	t.Run("no content-capable layout", func(t *testing.T) {
		d := &TemplateDescriptor{
			Origin:  TemplateUploaded,
			Layouts: []LayoutSlot{{Name: "Title", Kind: KindTitle}},
		}
		assert.Error(t, d.Validate())
	})
}

func TestTemplateDescriptorSlotFor(t *testing.T) {
	d := testDescriptor()

	t.Run("exact match", func(t *testing.T) {
		slot, exact := d.SlotFor(KindSection)
		assert.True(t, exact)
		assert.Equal(t, "Section Header", slot.Name)
	})

	t.Run("missing kind falls back to content layout", func(t *testing.T) {
		slot, exact := d.SlotFor(KindClosing)
		assert.False(t, exact)
		assert.Equal(t, "Title and Content", slot.Name)
		assert.True(t, slot.HasBody)
	})
}

func TestBoundDeckValidate(t *testing.T) {
	bound := &BoundDeck{
		Title: "Deck",
		Slides: []BoundSlide{
			{Spec: SlideSpec{Kind: KindTitle, Heading: "Deck"}},
		},
	}
	require.NoError(t, bound.Validate())

	bound.Slides = nil
	assert.Error(t, bound.Validate())

	bound.Slides = []BoundSlide{{Spec: SlideSpec{Kind: KindBullets, Heading: "H"}}}
	assert.Error(t, bound.Validate(), "bullets slide without bullets")
}
