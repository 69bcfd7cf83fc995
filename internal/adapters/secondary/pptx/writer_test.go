package pptx

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/test/builders"
)

type fixedClock struct{ now time.Time }

func (c *fixedClock) Now() time.Time                  { return c.now }
func (c *fixedClock) Since(t time.Time) time.Duration { return c.now.Sub(t) }
func (c *fixedClock) Sleep(time.Duration)             {}

func testClock() *fixedClock {
	return &fixedClock{now: time.Date(2024, time.June, 1, 10, 30, 0, 0, time.UTC)}
}

func testDescriptor() *entities.TemplateDescriptor {
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

func boundDeck(deck *entities.Deck) *entities.BoundDeck {
	return builders.NewBoundDeckBuilder(deck, testDescriptor()).Build()
}

func openArchive(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	return zr
}

func readPart(t *testing.T, zr *zip.Reader, name string) string {
	t.Helper()
	f, err := zr.Open(name)
	require.NoError(t, err, "package member %s", name)
	defer func() { _ = f.Close() }()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	return string(data)
}

func TestRendererRender(t *testing.T) {
	t.Run("produces a well-formed package", func(t *testing.T) {
		r := NewRenderer(testClock())
		deck := builders.NewDeckBuilder().WithBulletSlides(2).WithClosing("Thank You").Build()

		data, err := r.Render(boundDeck(deck))
		require.NoError(t, err)

		zr := openArchive(t, data)
		for _, name := range []string{
			"[Content_Types].xml",
			"_rels/.rels",
			"ppt/presentation.xml",
			"ppt/_rels/presentation.xml.rels",
			"ppt/slideMasters/slideMaster1.xml",
			"ppt/theme/theme1.xml",
			"ppt/slides/slide1.xml",
			"ppt/slides/slide5.xml",
		} {
			_, err := zr.Open(name)
			assert.NoError(t, err, "missing %s", name)
		}
	})

	t.Run("identical input renders byte-identical output", func(t *testing.T) {
		clock := testClock()
		deck := builders.NewDeckBuilder().WithBulletSlides(3).Build()

		a, err := NewRenderer(clock).Render(boundDeck(deck))
		require.NoError(t, err)
		b, err := NewRenderer(clock).Render(boundDeck(deck))
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("member timestamps are fixed", func(t *testing.T) {
		r := NewRenderer(testClock())
		data, err := r.Render(boundDeck(builders.NewDeckBuilder().Build()))
		require.NoError(t, err)

		zr := openArchive(t, data)
		for _, f := range zr.File {
			assert.True(t, f.Modified.Equal(fixedZipTime), "member %s carries %v", f.Name, f.Modified)
		}
	})

	t.Run("title slide carries the generation date subtitle", func(t *testing.T) {
		r := NewRenderer(testClock())
		data, err := r.Render(boundDeck(builders.NewDeckBuilder().Build()))
		require.NoError(t, err)

		slide1 := readPart(t, openArchive(t, data), "ppt/slides/slide1.xml")
		assert.Contains(t, slide1, "Generated on June 1, 2024")
		assert.Contains(t, slide1, `type="ctrTitle"`)
	})

	t.Run("bullets keep their nesting levels", func(t *testing.T) {
		deck := builders.NewDeckBuilder().WithSlides(
			builders.NewSlideBuilder().WithKind(entities.KindTitle).WithHeading("Deck").WithBullets().Build(),
			builders.NewSlideBuilder().
				WithHeading("Nested").
				WithBullets().
				WithBullet("top", 0).
				WithBullet("inner", 1).
				Build(),
		).Build()

		r := NewRenderer(testClock())
		data, err := r.Render(boundDeck(deck))
		require.NoError(t, err)

		slide2 := readPart(t, openArchive(t, data), "ppt/slides/slide2.xml")
		assert.Contains(t, slide2, `<a:pPr lvl="0"/>`)
		assert.Contains(t, slide2, `<a:pPr lvl="1"/>`)
		assert.Contains(t, slide2, "<a:t>inner</a:t>")
	})

	t.Run("headings are escaped", func(t *testing.T) {
		deck := builders.NewDeckBuilder().WithTitle("R&D <Roadmap>").Build()

		r := NewRenderer(testClock())
		data, err := r.Render(boundDeck(deck))
		require.NoError(t, err)

		slide1 := readPart(t, openArchive(t, data), "ppt/slides/slide1.xml")
		assert.Contains(t, slide1, "R&amp;D &lt;Roadmap&gt;")
		assert.NotContains(t, slide1, "<Roadmap>")
	})

	t.Run("invalid bound deck is a render failure", func(t *testing.T) {
		r := NewRenderer(testClock())
		_, err := r.Render(&entities.BoundDeck{})
		require.Error(t, err)
		assert.True(t, entities.IsKind(err, entities.KindRenderFailure))
	})
}

func TestRendererNotes(t *testing.T) {
	t.Run("noted slides get notes parts and a notes master", func(t *testing.T) {
		deck := builders.NewDeckBuilder().
			WithSlide(builders.NewSlideBuilder().WithHeading("Briefed").WithNotes("mention the demo").Build()).
			Build()

		r := NewRenderer(testClock())
		data, err := r.Render(boundDeck(deck))
		require.NoError(t, err)

		zr := openArchive(t, data)
		notes := readPart(t, zr, "ppt/notesSlides/notesSlide1.xml")
		assert.Contains(t, notes, "mention the demo")

		_, err = zr.Open("ppt/notesMasters/notesMaster1.xml")
		assert.NoError(t, err)

		// Only the noted slide links a notesSlide part.
		rels3 := readPart(t, zr, "ppt/slides/_rels/slide3.xml.rels")
		assert.Contains(t, rels3, "notesSlide1.xml")
		rels2 := readPart(t, zr, "ppt/slides/_rels/slide2.xml.rels")
		assert.NotContains(t, rels2, "notesSlide")
	})

	t.Run("deck without notes has no notes parts", func(t *testing.T) {
		r := NewRenderer(testClock())
		data, err := r.Render(boundDeck(builders.NewDeckBuilder().WithBulletSlides(2).Build()))
		require.NoError(t, err)

		zr := openArchive(t, data)
		for _, f := range zr.File {
			assert.NotContains(t, f.Name, "notesSlides")
			assert.NotContains(t, f.Name, "notesMasters")
		}
	})

	t.Run("multi-line notes become separate paragraphs", func(t *testing.T) {
		deck := builders.NewDeckBuilder().
			WithSlide(builders.NewSlideBuilder().WithNotes("first\nsecond").Build()).
			Build()

		r := NewRenderer(testClock())
		data, err := r.Render(boundDeck(deck))
		require.NoError(t, err)

		notes := readPart(t, openArchive(t, data), "ppt/notesSlides/notesSlide1.xml")
		assert.Contains(t, notes, "<a:t>first</a:t>")
		assert.Contains(t, notes, "<a:t>second</a:t>")
	})
}

func TestRendererTheme(t *testing.T) {
	t.Run("uploaded theme replaces the generated one", func(t *testing.T) {
		deck := builders.NewDeckBuilder().Build()
		bound := boundDeck(deck)
		bound.ThemeXML = []byte(`<a:theme marker="carried-over"/>`)

		r := NewRenderer(testClock())
		data, err := r.Render(bound)
		require.NoError(t, err)

		theme := readPart(t, openArchive(t, data), "ppt/theme/theme1.xml")
		assert.Equal(t, `<a:theme marker="carried-over"/>`, theme)
	})

	t.Run("style hints flow into the generated theme", func(t *testing.T) {
		deck := builders.NewDeckBuilder().Build()
		bound := boundDeck(deck)
		bound.Styles = entities.StyleHints{HeadingFont: "Georgia", BodyFont: "Verdana"}

		r := NewRenderer(testClock())
		data, err := r.Render(bound)
		require.NoError(t, err)

		theme := readPart(t, openArchive(t, data), "ppt/theme/theme1.xml")
		assert.Contains(t, theme, "Georgia")
		assert.Contains(t, theme, "Verdana")
	})
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "short", clampRunes("short", 10))
	clamped := clampRunes("abcdefghij", 5)
	assert.Equal(t, "abcd…", clamped)
}
