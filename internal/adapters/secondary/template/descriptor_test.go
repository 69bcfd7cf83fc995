package template

import (
	"archive/zip"
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

const minimalTheme = `<?xml version="1.0"?>
<a:theme xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">
  <a:themeElements>
    <a:clrScheme name="Office">
      <a:accent1><a:srgbClr val="1a2b3c"/></a:accent1>
      <a:accent2><a:srgbClr val="4d5e6f"/></a:accent2>
    </a:clrScheme>
    <a:fontScheme name="Office">
      <a:majorFont><a:latin typeface="Georgia"/></a:majorFont>
      <a:minorFont><a:latin typeface="Verdana"/></a:minorFont>
    </a:fontScheme>
  </a:themeElements>
</a:theme>`

func layoutPart(layoutType, name string, phTypes ...string) string {
	phs := ""
	for _, t := range phTypes {
		if t == "" {
			phs += `<p:ph/>`
		} else {
			phs += fmt.Sprintf(`<p:ph type=%q/>`, t)
		}
	}
	typeAttr := ""
	if layoutType != "" {
		typeAttr = fmt.Sprintf(` type=%q`, layoutType)
	}
	return fmt.Sprintf(`<?xml version="1.0"?>
<p:sldLayout xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"%s>
  <p:cSld name=%q><p:spTree>%s</p:spTree></p:cSld>
</p:sldLayout>`, typeAttr, name, phs)
}

// buildContainer assembles an in-memory pptx-shaped zip from part name to
// content.
func buildContainer(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func basicParts() map[string]string {
	return map[string]string{
		"[Content_Types].xml":  `<?xml version="1.0"?><Types/>`,
		"ppt/presentation.xml": `<?xml version="1.0"?><p:presentation/>`,
	}
}

func TestSourceBuiltin(t *testing.T) {
	desc := NewSource().Builtin()
	require.NoError(t, desc.Validate())
	assert.Equal(t, entities.TemplateBuiltin, desc.Origin)
	require.Len(t, desc.Layouts, 4)

	kinds := map[entities.SlideKind]bool{}
	for _, slot := range desc.Layouts {
		kinds[slot.Kind] = true
	}
	for _, kind := range []entities.SlideKind{
		entities.KindTitle, entities.KindSection, entities.KindBullets, entities.KindClosing,
	} {
		assert.True(t, kinds[kind], "missing layout for %s", kind)
	}
	assert.NotEmpty(t, desc.Styles.HeadingFont)
	assert.Len(t, desc.Styles.AccentColors, 6)
}

func TestSourceFromUpload(t *testing.T) {
	source := NewSource()

	t.Run("not a zip container", func(t *testing.T) {
		_, err := source.FromUpload([]byte("this is plain text, not a zip"))
		require.Error(t, err)
		assert.True(t, entities.IsKind(err, entities.KindInvalidTemplate))
		assert.Contains(t, err.Error(), "not a zip container")
	})

	t.Run("zip without presentation parts", func(t *testing.T) {
		data := buildContainer(t, map[string]string{"readme.txt": "hello"})
		_, err := source.FromUpload(data)
		require.Error(t, err)
		assert.True(t, entities.IsKind(err, entities.KindInvalidTemplate))
	})

	t.Run("layouts classified by type attribute", func(t *testing.T) {
		parts := basicParts()
		parts["ppt/slideLayouts/slideLayout1.xml"] = layoutPart("title", "Title Slide", "ctrTitle", "subTitle")
		parts["ppt/slideLayouts/slideLayout2.xml"] = layoutPart("secHead", "Section Header", "title")
		parts["ppt/slideLayouts/slideLayout3.xml"] = layoutPart("obj", "Title and Content", "title", "body")

		desc, err := source.FromUpload(buildContainer(t, parts))
		require.NoError(t, err)
		assert.Equal(t, entities.TemplateUploaded, desc.Origin)
		require.Len(t, desc.Layouts, 3)

		assert.Equal(t, entities.KindTitle, desc.Layouts[0].Kind)
		assert.Equal(t, entities.KindSection, desc.Layouts[1].Kind)
		assert.Equal(t, entities.KindBullets, desc.Layouts[2].Kind)
		assert.True(t, desc.Layouts[2].HasBody)
		assert.Equal(t, "Title and Content", desc.Layouts[2].Name)
	})

	t.Run("layouts classified by name when type is custom", func(t *testing.T) {
		parts := basicParts()
		parts["ppt/slideLayouts/slideLayout1.xml"] = layoutPart("cust", "Thank You Slide")
		parts["ppt/slideLayouts/slideLayout2.xml"] = layoutPart("cust", "Section Divider")
		parts["ppt/slideLayouts/slideLayout3.xml"] = layoutPart("cust", "Big Title")
		parts["ppt/slideLayouts/slideLayout4.xml"] = layoutPart("cust", "Whatever", "body")

		desc, err := source.FromUpload(buildContainer(t, parts))
		require.NoError(t, err)
		require.Len(t, desc.Layouts, 4)
		assert.Equal(t, entities.KindClosing, desc.Layouts[0].Kind)
		assert.Equal(t, entities.KindSection, desc.Layouts[1].Kind)
		assert.Equal(t, entities.KindTitle, desc.Layouts[2].Kind)
		assert.Equal(t, entities.KindBullets, desc.Layouts[3].Kind)
	})

	t.Run("layouts sorted by part index", func(t *testing.T) {
		parts := basicParts()
		parts["ppt/slideLayouts/slideLayout10.xml"] = layoutPart("obj", "Tenth", "body")
		parts["ppt/slideLayouts/slideLayout2.xml"] = layoutPart("title", "Second")

		desc, err := source.FromUpload(buildContainer(t, parts))
		require.NoError(t, err)
		require.Len(t, desc.Layouts, 2)
		assert.Equal(t, 2, desc.Layouts[0].SourceIndex)
		assert.Equal(t, 10, desc.Layouts[1].SourceIndex)
	})

	t.Run("untyped placeholder counts as a body", func(t *testing.T) {
		parts := basicParts()
		parts["ppt/slideLayouts/slideLayout1.xml"] = layoutPart("cust", "Content Heavy", "")

		desc, err := source.FromUpload(buildContainer(t, parts))
		require.NoError(t, err)
		assert.True(t, desc.Layouts[0].HasBody)
	})

	t.Run("theme fonts and accents extracted", func(t *testing.T) {
		parts := basicParts()
		parts["ppt/slideLayouts/slideLayout1.xml"] = layoutPart("obj", "Content", "body")
		parts["ppt/theme/theme1.xml"] = minimalTheme

		desc, err := source.FromUpload(buildContainer(t, parts))
		require.NoError(t, err)
		assert.Equal(t, "Georgia", desc.Styles.HeadingFont)
		assert.Equal(t, "Verdana", desc.Styles.BodyFont)
		assert.Equal(t, []string{"1A2B3C", "4D5E6F"}, desc.Styles.AccentColors)
		assert.Equal(t, []byte(minimalTheme), desc.ThemeXML)
	})

	t.Run("broken theme keeps builtin styles", func(t *testing.T) {
		parts := basicParts()
		parts["ppt/slideLayouts/slideLayout1.xml"] = layoutPart("obj", "Content", "body")
		parts["ppt/theme/theme1.xml"] = "<a:theme truncated"

		desc, err := source.FromUpload(buildContainer(t, parts))
		require.NoError(t, err)
		builtin := source.Builtin()
		assert.Equal(t, builtin.Styles.HeadingFont, desc.Styles.HeadingFont)
		assert.Equal(t, builtin.Styles.BodyFont, desc.Styles.BodyFont)
	})

	t.Run("container without layouts fails descriptor validation", func(t *testing.T) {
		desc, err := source.FromUpload(buildContainer(t, basicParts()))
		require.NoError(t, err)
		assert.Error(t, desc.Validate())
	})
}
