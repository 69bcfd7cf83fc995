package pptx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// fixedZipTime is the timestamp stamped on every package member so
// rendering the same bound deck twice yields byte-identical archives. The
// only content excluded from that guarantee is the title-slide subtitle
// date, which comes from the clock.
var fixedZipTime = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Renderer materializes a bound deck into a pptx package.
type Renderer struct {
	clock ports.TimeProvider
}

// NewRenderer creates a pptx renderer.
func NewRenderer(clock ports.TimeProvider) *Renderer {
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	return &Renderer{clock: clock}
}

// Render writes the full package. It either succeeds completely or returns
// nothing: the archive is assembled in memory and only returned once every
// part has been written.
func (r *Renderer) Render(bound *entities.BoundDeck) ([]byte, error) {
	if err := bound.Validate(); err != nil {
		return nil, entities.NewCompileError(entities.KindRenderFailure, "bound deck failed render-time validation", err)
	}

	var notedSlides []int
	for i := range bound.Slides {
		if bound.Slides[i].Spec.HasNotes() {
			notedSlides = append(notedSlides, i+1)
		}
	}
	hasNotes := len(notedSlides) > 0
	slideCount := len(bound.Slides)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	write := func(name, content string) error {
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: fixedZipTime,
		})
		if err != nil {
			return entities.NewCompileError(entities.KindRenderFailure, fmt.Sprintf("creating package member %s", name), err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return entities.NewCompileError(entities.KindRenderFailure, fmt.Sprintf("writing package member %s", name), err)
		}
		return nil
	}

	theme := themeXML(bound.Styles)
	if len(bound.ThemeXML) > 0 {
		theme = string(bound.ThemeXML)
	}

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(slideCount, notedSlides)},
		{"_rels/.rels", relsRoot},
		{"ppt/presentation.xml", presentationXML(slideCount, hasNotes)},
		{"ppt/_rels/presentation.xml.rels", presentationRelsXML(slideCount, hasNotes)},
		{"ppt/slideMasters/slideMaster1.xml", slideMasterXML()},
		{"ppt/slideMasters/_rels/slideMaster1.xml.rels", slideMasterRelsXML()},
		{"ppt/theme/theme1.xml", theme},
	}
	for i := range layoutDefs {
		parts = append(parts,
			struct{ name, content string }{fmt.Sprintf("ppt/slideLayouts/slideLayout%d.xml", i+1), slideLayoutXML(i + 1)},
			struct{ name, content string }{fmt.Sprintf("ppt/slideLayouts/_rels/slideLayout%d.xml.rels", i+1), slideLayoutRelsXML},
		)
	}

	noteIndex := 0
	for i := range bound.Slides {
		slide := &bound.Slides[i]
		num := i + 1
		noteRef := 0
		if slide.Spec.HasNotes() {
			noteIndex++
			noteRef = noteIndex
		}
		parts = append(parts,
			struct{ name, content string }{fmt.Sprintf("ppt/slides/slide%d.xml", num), r.slideXML(slide, bound)},
			struct{ name, content string }{fmt.Sprintf("ppt/slides/_rels/slide%d.xml.rels", num), slideRelsXML(slide, noteRef)},
		)
		if noteRef > 0 {
			parts = append(parts,
				struct{ name, content string }{fmt.Sprintf("ppt/notesSlides/notesSlide%d.xml", noteRef), notesSlideXML(slide.Spec.Notes)},
				struct{ name, content string }{fmt.Sprintf("ppt/notesSlides/_rels/notesSlide%d.xml.rels", noteRef), notesSlideRelsXML(num)},
			)
		}
	}
	if hasNotes {
		parts = append(parts,
			struct{ name, content string }{"ppt/notesMasters/notesMaster1.xml", notesMasterXML},
			struct{ name, content string }{"ppt/notesMasters/_rels/notesMaster1.xml.rels", notesMasterRelsXML},
		)
	}

	for _, part := range parts {
		if err := write(part.name, part.content); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, entities.NewCompileError(entities.KindRenderFailure, "finalizing package", err)
	}
	return buf.Bytes(), nil
}

// slideXML renders one slide part: a title placeholder, a subtitle on the
// title slide, and a body placeholder carrying the bullets at their
// nesting levels.
func (r *Renderer) slideXML(slide *entities.BoundSlide, bound *entities.BoundDeck) string {
	styles := bound.Styles
	headingSize := styles.HeadingSizePt
	if headingSize <= 0 {
		headingSize = 36
	}
	bodySize := styles.BodySizePt
	if bodySize <= 0 {
		bodySize = 18
	}

	titlePh := `type="title"`
	if slide.Spec.Kind == entities.KindTitle {
		titlePh = `type="ctrTitle"`
		headingSize = 44
	}

	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<p:sld ` + nsDecls + `>`)
	sb.WriteString(`<p:cSld><p:spTree>`)
	sb.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)

	// Title placeholder
	fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="2" name="Title 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph %s/></p:nvPr></p:nvSpPr><p:spPr><a:xfrm><a:off x="838200" y="365125"/><a:ext cx="10515600" cy="1325563"/></a:xfrm></p:spPr><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:pPr/><a:r><a:rPr lang="en-US" sz="%d00" b="1"/><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`,
		titlePh, headingSize, escapeXML(clampRunes(slide.Spec.Heading, entities.MaxHeadingLength)))

	switch {
	case slide.Spec.Kind == entities.KindTitle:
		// Subtitle carries the generation date, the documented exception
		// to byte determinism.
		subtitle := "Generated on " + r.clock.Now().Format("January 2, 2006")
		fmt.Fprintf(&sb, `<p:sp><p:nvSpPr><p:cNvPr id="3" name="Subtitle 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="subTitle" idx="1"/></p:nvPr></p:nvSpPr><p:spPr><a:xfrm><a:off x="838200" y="1825625"/><a:ext cx="10515600" cy="1002092"/></a:xfrm></p:spPr><p:txBody><a:bodyPr/><a:lstStyle/><a:p><a:r><a:rPr lang="en-US" sz="2000"/><a:t>%s</a:t></a:r></a:p></p:txBody></p:sp>`,
			escapeXML(subtitle))
	case len(slide.Spec.Bullets) > 0:
		sb.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="3" name="Content Placeholder 2"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph idx="1"/></p:nvPr></p:nvSpPr><p:spPr><a:xfrm><a:off x="838200" y="1825625"/><a:ext cx="10515600" cy="4351338"/></a:xfrm></p:spPr><p:txBody><a:bodyPr/><a:lstStyle/>`)
		for _, bullet := range slide.Spec.Bullets {
			fmt.Fprintf(&sb, `<a:p><a:pPr lvl="%d"/><a:r><a:rPr lang="en-US" sz="%d00"/><a:t>%s</a:t></a:r></a:p>`,
				bullet.Level, bodySize, escapeXML(bullet.Text))
		}
		sb.WriteString(`</p:txBody></p:sp>`)
	}

	sb.WriteString(`</p:spTree></p:cSld>`)
	sb.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	sb.WriteString(`</p:sld>`)
	return sb.String()
}

func slideRelsXML(slide *entities.BoundSlide, noteRef int) string {
	layout := layoutIndexFor(slide.Spec.Kind)
	if slide.Fallback {
		layout = layoutIndexFor(entities.KindBullets)
	}

	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	fmt.Fprintf(&sb, `<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slideLayout" Target="../slideLayouts/slideLayout%d.xml"/>`, layout)
	if noteRef > 0 {
		fmt.Fprintf(&sb, `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesSlide" Target="../notesSlides/notesSlide%d.xml"/>`, noteRef)
	}
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

// notesSlideXML writes the presenter-notes part for one slide.
func notesSlideXML(notes string) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<p:notes ` + nsDecls + `>`)
	sb.WriteString(`<p:cSld><p:spTree>`)
	sb.WriteString(`<p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr><p:grpSpPr/>`)
	sb.WriteString(`<p:sp><p:nvSpPr><p:cNvPr id="2" name="Notes Placeholder 1"/><p:cNvSpPr><a:spLocks noGrp="1"/></p:cNvSpPr><p:nvPr><p:ph type="body" idx="1"/></p:nvPr></p:nvSpPr><p:spPr/><p:txBody><a:bodyPr/><a:lstStyle/>`)
	for _, line := range strings.Split(notes, "\n") {
		fmt.Fprintf(&sb, `<a:p><a:r><a:rPr lang="en-US"/><a:t>%s</a:t></a:r></a:p>`, escapeXML(line))
	}
	sb.WriteString(`</p:txBody></p:sp>`)
	sb.WriteString(`</p:spTree></p:cSld>`)
	sb.WriteString(`<p:clrMapOvr><a:masterClrMapping/></p:clrMapOvr>`)
	sb.WriteString(`</p:notes>`)
	return sb.String()
}

func notesSlideRelsXML(slideNum int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	sb.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/notesMaster" Target="../notesMasters/notesMaster1.xml"/>`)
	fmt.Fprintf(&sb, `<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="../slides/slide%d.xml"/>`, slideNum)
	sb.WriteString(`</Relationships>`)
	return sb.String()
}

// escapeXML escapes text for embedding in an XML element.
func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// clampRunes caps s at max runes, appending an ellipsis when cut.
func clampRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max-1])) + "…"
}

// Compile-time check that Renderer implements ports.DeckRenderer
var _ ports.DeckRenderer = (*Renderer)(nil)
