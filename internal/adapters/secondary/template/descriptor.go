package template

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// maxPartBytes bounds any single part read out of an uploaded container.
const maxPartBytes = 4 << 20

var layoutPartRe = regexp.MustCompile(`^ppt/slideLayouts/slideLayout(\d+)\.xml$`)

// FromUpload derives a descriptor from an uploaded pptx container. Bytes
// that do not open as an OOXML presentation package yield an
// invalid-template failure. Missing layout kinds are not an error; binding
// falls back to a content-capable layout later.
func (s *Source) FromUpload(data []byte) (*entities.TemplateDescriptor, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, entities.NewCompileError(entities.KindInvalidTemplate, "uploaded file is not a zip container", err)
	}

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	if files["[Content_Types].xml"] == nil || files["ppt/presentation.xml"] == nil {
		return nil, entities.NewCompileError(entities.KindInvalidTemplate, "container is missing required presentation parts", nil)
	}

	desc := &entities.TemplateDescriptor{
		Origin: entities.TemplateUploaded,
		Styles: s.Builtin().Styles,
	}

	var layoutNames []string
	for name := range files {
		if layoutPartRe.MatchString(name) {
			layoutNames = append(layoutNames, name)
		}
	}
	sort.Slice(layoutNames, func(i, j int) bool {
		return layoutIndex(layoutNames[i]) < layoutIndex(layoutNames[j])
	})

	for _, name := range layoutNames {
		content, err := readPart(files[name])
		if err != nil {
			return nil, entities.NewCompileError(entities.KindInvalidTemplate, fmt.Sprintf("reading layout part %s", name), err)
		}
		slot, err := parseLayout(content, layoutIndex(name))
		if err != nil {
			return nil, entities.NewCompileError(entities.KindInvalidTemplate, fmt.Sprintf("parsing layout part %s", name), err)
		}
		desc.Layouts = append(desc.Layouts, slot)
	}

	if theme := files["ppt/theme/theme1.xml"]; theme != nil {
		content, err := readPart(theme)
		if err != nil {
			return nil, entities.NewCompileError(entities.KindInvalidTemplate, "reading theme part", err)
		}
		desc.ThemeXML = content
		applyThemeStyles(content, &desc.Styles)
	}

	return desc, nil
}

func layoutIndex(name string) int {
	m := layoutPartRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(io.LimitReader(rc, maxPartBytes))
}

// parseLayout walks one slideLayout part, extracting its declared name and
// whether it offers a body placeholder, then classifies the slide kind the
// layout serves.
func parseLayout(content []byte, index int) (entities.LayoutSlot, error) {
	slot := entities.LayoutSlot{SourceIndex: index}

	dec := xml.NewDecoder(bytes.NewReader(content))
	var layoutType string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return slot, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "sldLayout":
			layoutType = attrValue(start, "type")
		case "cSld":
			if name := attrValue(start, "name"); name != "" {
				slot.Name = name
			}
		case "ph":
			switch attrValue(start, "type") {
			case "body", "":
				// A ph with no type attribute is a content placeholder.
				slot.HasBody = true
			}
		}
	}

	slot.Kind = classifyLayout(slot.Name, layoutType, slot.HasBody)
	return slot, nil
}

func attrValue(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// classifyLayout maps a layout's declared type and display name onto the
// slide kind it best serves. The type attribute is authoritative when
// present; names cover templates that only customize cSld names.
func classifyLayout(name, layoutType string, hasBody bool) entities.SlideKind {
	switch layoutType {
	case "title", "titleOnly":
		return entities.KindTitle
	case "secHead":
		return entities.KindSection
	case "obj", "tx", "twoObj", "objTx", "txAndObj":
		return entities.KindBullets
	}

	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "closing"), strings.Contains(lower, "thank"):
		return entities.KindClosing
	case strings.Contains(lower, "section"):
		return entities.KindSection
	case strings.Contains(lower, "title") && !hasBody:
		return entities.KindTitle
	default:
		return entities.KindBullets
	}
}

// applyThemeStyles pulls typefaces and accent colors out of the theme part.
// Parse failures leave the built-in defaults in place; style hints are best
// effort, never fatal.
func applyThemeStyles(content []byte, styles *entities.StyleHints) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	var accents []string
	var inMajor, inMinor bool
	var accentDepth int
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "majorFont":
				inMajor, inMinor = true, false
			case "minorFont":
				inMajor, inMinor = false, true
			case "latin":
				face := attrValue(el, "typeface")
				if face == "" {
					break
				}
				if inMajor {
					styles.HeadingFont = face
				} else if inMinor {
					styles.BodyFont = face
				}
			case "accent1", "accent2", "accent3", "accent4", "accent5", "accent6":
				accentDepth++
			case "srgbClr":
				if accentDepth > 0 {
					if val := attrValue(el, "val"); len(val) == 6 {
						accents = append(accents, strings.ToUpper(val))
					}
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "majorFont":
				inMajor = false
			case "minorFont":
				inMinor = false
			case "accent1", "accent2", "accent3", "accent4", "accent5", "accent6":
				accentDepth--
			}
		}
	}
	if len(accents) > 0 {
		styles.AccentColors = accents
	}
}
