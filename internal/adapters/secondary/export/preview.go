package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// PreviewRenderer renders a bound deck to a standalone HTML page so users
// can inspect the structure before downloading the pptx. Text content is
// run through a strict sanitizer; outline text should never carry markup,
// but provider output is untrusted.
type PreviewRenderer struct {
	template *template.Template
	policy   *bluemonday.Policy
}

// NewPreviewRenderer creates an HTML preview renderer.
func NewPreviewRenderer() *PreviewRenderer {
	return &PreviewRenderer{
		template: template.Must(template.New("preview").Parse(previewTemplate)),
		policy:   bluemonday.StrictPolicy(),
	}
}

type previewSlide struct {
	Number  int
	Kind    string
	Heading string
	Layout  string
	Bullets []previewBullet
	Notes   string
}

type previewBullet struct {
	Text   string
	Indent int // rendered as margin steps
}

// RenderHTML renders the preview document.
func (r *PreviewRenderer) RenderHTML(bound *entities.BoundDeck) ([]byte, error) {
	if err := bound.Validate(); err != nil {
		return nil, entities.NewCompileError(entities.KindRenderFailure, "bound deck failed preview validation", err)
	}

	data := struct {
		Title  string
		Origin string
		Slides []previewSlide
	}{
		Title:  r.policy.Sanitize(bound.Title),
		Origin: string(bound.Origin),
	}
	for i, s := range bound.Slides {
		slide := previewSlide{
			Number:  i + 1,
			Kind:    string(s.Spec.Kind),
			Heading: r.policy.Sanitize(s.Spec.Heading),
			Layout:  r.policy.Sanitize(s.Slot.Name),
			Notes:   r.policy.Sanitize(s.Spec.Notes),
		}
		for _, b := range s.Spec.Bullets {
			slide.Bullets = append(slide.Bullets, previewBullet{
				Text:   r.policy.Sanitize(b.Text),
				Indent: b.Level * 24,
			})
		}
		data.Slides = append(data.Slides, slide)
	}

	var buf bytes.Buffer
	if err := r.template.Execute(&buf, data); err != nil {
		return nil, entities.NewCompileError(entities.KindRenderFailure, fmt.Sprintf("executing preview template: %v", err), err)
	}
	return buf.Bytes(), nil
}

const previewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}} - Preview</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: -apple-system, 'Segoe UI', sans-serif; background: #1a1a2e; color: #eee; padding: 2rem; }
        h1 { margin-bottom: 0.5rem; }
        .meta { color: #888; margin-bottom: 2rem; }
        .slide { background: #16213e; border-radius: 8px; padding: 1.5rem; margin-bottom: 1rem; max-width: 800px; }
        .slide-header { display: flex; justify-content: space-between; margin-bottom: 0.75rem; }
        .slide-kind { color: #4472c4; font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.05em; }
        .slide-layout { color: #666; font-size: 0.8rem; }
        .slide h2 { font-size: 1.2rem; margin-bottom: 0.5rem; }
        .bullet { padding: 0.15rem 0; }
        .notes { margin-top: 0.75rem; padding: 0.5rem; background: #0f3460; border-radius: 4px; font-size: 0.85rem; color: #bbb; }
        .notes::before { content: "Notes: "; color: #4472c4; }
    </style>
</head>
<body>
    <h1>{{.Title}}</h1>
    <div class="meta">{{len .Slides}} slides &middot; {{.Origin}} template</div>
    {{range .Slides}}
    <div class="slide">
        <div class="slide-header">
            <span class="slide-kind">{{.Number}}. {{.Kind}}</span>
            <span class="slide-layout">{{.Layout}}</span>
        </div>
        <h2>{{.Heading}}</h2>
        {{range .Bullets}}<div class="bullet" style="margin-left: {{.Indent}}px">&bull; {{.Text}}</div>
        {{end}}{{if .Notes}}<div class="notes">{{.Notes}}</div>{{end}}
    </div>
    {{end}}
</body>
</html>
`

// Compile-time check that PreviewRenderer implements ports.PreviewRenderer
var _ ports.PreviewRenderer = (*PreviewRenderer)(nil)
