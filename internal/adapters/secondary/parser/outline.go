package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// diagnosticLimit bounds the raw-output snippet attached to unparsable
// failures.
const diagnosticLimit = 400

// OutlineParser implements ports.OutlineParser against outline grammar v1.
// A strict pass parses the raw output exactly; on failure a bounded repair
// pass normalizes the text and the strict pass runs again.
type OutlineParser struct {
	md goldmark.Markdown
}

// NewOutlineParser creates a goldmark-backed outline parser.
func NewOutlineParser() *OutlineParser {
	// No extensions: grammar v1 is a strict subset of plain markdown and
	// anything beyond it should fail the strict pass, not be absorbed.
	return &OutlineParser{md: goldmark.New()}
}

// Parse turns raw model output into a validated deck.
func (p *OutlineParser) Parse(raw string) (*ports.ParseResult, error) {
	deck, err := p.strictParse(raw)
	if err == nil {
		return &ports.ParseResult{Deck: deck, Pass: entities.ParsePassStrict}, nil
	}

	repaired, heuristics := repair(raw)
	if len(heuristics) == 0 {
		// Nothing to normalize: the strict failure stands.
		return nil, unparsable(raw, err)
	}

	deck, repairErr := p.strictParse(repaired)
	if repairErr != nil {
		// Last resort: drop every non-structural line and try once more.
		pruned, changed := dropProse(repaired)
		if changed {
			heuristics = append(heuristics, heuristicDropProse)
			if deck, repairErr = p.strictParse(pruned); repairErr == nil {
				return &ports.ParseResult{Deck: deck, Pass: entities.ParsePassRepair, Heuristics: heuristics}, nil
			}
		}
		return nil, unparsable(raw, repairErr)
	}

	return &ports.ParseResult{Deck: deck, Pass: entities.ParsePassRepair, Heuristics: heuristics}, nil
}

// strictParse parses source against grammar v1 exactly and validates the
// resulting deck. Any block outside the grammar fails the pass.
func (p *OutlineParser) strictParse(source string) (*entities.Deck, error) {
	src := []byte(source)
	root := p.md.Parser().Parse(text.NewReader(src))

	deck := &entities.Deck{}
	var current *entities.SlideSpec
	sawClosing := false

	flush := func() {
		if current != nil {
			if current.Kind == "" {
				if len(current.Bullets) > 0 {
					current.Kind = entities.KindBullets
				} else {
					current.Kind = entities.KindSection
				}
			}
			deck.Slides = append(deck.Slides, *current)
			current = nil
		}
	}

	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		if sawClosing {
			return nil, fmt.Errorf("content after closing slide")
		}

		switch n := node.(type) {
		case *ast.Heading:
			switch n.Level {
			case 1:
				heading := clampHeading(nodeText(n, src))
				if heading == "" {
					return nil, fmt.Errorf("empty level-1 heading")
				}
				if deck.Title == "" && len(deck.Slides) == 0 && current == nil {
					deck.Title = heading
					current = &entities.SlideSpec{Kind: entities.KindTitle, Heading: heading}
				} else {
					flush()
					deck.Slides = append(deck.Slides, entities.SlideSpec{Kind: entities.KindClosing, Heading: heading})
					sawClosing = true
				}
			case 2:
				if deck.Title == "" {
					return nil, fmt.Errorf("slide heading before deck title")
				}
				flush()
				heading := clampHeading(nodeText(n, src))
				if heading == "" {
					return nil, fmt.Errorf("empty slide heading")
				}
				current = &entities.SlideSpec{Heading: heading}
			default:
				return nil, fmt.Errorf("unexpected heading level %d", n.Level)
			}

		case *ast.List:
			if current == nil {
				return nil, fmt.Errorf("bullet list outside a slide")
			}
			if n.IsOrdered() {
				return nil, fmt.Errorf("ordered list is not part of the grammar")
			}
			if n.Marker != '-' {
				return nil, fmt.Errorf("list marker %q is not part of the grammar", n.Marker)
			}
			if err := collectBullets(current, n, src, 0); err != nil {
				return nil, err
			}

		case *ast.Paragraph:
			line := strings.TrimSpace(string(nodeText(n, src)))
			if !strings.HasPrefix(line, "Note:") {
				return nil, fmt.Errorf("unexpected prose: %q", firstLine(line))
			}
			if current == nil {
				return nil, fmt.Errorf("speaker note outside a slide")
			}
			note := strings.TrimSpace(strings.TrimPrefix(line, "Note:"))
			if current.Notes == "" {
				current.Notes = note
			} else {
				current.Notes += "\n" + note
			}

		default:
			return nil, fmt.Errorf("unexpected block %s", node.Kind())
		}
	}
	flush()

	if err := deck.Validate(); err != nil {
		return nil, err
	}
	return deck, nil
}

// collectBullets flattens a (possibly nested) list into BulletSpecs. Nesting
// in markdown can only descend one level at a time, so the depth invariant
// holds structurally.
func collectBullets(slide *entities.SlideSpec, list *ast.List, src []byte, level int) error {
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		li, ok := item.(*ast.ListItem)
		if !ok {
			return fmt.Errorf("unexpected list child %s", item.Kind())
		}
		for child := li.FirstChild(); child != nil; child = child.NextSibling() {
			switch c := child.(type) {
			case *ast.TextBlock, *ast.Paragraph:
				// Lazy continuation lines land inside the item's text
				// block, so a "Note:" line glued under a bullet shows up
				// here rather than as its own paragraph.
				bulletText, notes := splitItemText(string(nodeText(c, src)))
				if bulletText == "" {
					return fmt.Errorf("empty bullet")
				}
				slide.Bullets = append(slide.Bullets, entities.BulletSpec{Text: bulletText, Level: level})
				for _, note := range notes {
					if slide.Notes == "" {
						slide.Notes = note
					} else {
						slide.Notes += "\n" + note
					}
				}
			case *ast.List:
				if c.IsOrdered() {
					return fmt.Errorf("ordered list is not part of the grammar")
				}
				if c.Marker != '-' {
					return fmt.Errorf("list marker %q is not part of the grammar", c.Marker)
				}
				if err := collectBullets(slide, c, src, level+1); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unexpected bullet content %s", child.Kind())
			}
		}
	}
	return nil
}

// splitItemText separates a list item's own text from any "Note:" lines
// glued underneath it as lazy continuations.
func splitItemText(raw string) (string, []string) {
	var textLines, notes []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Note:") {
			notes = append(notes, strings.TrimSpace(strings.TrimPrefix(line, "Note:")))
			continue
		}
		textLines = append(textLines, line)
	}
	return strings.Join(textLines, " "), notes
}

// nodeText extracts the plain text of a node's inline children.
func nodeText(node ast.Node, src []byte) []byte {
	var sb strings.Builder
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			sb.Write(c.Segment.Value(src))
			if c.SoftLineBreak() || c.HardLineBreak() {
				sb.WriteByte('\n')
			}
		case *ast.String:
			sb.Write(c.Value)
		default:
			sb.Write(nodeText(child, src))
		}
	}
	return []byte(sb.String())
}

// clampHeading trims a heading and caps it at the entity limit.
func clampHeading(b []byte) string {
	heading := strings.TrimSpace(string(b))
	runes := []rune(heading)
	if len(runes) > entities.MaxHeadingLength {
		heading = strings.TrimSpace(string(runes[:entities.MaxHeadingLength-1])) + "…"
	}
	return heading
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if utf8.RuneCountInString(s) > 80 {
		s = string([]rune(s)[:80])
	}
	return s
}

// unparsable builds the typed content failure with a truncated raw snippet
// so callers can see what the model actually produced.
func unparsable(raw string, cause error) error {
	snippet := strings.TrimSpace(raw)
	if utf8.RuneCountInString(snippet) > diagnosticLimit {
		snippet = string([]rune(snippet)[:diagnosticLimit]) + "…"
	}
	return entities.NewCompileError(entities.KindUnparsableResponse, "model output does not form a usable outline", cause).
		WithDiagnostic(snippet)
}

// Compile-time check that OutlineParser implements ports.OutlineParser
var _ ports.OutlineParser = (*OutlineParser)(nil)
