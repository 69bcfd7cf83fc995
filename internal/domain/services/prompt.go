package services

import (
	"strings"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// GrammarVersion identifies the outline serialization grammar the prompt
// instructs the model to emit. The outline parser targets this grammar
// exactly; bump it in lockstep with parser changes.
const GrammarVersion = "v1"

// grammarInstruction spells out outline grammar v1. The rules mirror what
// the strict parser pass accepts:
//
//	# Title          first line, deck title (title slide)
//	## Heading       starts a slide; with bullets it is a bullets slide,
//	                 without bullets a section slide
//	- text           bullet; nest with 2 leading spaces per level
//	Note: text       speaker notes for the current slide
//	# Closing        optional trailing level-1 heading (closing slide)
const grammarInstruction = `Return ONLY a plain-text outline in exactly this format, with no commentary before or after it:

# Presentation Title
## First Slide Heading
- First bullet point
- Second bullet point
  - Nested detail (indent two spaces per level)
## Next Slide Heading
- Another point

Rules:
- The first line must be a single "# " heading with the presentation title.
- Every slide starts with a "## " heading. Headings must not contain slide numbers.
- Bullets start with "- ". Indent nested bullets by two spaces per level and never skip a level.
- You may end with one final "# " heading as a short closing slide (for example "# Thank You").
- Do not use any other markers, numbering, tables, or code fences.`

const notesInstruction = `- After the bullets of each slide, add one line starting with "Note: " containing detailed speaker notes, talking points, and examples for that slide.`

// PromptBuilder deterministically constructs the instruction prompt handed
// to a provider. Identical inputs always produce an identical prompt.
type PromptBuilder struct {
	maxInputRunes int
}

// NewPromptBuilder creates a prompt builder with the given source-text
// truncation budget (runes). Non-positive budgets fall back to the compiler
// config default.
func NewPromptBuilder(maxInputRunes int) *PromptBuilder {
	if maxInputRunes <= 0 {
		maxInputRunes = entities.CompilerConfig{}.GetMaxInputRunes()
	}
	return &PromptBuilder{maxInputRunes: maxInputRunes}
}

// BuiltPrompt is the result of prompt construction.
type BuiltPrompt struct {
	Text      string
	Truncated bool // Source text exceeded the budget and was cut
}

// Build assembles the prompt from the source text and optional guidance.
// Empty trimmed text fails with a typed empty-input error before any
// network activity can happen.
func (b *PromptBuilder) Build(rawText, guidance string, includeNotes bool) (*BuiltPrompt, error) {
	text := strings.TrimSpace(rawText)
	if text == "" {
		return nil, entities.NewCompileError(entities.KindEmptyInput, "source text is empty", nil)
	}

	text, truncated := truncateRunes(text, b.maxInputRunes)

	var sb strings.Builder
	sb.WriteString("Convert the following text into a slide presentation outline (outline grammar ")
	sb.WriteString(GrammarVersion)
	sb.WriteString(").\n\n")

	sb.WriteString("Guidelines: ")
	if g := strings.TrimSpace(guidance); g != "" {
		sb.WriteString(g)
	} else {
		sb.WriteString("Create a professional presentation with a clear structure.")
	}
	sb.WriteString("\n\n")

	sb.WriteString(grammarInstruction)
	if includeNotes {
		sb.WriteString("\n")
		sb.WriteString(notesInstruction)
	}

	sb.WriteString("\n\nText to convert:\n")
	sb.WriteString(text)
	if truncated {
		sb.WriteString("\n[source text truncated]")
	}
	sb.WriteString("\n")

	return &BuiltPrompt{Text: sb.String(), Truncated: truncated}, nil
}

// truncateRunes cuts s to at most max runes, at the last space within the
// final 200 runes when one exists so the cut lands on a word boundary.
func truncateRunes(s string, max int) (string, bool) {
	runes := []rune(s)
	if len(runes) <= max {
		return s, false
	}

	cut := max
	lowest := max - 200
	if lowest < 0 {
		lowest = 0
	}
	for i := max; i > lowest; i-- {
		if runes[i-1] == ' ' || runes[i-1] == '\n' {
			cut = i - 1
			break
		}
	}

	return strings.TrimRight(string(runes[:cut]), " \n"), true
}
