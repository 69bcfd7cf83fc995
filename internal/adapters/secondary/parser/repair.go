package parser

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Repair heuristic names, recorded in the compilation report so repair is
// never silent. The set is deliberately bounded: each heuristic is a named,
// independently testable text normalization, applied in a fixed order.
const (
	heuristicStripFences      = "strip-fences"
	heuristicPromoteBold      = "promote-bold-headings"
	heuristicNormalizeBullets = "normalize-bullets"
	heuristicStripDividers    = "strip-dividers"
	heuristicStripPreamble    = "strip-preamble"
	heuristicClampDepth       = "clamp-depth"
	heuristicSynthesizeTitle  = "synthesize-title"
	heuristicDropProse        = "drop-prose"
)

type heuristic struct {
	name  string
	apply func(lines []string) ([]string, bool)
}

var heuristics = []heuristic{
	{heuristicStripFences, stripFences},
	{heuristicPromoteBold, promoteBoldHeadings},
	{heuristicNormalizeBullets, normalizeBullets},
	{heuristicStripDividers, stripDividers},
	{heuristicStripPreamble, stripPreamble},
	{heuristicClampDepth, clampDepth},
	{heuristicSynthesizeTitle, synthesizeTitle},
}

// repair normalizes near-miss output towards grammar v1 and reports which
// heuristics changed anything.
func repair(raw string) (string, []string) {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var fired []string
	for _, h := range heuristics {
		var changed bool
		if lines, changed = h.apply(lines); changed {
			fired = append(fired, h.name)
		}
	}

	return strings.Join(lines, "\n"), fired
}

var (
	fenceRe      = regexp.MustCompile("^\\s*```")
	boldLineRe   = regexp.MustCompile(`^\s*(?:\*\*|__)(.+?)(?:\*\*|__):?\s*$`)
	bulletRe     = regexp.MustCompile(`^(\s*)(?:[-*+•–—]|\d+[.)])\s+(\S.*)$`)
	dividerRe    = regexp.MustCompile(`^\s*[-*_]{3,}\s*$`)
	structuralRe = regexp.MustCompile(`^\s*(#{1,2}\s+\S|- \S|Note:\s*\S)`)
)

// stripFences removes markdown code-fence lines; models like wrapping the
// outline in a ``` block despite instructions.
func stripFences(lines []string) ([]string, bool) {
	return dropMatching(lines, func(line string) bool {
		return fenceRe.MatchString(line)
	})
}

// promoteBoldHeadings turns lines that are nothing but bold text into slide
// headings ("**Overview**" becomes "## Overview").
func promoteBoldHeadings(lines []string) ([]string, bool) {
	changed := false
	out := make([]string, len(lines))
	for i, line := range lines {
		if m := boldLineRe.FindStringSubmatch(line); m != nil {
			out[i] = "## " + strings.TrimSpace(m[1])
			changed = true
			continue
		}
		out[i] = line
	}
	return out, changed
}

// normalizeBullets collapses the marker zoo (*, +, •, dashes, numbering) to
// the canonical "- ", preserving indentation.
func normalizeBullets(lines []string) ([]string, bool) {
	changed := false
	out := make([]string, len(lines))
	for i, line := range lines {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			normalized := m[1] + "- " + m[2]
			if normalized != line {
				changed = true
			}
			out[i] = normalized
			continue
		}
		out[i] = line
	}
	return out, changed
}

// stripDividers removes horizontal-rule lines; models trained on slide
// markdown often separate slides with "---".
func stripDividers(lines []string) ([]string, bool) {
	return dropMatching(lines, func(line string) bool {
		return dividerRe.MatchString(line)
	})
}

// stripPreamble removes conversational text before the first structural
// line and after the last one ("Sure! Here's your outline:").
func stripPreamble(lines []string) ([]string, bool) {
	first, last := -1, -1
	for i, line := range lines {
		if structuralRe.MatchString(line) {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return lines, false
	}

	changed := false
	out := make([]string, 0, last-first+1)
	for i, line := range lines {
		if i < first || i > last {
			if strings.TrimSpace(line) != "" {
				changed = true
			}
			continue
		}
		out = append(out, line)
	}
	return out, changed
}

// clampDepth rewrites bullet indentation to exact two-space levels and
// clamps any depth jump greater than one below the preceding bullet.
func clampDepth(lines []string) ([]string, bool) {
	changed := false
	out := make([]string, len(lines))
	prevLevel := -1
	for i, line := range lines {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			if strings.TrimSpace(line) != "" && !strings.HasPrefix(strings.TrimLeft(line, " \t"), "- ") {
				prevLevel = -1
			}
			out[i] = line
			continue
		}

		indent := strings.ReplaceAll(m[1], "\t", "  ")
		level := len(indent) / 2
		if level > prevLevel+1 {
			level = prevLevel + 1
		}
		prevLevel = level

		normalized := strings.Repeat("  ", level) + "- " + m[2]
		if normalized != line {
			changed = true
		}
		out[i] = normalized
	}
	return out, changed
}

// synthesizeTitle inserts a deck title when the output has slide headings
// but no level-1 heading, deriving it from the first heading found.
func synthesizeTitle(lines []string) ([]string, bool) {
	var firstSlideHeading string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return lines, false // A title already exists
		}
		if firstSlideHeading == "" && strings.HasPrefix(trimmed, "## ") {
			firstSlideHeading = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
		}
	}
	if firstSlideHeading == "" {
		return lines, false
	}

	title := cases.Title(language.English).String(firstSlideHeading)
	return append([]string{"# " + title, ""}, lines...), true
}

// dropProse is the last-resort heuristic: keep only structural lines.
func dropProse(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	changed := false
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" || structuralRe.MatchString(line) {
			out = append(out, line)
			continue
		}
		changed = true
	}
	return strings.Join(out, "\n"), changed
}

func dropMatching(lines []string, match func(string) bool) ([]string, bool) {
	changed := false
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if match(line) {
			changed = true
			continue
		}
		out = append(out, line)
	}
	return out, changed
}
