package entities

import "time"

// ParsePass records which parser pass produced the deck.
type ParsePass string

const (
	ParsePassStrict ParsePass = "strict"
	ParsePassRepair ParsePass = "repair"
)

// CompilationReport is the observability record returned alongside the
// rendered document. It captures everything the caller needs to know about
// degradations that occurred on the way: repair heuristics, layout
// fallbacks, retry attempts. The credential never appears here.
type CompilationReport struct {
	ID               string         `json:"id"`
	Provider         Provider       `json:"provider"`
	Model            string         `json:"model"`
	Attempts         int            `json:"attempts"`
	ParsePass        ParsePass      `json:"parse_pass"`
	RepairHeuristics []string       `json:"repair_heuristics,omitempty"`
	InputTruncated   bool           `json:"input_truncated"`
	TemplateOrigin   TemplateOrigin `json:"template_origin"`
	LayoutFallbacks  []string       `json:"layout_fallbacks,omitempty"`
	SlideCount       int            `json:"slide_count"`
	Elapsed          time.Duration  `json:"elapsed_ms"`
}

// Repaired reports whether the response needed the repair pass.
func (r *CompilationReport) Repaired() bool {
	return r.ParsePass == ParsePassRepair
}

// Degraded reports whether any best-effort behavior occurred during the
// compile (repair or layout fallback).
func (r *CompilationReport) Degraded() bool {
	return r.Repaired() || len(r.LayoutFallbacks) > 0
}
