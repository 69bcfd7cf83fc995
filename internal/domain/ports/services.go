package ports

import (
	"context"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// CompileRequest is the logical request the compiler consumes from its
// caller. The transport layer has already checked presence of Text and
// Provider; everything else is the compiler's job.
type CompileRequest struct {
	Text         string
	Provider     entities.Provider
	Credential   string
	Guidance     string
	Template     []byte // Optional uploaded template container
	IncludeNotes bool   // Ask the model for speaker notes
}

// CompileResult is the successful outcome of one compile: the rendered
// document plus the observability report.
type CompileResult struct {
	Document []byte
	Filename string
	Report   entities.CompilationReport
}

// CompilerService orchestrates the full content-to-deck pipeline. It owns
// the request lifecycle end to end, including retry policy and credential
// scoping.
type CompilerService interface {
	Compile(ctx context.Context, req CompileRequest) (*CompileResult, error)

	// Preview runs the pipeline up to binding and renders an HTML preview
	// instead of document bytes.
	Preview(ctx context.Context, req CompileRequest) ([]byte, *entities.CompilationReport, error)

	// InspectTemplate analyzes uploaded template bytes without invoking
	// any provider.
	InspectTemplate(data []byte) (*entities.TemplateDescriptor, error)
}
