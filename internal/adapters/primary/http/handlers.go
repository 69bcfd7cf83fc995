package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// maxRequestBytes bounds the request body: source text plus an optional
// uploaded template container.
const maxRequestBytes = 20 << 20

var validate = validator.New()

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// GenerateRequest is the wire shape of a generation request. The api_key
// field is moved into a scoped credential immediately after decoding and
// never serialized back.
type GenerateRequest struct {
	Text         string `json:"text" validate:"required"`
	Provider     string `json:"provider" validate:"required,oneof=openai anthropic groq"`
	APIKey       string `json:"api_key" validate:"required"`
	Guidance     string `json:"guidance" validate:"omitempty,max=500"`
	IncludeNotes bool   `json:"include_notes"`
}

// ProviderResponse is one entry of the providers listing.
type ProviderResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	DefaultModel string `json:"default_model"`
}

// TemplateInspectResponse summarizes an uploaded template.
type TemplateInspectResponse struct {
	Origin  string                   `json:"origin"`
	Layouts []TemplateLayoutResponse `json:"layouts"`
	Styles  TemplateStylesResponse   `json:"styles"`
}

// TemplateLayoutResponse is one layout slot of an inspected template.
type TemplateLayoutResponse struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	HasBody bool   `json:"has_body"`
}

// TemplateStylesResponse carries the template's typography and palette.
type TemplateStylesResponse struct {
	HeadingFont  string   `json:"heading_font"`
	BodyFont     string   `json:"body_font"`
	AccentColors []string `json:"accent_colors"`
}

// handleGenerate compiles source text into a pptx document.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	compileReq, ok := s.decodeGenerateRequest(w, r)
	if !ok {
		return
	}

	result, err := s.compiler.Compile(r.Context(), *compileReq)
	if err != nil {
		s.handleCompileError(w, err)
		return
	}

	writeReportHeaders(w, &result.Report)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Document)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Document); err != nil {
		s.logger.Error("Failed to write document response: %v", err)
	}
}

// handlePreview runs the pipeline but returns an HTML rendering of the deck
// structure instead of document bytes.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	compileReq, ok := s.decodeGenerateRequest(w, r)
	if !ok {
		return
	}

	html, report, err := s.compiler.Preview(r.Context(), *compileReq)
	if err != nil {
		s.handleCompileError(w, err)
		return
	}

	writeReportHeaders(w, report)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		s.logger.Error("Failed to write preview response: %v", err)
	}
}

// handleProviders returns the static provider fact table.
func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	infos := entities.SupportedProviders()
	providers := make([]ProviderResponse, 0, len(infos))
	for _, info := range infos {
		providers = append(providers, ProviderResponse{
			ID:           string(info.ID),
			Name:         info.Name,
			DefaultModel: info.DefaultModel,
		})
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"providers": providers})
}

// handleHealth returns service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleTemplateInspect analyzes an uploaded template without invoking any
// provider.
func (s *Server) handleTemplateInspect(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	data, err := readTemplateUpload(r)
	if err != nil {
		s.handleError(w, "invalid_template", "could not read template upload", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		s.handleError(w, "invalid_template", "no template file provided", http.StatusBadRequest)
		return
	}

	desc, err := s.compiler.InspectTemplate(data)
	if err != nil {
		s.handleCompileError(w, err)
		return
	}

	resp := TemplateInspectResponse{
		Origin: string(desc.Origin),
		Styles: TemplateStylesResponse{
			HeadingFont:  desc.Styles.HeadingFont,
			BodyFont:     desc.Styles.BodyFont,
			AccentColors: desc.Styles.AccentColors,
		},
	}
	for _, l := range desc.Layouts {
		resp.Layouts = append(resp.Layouts, TemplateLayoutResponse{
			Name:    l.Name,
			Kind:    string(l.Kind),
			HasBody: l.HasBody,
		})
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// decodeGenerateRequest parses a generation request from either a JSON body
// or a multipart form carrying an optional template file. On failure it has
// already written the error response.
func (s *Server) decodeGenerateRequest(w http.ResponseWriter, r *http.Request) (*ports.CompileRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req GenerateRequest
	var template []byte

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch {
	case strings.HasPrefix(mediaType, "multipart/"):
		if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
			s.handleError(w, "bad_request", "could not parse multipart form", http.StatusBadRequest)
			return nil, false
		}
		req.Text = r.FormValue("text")
		req.Provider = r.FormValue("provider")
		req.APIKey = r.FormValue("api_key")
		req.Guidance = r.FormValue("guidance")
		req.IncludeNotes = r.FormValue("include_notes") == "true"

		if file, _, err := r.FormFile("template"); err == nil {
			template, err = io.ReadAll(file)
			_ = file.Close()
			if err != nil {
				s.handleError(w, "bad_request", "could not read template upload", http.StatusBadRequest)
				return nil, false
			}
		}
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.handleError(w, "bad_request", "invalid JSON body", http.StatusBadRequest)
			return nil, false
		}
	}

	if err := validate.Struct(&req); err != nil {
		s.handleError(w, "validation_failed", validationMessage(err), http.StatusBadRequest)
		return nil, false
	}

	compileReq := &ports.CompileRequest{
		Text:         req.Text,
		Provider:     entities.Provider(req.Provider),
		Credential:   req.APIKey,
		Guidance:     req.Guidance,
		Template:     template,
		IncludeNotes: req.IncludeNotes,
	}
	req.APIKey = ""
	return compileReq, true
}

// readTemplateUpload extracts template bytes from a multipart form field or
// a raw body.
func readTemplateUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		if err := r.ParseMultipartForm(maxRequestBytes); err != nil {
			return nil, err
		}
		file, _, err := r.FormFile("template")
		if err != nil {
			return nil, err
		}
		defer func() { _ = file.Close() }()
		return io.ReadAll(file)
	}
	return io.ReadAll(r.Body)
}

// validationMessage renders validator errors without echoing field values;
// the api_key field may be among them.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

// writeReportHeaders surfaces the compilation report as response headers so
// the document body stays a plain file download.
func writeReportHeaders(w http.ResponseWriter, report *entities.CompilationReport) {
	if report == nil {
		return
	}
	w.Header().Set("X-Report-Id", report.ID)
	w.Header().Set("X-Provider", string(report.Provider))
	w.Header().Set("X-Attempts", strconv.Itoa(report.Attempts))
	w.Header().Set("X-Parse-Pass", string(report.ParsePass))
	w.Header().Set("X-Slide-Count", strconv.Itoa(report.SlideCount))
	if len(report.RepairHeuristics) > 0 {
		w.Header().Set("X-Repair-Heuristics", strings.Join(report.RepairHeuristics, ","))
	}
	if len(report.LayoutFallbacks) > 0 {
		w.Header().Set("X-Layout-Fallbacks", strconv.Itoa(len(report.LayoutFallbacks)))
	}
	if report.InputTruncated {
		w.Header().Set("X-Input-Truncated", "true")
	}
}

// statusForKind maps a failure kind to its HTTP status code.
func statusForKind(kind entities.ErrorKind) int {
	switch kind {
	case entities.KindEmptyInput, entities.KindInputTooLarge,
		entities.KindUnknownProvider, entities.KindInvalidTemplate:
		return http.StatusBadRequest
	case entities.KindAuthFailure:
		return http.StatusUnauthorized
	case entities.KindRateLimited:
		return http.StatusTooManyRequests
	case entities.KindTimeout:
		return http.StatusGatewayTimeout
	case entities.KindUpstreamError, entities.KindUnparsableResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// handleCompileError maps a pipeline failure to a JSON error response.
// Diagnostics stay in the body; causes are logged, not returned.
func (s *Server) handleCompileError(w http.ResponseWriter, err error) {
	kind := entities.KindOf(err)
	status := statusForKind(kind)

	message := "compilation failed"
	var cerr *entities.CompileError
	if errors.As(err, &cerr) {
		message = cerr.Message
		if cerr.Diagnostic != "" {
			message = message + ": " + cerr.Diagnostic
		}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("Compile failed (%s): %v", kind, err)
	} else {
		s.logger.Info("Compile rejected (%s)", kind)
	}

	s.writeJSON(w, status, ErrorResponse{
		Error:   string(kind),
		Message: message,
		Time:    time.Now(),
	})
}

// handleError writes a simple error response.
func (s *Server) handleError(w http.ResponseWriter, code, message string, status int) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: message,
		Time:    time.Now(),
	})
}

// writeJSON writes a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode JSON response: %v", err)
	}
}
