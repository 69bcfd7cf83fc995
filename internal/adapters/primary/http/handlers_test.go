package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

func newTestServer(compiler ports.CompilerService) *Server {
	return NewServer(compiler, &entities.ServerConfig{})
}

func validBody() string {
	return `{"text":"quarterly results","provider":"openai","api_key":"sk-test-key"}`
}

func sampleReport() entities.CompilationReport {
	return entities.CompilationReport{
		ID:         "a1b2c3d4",
		Provider:   entities.ProviderOpenAI,
		Model:      "gpt-3.5-turbo",
		Attempts:   1,
		ParsePass:  entities.ParsePassStrict,
		SlideCount: 4,
	}
}

func TestHandleGenerate(t *testing.T) {
	t.Run("success returns the document with report headers", func(t *testing.T) {
		compiler := &compilerStub{}
		compiler.compileFn = func(req ports.CompileRequest) (*ports.CompileResult, error) {
			assert.Equal(t, "quarterly results", req.Text)
			assert.Equal(t, entities.ProviderOpenAI, req.Provider)
			assert.Equal(t, "sk-test-key", req.Credential)
			return &ports.CompileResult{
				Document: []byte("PK-document-bytes"),
				Filename: "presentation_a1b2c3d4.pptx",
				Report:   sampleReport(),
			}, nil
		}
		s := newTestServer(compiler)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody()))
		req.Header.Set("Content-Type", "application/json")
		s.handleGenerate(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.presentationml.presentation", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "presentation_a1b2c3d4.pptx")
		assert.Equal(t, "a1b2c3d4", rec.Header().Get("X-Report-Id"))
		assert.Equal(t, "openai", rec.Header().Get("X-Provider"))
		assert.Equal(t, "1", rec.Header().Get("X-Attempts"))
		assert.Equal(t, "strict", rec.Header().Get("X-Parse-Pass"))
		assert.Equal(t, "4", rec.Header().Get("X-Slide-Count"))
		assert.Empty(t, rec.Header().Get("X-Repair-Heuristics"))
		assert.Equal(t, "PK-document-bytes", rec.Body.String())
	})

	t.Run("degradations surface as headers", func(t *testing.T) {
		compiler := &compilerStub{}
		compiler.compileFn = func(req ports.CompileRequest) (*ports.CompileResult, error) {
			report := sampleReport()
			report.ParsePass = entities.ParsePassRepair
			report.RepairHeuristics = []string{"strip-fences", "normalize-bullets"}
			report.LayoutFallbacks = []string{"closing slide bound to content layout"}
			report.InputTruncated = true
			return &ports.CompileResult{Document: []byte("doc"), Filename: "f.pptx", Report: report}, nil
		}
		s := newTestServer(compiler)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody()))
		req.Header.Set("Content-Type", "application/json")
		s.handleGenerate(rec, req)

		assert.Equal(t, "repair", rec.Header().Get("X-Parse-Pass"))
		assert.Equal(t, "strip-fences,normalize-bullets", rec.Header().Get("X-Repair-Heuristics"))
		assert.Equal(t, "1", rec.Header().Get("X-Layout-Fallbacks"))
		assert.Equal(t, "true", rec.Header().Get("X-Input-Truncated"))
	})

	t.Run("failure kinds map to status codes", func(t *testing.T) {
		cases := []struct {
			kind   entities.ErrorKind
			status int
		}{
			{entities.KindEmptyInput, http.StatusBadRequest},
			{entities.KindInputTooLarge, http.StatusBadRequest},
			{entities.KindUnknownProvider, http.StatusBadRequest},
			{entities.KindInvalidTemplate, http.StatusBadRequest},
			{entities.KindAuthFailure, http.StatusUnauthorized},
			{entities.KindRateLimited, http.StatusTooManyRequests},
			{entities.KindTimeout, http.StatusGatewayTimeout},
			{entities.KindUpstreamError, http.StatusBadGateway},
			{entities.KindUnparsableResponse, http.StatusBadGateway},
			{entities.KindRenderFailure, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			t.Run(string(tc.kind), func(t *testing.T) {
				compiler := &compilerStub{}
				compiler.compileFn = func(ports.CompileRequest) (*ports.CompileResult, error) {
					return nil, entities.NewCompileError(tc.kind, "it broke", nil)
				}
				s := newTestServer(compiler)

				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody()))
				req.Header.Set("Content-Type", "application/json")
				s.handleGenerate(rec, req)

				assert.Equal(t, tc.status, rec.Code)

				var resp ErrorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.Equal(t, string(tc.kind), resp.Error)
				assert.Equal(t, "it broke", resp.Message)
			})
		}
	})

	t.Run("diagnostic appears in the error body", func(t *testing.T) {
		compiler := &compilerStub{}
		compiler.compileFn = func(ports.CompileRequest) (*ports.CompileResult, error) {
			return nil, entities.NewCompileError(entities.KindUnparsableResponse, "model output does not form a usable outline", nil).
				WithDiagnostic("I'm sorry, I can't do that")
		}
		s := newTestServer(compiler)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(validBody()))
		req.Header.Set("Content-Type", "application/json")
		s.handleGenerate(rec, req)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Message, "I'm sorry, I can't do that")
	})

	t.Run("missing fields rejected without echoing values", func(t *testing.T) {
		s := newTestServer(&compilerStub{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"text":"hi","provider":"openai"}`))
		req.Header.Set("Content-Type", "application/json")
		s.handleGenerate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "apikey (required)")
	})

	t.Run("unsupported provider rejected at validation", func(t *testing.T) {
		s := newTestServer(&compilerStub{})

		rec := httptest.NewRecorder()
		body := `{"text":"hi","provider":"cohere","api_key":"sk-x"}`
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		s.handleGenerate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotContains(t, rec.Body.String(), "sk-x")
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		s := newTestServer(&compilerStub{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		s.handleGenerate(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("multipart form carries an uploaded template", func(t *testing.T) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		require.NoError(t, mw.WriteField("text", "some text"))
		require.NoError(t, mw.WriteField("provider", "groq"))
		require.NoError(t, mw.WriteField("api_key", "gsk_test"))
		require.NoError(t, mw.WriteField("include_notes", "true"))
		fw, err := mw.CreateFormFile("template", "corp.pptx")
		require.NoError(t, err)
		_, err = fw.Write([]byte("PK\x03\x04fake"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		compiler := &compilerStub{}
		compiler.compileFn = func(req ports.CompileRequest) (*ports.CompileResult, error) {
			assert.Equal(t, entities.ProviderGroq, req.Provider)
			assert.True(t, req.IncludeNotes)
			assert.Equal(t, []byte("PK\x03\x04fake"), req.Template)
			return &ports.CompileResult{Document: []byte("doc"), Filename: "f.pptx", Report: sampleReport()}, nil
		}
		s := newTestServer(compiler)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/generate", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		s.handleGenerate(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandlePreview(t *testing.T) {
	compiler := &compilerStub{}
	compiler.previewFn = func(req ports.CompileRequest) ([]byte, *entities.CompilationReport, error) {
		report := sampleReport()
		return []byte("<!DOCTYPE html><html></html>"), &report, nil
	}
	s := newTestServer(compiler)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/preview", strings.NewReader(validBody()))
	req.Header.Set("Content-Type", "application/json")
	s.handlePreview(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<!DOCTYPE html>")
	assert.Equal(t, "a1b2c3d4", rec.Header().Get("X-Report-Id"))
}

func TestHandleProviders(t *testing.T) {
	s := newTestServer(&compilerStub{})

	rec := httptest.NewRecorder()
	s.handleProviders(rec, httptest.NewRequest(http.MethodGet, "/providers", nil))

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Providers []ProviderResponse `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Providers, 3)
	assert.Equal(t, "openai", resp.Providers[0].ID)
	assert.NotEmpty(t, resp.Providers[0].DefaultModel)
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(&compilerStub{})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleTemplateInspect(t *testing.T) {
	t.Run("returns the descriptor summary", func(t *testing.T) {
		compiler := &compilerStub{}
		compiler.inspectFn = func(data []byte) (*entities.TemplateDescriptor, error) {
			assert.Equal(t, []byte("template-bytes"), data)
			return &entities.TemplateDescriptor{
				Origin: entities.TemplateUploaded,
				Layouts: []entities.LayoutSlot{
					{Name: "Title and Content", Kind: entities.KindBullets, HasBody: true},
				},
				Styles: entities.StyleHints{HeadingFont: "Georgia"},
			}, nil
		}
		s := newTestServer(compiler)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/template/inspect", strings.NewReader("template-bytes"))
		s.handleTemplateInspect(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp TemplateInspectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "uploaded", resp.Origin)
		require.Len(t, resp.Layouts, 1)
		assert.Equal(t, "bullets", resp.Layouts[0].Kind)
		assert.Equal(t, "Georgia", resp.Styles.HeadingFont)
	})

	t.Run("empty upload rejected", func(t *testing.T) {
		s := newTestServer(&compilerStub{})

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/template/inspect", strings.NewReader(""))
		s.handleTemplateInspect(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("corrupt template maps to 400", func(t *testing.T) {
		compiler := &compilerStub{}
		compiler.inspectFn = func(data []byte) (*entities.TemplateDescriptor, error) {
			return nil, entities.NewCompileError(entities.KindInvalidTemplate, "uploaded file is not a zip container", nil)
		}
		s := newTestServer(compiler)

		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/template/inspect", strings.NewReader("not a zip"))
		s.handleTemplateInspect(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRouting(t *testing.T) {
	compiler := &compilerStub{}
	compiler.compileFn = func(ports.CompileRequest) (*ports.CompileResult, error) {
		return &ports.CompileResult{Document: []byte("doc"), Filename: "f.pptx", Report: sampleReport()}, nil
	}
	s := newTestServer(compiler)
	handler := s.setupRoutes()

	do := func(method, path, ip string, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		var req *http.Request
		if body != "" {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		} else {
			req = httptest.NewRequest(method, path, nil)
		}
		req.Header.Set("X-Real-IP", ip)
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("routes reach their handlers", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, do(http.MethodGet, "/health", "198.51.100.1", "").Code)
		assert.Equal(t, http.StatusOK, do(http.MethodGet, "/providers", "198.51.100.2", "").Code)
		assert.Equal(t, http.StatusOK, do(http.MethodPost, "/generate", "198.51.100.3", validBody()).Code)
	})

	t.Run("wrong method is rejected", func(t *testing.T) {
		assert.Equal(t, http.StatusMethodNotAllowed, do(http.MethodGet, "/generate", "198.51.100.4", "").Code)
	})

	t.Run("security headers applied", func(t *testing.T) {
		rec := do(http.MethodGet, "/health", "198.51.100.5", "")
		assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
		assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
		assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
	})

	t.Run("per-ip rate limit enforced", func(t *testing.T) {
		ip := "203.0.113.77"
		var last int
		for i := 0; i < 31; i++ {
			last = do(http.MethodGet, "/health", ip, "").Code
		}
		assert.Equal(t, http.StatusTooManyRequests, last)
	})
}

// compilerStub implements ports.CompilerService with swappable functions;
// handler tests care about wiring, not call accounting.
type compilerStub struct {
	compileFn func(ports.CompileRequest) (*ports.CompileResult, error)
	previewFn func(ports.CompileRequest) ([]byte, *entities.CompilationReport, error)
	inspectFn func([]byte) (*entities.TemplateDescriptor, error)
}

func (c *compilerStub) Compile(_ context.Context, req ports.CompileRequest) (*ports.CompileResult, error) {
	if c.compileFn == nil {
		return nil, fmt.Errorf("unexpected Compile call")
	}
	return c.compileFn(req)
}

func (c *compilerStub) Preview(_ context.Context, req ports.CompileRequest) ([]byte, *entities.CompilationReport, error) {
	if c.previewFn == nil {
		return nil, nil, fmt.Errorf("unexpected Preview call")
	}
	return c.previewFn(req)
}

func (c *compilerStub) InspectTemplate(data []byte) (*entities.TemplateDescriptor, error) {
	if c.inspectFn == nil {
		return nil, fmt.Errorf("unexpected InspectTemplate call")
	}
	return c.inspectFn(data)
}
