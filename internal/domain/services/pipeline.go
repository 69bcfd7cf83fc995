package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
	"github.com/fredcamaral/deckgen/internal/domain/ports"
)

// CompilerService orchestrates the content-to-deck pipeline in strict
// sequence: prompt construction, template descriptor construction, provider
// call, response parsing, template binding, rendering. It is the only place
// retries happen, and it owns the credential for exactly the duration of
// one compile.
type CompilerService struct {
	prompts     *PromptBuilder
	providers   ports.ProviderRegistry
	parser      ports.OutlineParser
	templates   ports.TemplateSource
	binder      *TemplateBinder
	renderer    ports.DeckRenderer
	preview     ports.PreviewRenderer
	clock       ports.TimeProvider
	config      entities.CompilerConfig
	providerCfg func(entities.Provider) entities.ProviderConfig
}

// NewCompilerService creates a compiler service wired to its collaborators.
func NewCompilerService(
	prompts *PromptBuilder,
	providers ports.ProviderRegistry,
	parser ports.OutlineParser,
	templates ports.TemplateSource,
	binder *TemplateBinder,
	renderer ports.DeckRenderer,
	preview ports.PreviewRenderer,
	clock ports.TimeProvider,
	cfg *entities.Config,
) *CompilerService {
	if clock == nil {
		clock = ports.NewRealTimeProvider()
	}
	compilerCfg := entities.CompilerConfig{}
	lookup := func(entities.Provider) entities.ProviderConfig { return entities.ProviderConfig{} }
	if cfg != nil {
		compilerCfg = cfg.Compiler
		lookup = func(p entities.Provider) entities.ProviderConfig { return cfg.Provider(string(p)) }
	}
	return &CompilerService{
		prompts:     prompts,
		providers:   providers,
		parser:      parser,
		templates:   templates,
		binder:      binder,
		renderer:    renderer,
		preview:     preview,
		clock:       clock,
		config:      compilerCfg,
		providerCfg: lookup,
	}
}

// Compile runs the full pipeline and returns the rendered document bytes
// plus the compilation report, or a typed failure.
func (s *CompilerService) Compile(ctx context.Context, req ports.CompileRequest) (*ports.CompileResult, error) {
	c, err := s.compileToBound(ctx, req)
	if err != nil {
		return nil, err
	}

	document, err := s.renderer.Render(c.bound)
	if err != nil {
		return nil, err
	}

	c.report.Elapsed = s.clock.Since(c.start)
	return &ports.CompileResult{
		Document: document,
		Filename: fmt.Sprintf("presentation_%s.pptx", c.report.ID[:8]),
		Report:   *c.report,
	}, nil
}

// Preview runs the pipeline up to binding and renders an HTML preview.
func (s *CompilerService) Preview(ctx context.Context, req ports.CompileRequest) ([]byte, *entities.CompilationReport, error) {
	c, err := s.compileToBound(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	html, err := s.preview.RenderHTML(c.bound)
	if err != nil {
		return nil, nil, err
	}

	c.report.Elapsed = s.clock.Since(c.start)
	return html, c.report, nil
}

// InspectTemplate analyzes uploaded template bytes without touching any
// provider.
func (s *CompilerService) InspectTemplate(data []byte) (*entities.TemplateDescriptor, error) {
	return s.templates.FromUpload(data)
}

// compilation is the intermediate state between binding and rendering.
type compilation struct {
	bound  *entities.BoundDeck
	report *entities.CompilationReport
	start  time.Time
}

// compileToBound runs every stage up to and including binding. The
// credential is cleared on every exit path, success or failure.
func (s *CompilerService) compileToBound(ctx context.Context, req ports.CompileRequest) (*compilation, error) {
	start := s.clock.Now()

	credential := entities.NewCredential(req.Credential)
	defer credential.Clear()

	// Resolve the provider first: an unknown provider fails before any
	// other work.
	client, err := s.providers.Client(req.Provider)
	if err != nil {
		return nil, err
	}

	prompt, err := s.prompts.Build(req.Text, req.Guidance, req.IncludeNotes)
	if err != nil {
		return nil, err
	}

	// Template validation is ordered before the provider call so a corrupt
	// upload never costs a paid API request.
	descriptor, err := s.buildDescriptor(req.Template)
	if err != nil {
		return nil, err
	}

	pcfg := s.providerCfg(req.Provider)
	info, err := entities.LookupProvider(req.Provider)
	if err != nil {
		return nil, entities.NewCompileError(entities.KindUnknownProvider, err.Error(), nil)
	}
	model := pcfg.Model
	if model == "" {
		model = info.DefaultModel
	}

	raw, attempts, err := s.invokeWithRetry(ctx, client, &entities.ProviderRequest{
		Provider:   req.Provider,
		Credential: credential,
		Prompt:     prompt.Text,
		Model:      model,
		MaxTokens:  pcfg.MaxOutputTokens,
	})
	// The request held the only live reference besides ours; drop the
	// secret as soon as the call stack unwinds to here.
	credential.Clear()
	if err != nil {
		return nil, err
	}

	parsed, err := s.parser.Parse(raw)
	if err != nil {
		return nil, err
	}

	bindResult, err := s.binder.Bind(parsed.Deck, descriptor)
	if err != nil {
		return nil, err
	}

	report := &entities.CompilationReport{
		ID:               uuid.NewString(),
		Provider:         req.Provider,
		Model:            model,
		Attempts:         attempts,
		ParsePass:        parsed.Pass,
		RepairHeuristics: parsed.Heuristics,
		InputTruncated:   prompt.Truncated,
		TemplateOrigin:   descriptor.Origin,
		LayoutFallbacks:  bindResult.Fallbacks,
		SlideCount:       parsed.Deck.SlideCount(),
	}

	return &compilation{bound: bindResult.Deck, report: report, start: start}, nil
}

func (s *CompilerService) buildDescriptor(template []byte) (*entities.TemplateDescriptor, error) {
	if len(template) == 0 {
		return s.templates.Builtin(), nil
	}
	return s.templates.FromUpload(template)
}

// invokeWithRetry performs the provider call with the documented retry
// policy: rate-limited and timed-out attempts are retried with exponential
// backoff up to the configured total attempt bound; auth failures and
// unknown providers fail immediately, as does everything else.
func (s *CompilerService) invokeWithRetry(ctx context.Context, client ports.ProviderClient, req *entities.ProviderRequest) (string, int, error) {
	maxAttempts := s.config.GetMaxAttempts()
	backoff := s.config.GetBackoffBase()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			// Caller gone: abandon the compile, discard partial work.
			return "", attempt - 1, entities.NewCompileError(entities.KindTimeout, "request cancelled", err)
		}

		callCtx, cancel := context.WithTimeout(ctx, s.config.GetProviderTimeout())
		raw, err := client.Complete(callCtx, req)
		cancel()
		if err == nil {
			return raw, attempt, nil
		}

		lastErr = err
		if !entities.KindOf(err).Retryable() || attempt == maxAttempts {
			return "", attempt, err
		}

		s.clock.Sleep(backoff)
		backoff *= 2
	}

	return "", maxAttempts, lastErr
}
