package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/fredcamaral/deckgen/internal/domain/entities"
)

// maxResponseBytes bounds how much of an upstream body is read; model
// outlines are small and an unbounded read is a liability.
const maxResponseBytes = 1 << 20

// httpDoer is the slice of http.Client the clients need; tests substitute
// a stub.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// newHTTPClient returns the shared transport configuration. Per-call
// deadlines come from the request context; the client timeout is a backstop
// for a stalled upstream.
func newHTTPClient() *http.Client {
	return &http.Client{Timeout: 90 * time.Second}
}

// checkRequest enforces the pre-flight constraints every provider shares:
// a plausible credential and a prompt within the provider's budget. Both
// fail fast before any network I/O.
func checkRequest(req *entities.ProviderRequest, keyPrefix string, maxPromptRunes int) error {
	if req.Credential.Empty() {
		return entities.NewCompileError(entities.KindAuthFailure, fmt.Sprintf("%s credential is required", req.Provider), nil)
	}
	if keyPrefix != "" && !req.Credential.HasPrefix(keyPrefix) {
		return entities.NewCompileError(entities.KindAuthFailure, fmt.Sprintf("credential does not look like a %s key (expected %q prefix)", req.Provider, keyPrefix), nil)
	}
	if maxPromptRunes > 0 && utf8.RuneCountInString(req.Prompt) > maxPromptRunes {
		return entities.NewCompileError(entities.KindInputTooLarge, fmt.Sprintf("prompt exceeds the %s budget of %d characters", req.Provider, maxPromptRunes), nil)
	}
	return nil
}

// execute performs the single outbound call and maps transport and status
// failures onto the error taxonomy. Exactly one request, no retries: retry
// policy belongs to the pipeline.
func execute(ctx context.Context, client httpDoer, httpReq *http.Request, provider entities.Provider) ([]byte, error) {
	resp, err := client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, entities.NewCompileError(entities.KindTimeout, fmt.Sprintf("%s call timed out", provider), err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, entities.NewCompileError(entities.KindTimeout, fmt.Sprintf("%s call cancelled", provider), err)
		}
		return nil, entities.NewCompileError(entities.KindUpstreamError, fmt.Sprintf("%s call failed", provider), err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, entities.NewCompileError(entities.KindUpstreamError, fmt.Sprintf("reading %s response", provider), err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, entities.NewCompileError(entities.KindAuthFailure, fmt.Sprintf("%s rejected the credential", provider), nil)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, entities.NewCompileError(entities.KindRateLimited, fmt.Sprintf("%s rate limit exceeded", provider), nil)
	case resp.StatusCode >= 500:
		return nil, entities.NewCompileError(entities.KindUpstreamError, fmt.Sprintf("%s returned status %d", provider, resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		return nil, entities.NewCompileError(entities.KindUpstreamError, fmt.Sprintf("%s returned unexpected status %d", provider, resp.StatusCode), nil)
	}

	return body, nil
}

// postJSON builds the outbound request. The credential header is set by the
// caller; the payload never includes it.
func postJSON(ctx context.Context, url string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, entities.NewCompileError(entities.KindUpstreamError, "encoding provider payload", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, entities.NewCompileError(entities.KindUpstreamError, "building provider request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
