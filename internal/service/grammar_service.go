package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/schreiber-platform/schreiber-api/internal/dto"
	"github.com/schreiber-platform/schreiber-api/internal/observability"
)

// ErrGrammarUpstream indicates the grammar-check upstream returned an error.
var ErrGrammarUpstream = errors.New("grammar upstream error")

const defaultGrammarLanguage = "en-US"

// GrammarService proxies text checks to the LanguageTool HTTP API. Calls are
// single-attempt; an upstream failure surfaces immediately.
type GrammarService interface {
	Check(ctx context.Context, payload dto.GrammarCheckRequest) (json.RawMessage, error)
}

type grammarService struct {
	endpoint string
	client   *http.Client
	logger   zerolog.Logger
}

// NewGrammarService constructs a GrammarService instance.
func NewGrammarService(endpoint string, timeout time.Duration, logger zerolog.Logger) GrammarService {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &grammarService{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger.With().Str("component", "grammar_service").Logger(),
	}
}

func (s *grammarService) Check(ctx context.Context, payload dto.GrammarCheckRequest) (json.RawMessage, error) {
	language := payload.Language
	if language == "" {
		language = defaultGrammarLanguage
	}

	form := url.Values{}
	form.Set("text", payload.Text)
	form.Set("language", language)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build grammar request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		observability.GrammarUpstreamFailures().Inc()
		return nil, fmt.Errorf("%w: %v", ErrGrammarUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGrammarUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		observability.GrammarUpstreamFailures().Inc()
		s.logger.Warn().Int("status", resp.StatusCode).Msg("grammar upstream rejected request")
		return nil, fmt.Errorf("%w: status %d: %s", ErrGrammarUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.RawMessage(body), nil
}
