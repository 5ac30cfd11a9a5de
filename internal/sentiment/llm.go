package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/time/rate"

	"github.com/IshaanNene/PostPulse/internal/config"
)

// LLMProvider specifies which LLM backend to use.
type LLMProvider string

const (
	ProviderOllama LLMProvider = "ollama"
	ProviderOpenAI LLMProvider = "openai"
)

// LLMClient sends prompts to an Ollama or OpenAI-compatible endpoint.
type LLMClient struct {
	provider LLMProvider
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
	logger   *slog.Logger
}

// NewLLMClient creates a new LLM client.
func NewLLMClient(cfg config.SentimentConfig, logger *slog.Logger) *LLMClient {
	return &LLMClient{
		provider: LLMProvider(cfg.Provider),
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger.With("component", "llm_client"),
	}
}

// Generate sends a prompt to the LLM and returns the response.
func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	switch c.provider {
	case ProviderOllama:
		return c.generateOllama(ctx, prompt)
	case ProviderOpenAI:
		return c.generateOpenAI(ctx, prompt)
	default:
		return "", fmt.Errorf("unsupported LLM provider: %s", c.provider)
	}
}

func (c *LLMClient) generateOllama(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
		"options": map[string]any{
			"temperature": 0,
		},
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, c.endpoint+"/api/generate", payload, &result); err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	return result.Response, nil
}

func (c *LLMClient) generateOpenAI(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": 0,
	}

	endpoint := c.endpoint
	if endpoint == "" {
		endpoint = "https://api.openai.com/v1"
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, endpoint+"/chat/completions", payload, &result); err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in openai response")
	}
	return result.Choices[0].Message.Content, nil
}

func (c *LLMClient) post(ctx context.Context, url string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// LLMClassifier asks an LLM to label each batch. Batches the model cannot
// label are handed to the fallback classifier.
type LLMClassifier struct {
	client   *LLMClient
	limiter  *rate.Limiter
	fallback Classifier
	logger   *slog.Logger
}

// NewLLMClassifier creates a classifier limited to cfg.RequestsPerSecond.
func NewLLMClassifier(cfg config.SentimentConfig, fallback Classifier, logger *slog.Logger) *LLMClassifier {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &LLMClassifier{
		client:   NewLLMClient(cfg, logger),
		limiter:  rate.NewLimiter(limit, 1),
		fallback: fallback,
		logger:   logger.With("component", "llm_classifier"),
	}
}

// maxPromptRunes caps each comment sent to the model.
const maxPromptRunes = 1000

const classifyPrompt = `Classify the sentiment of each numbered social media comment below as "negative", "neutral" or "positive".
Comments may be in English or Vietnamese.
Return only JSON of the form {"labels": ["positive", ...]} with exactly %d labels in the same order.

%s`

func (c *LLMClassifier) Classify(ctx context.Context, texts []string) ([]Label, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	labels, err := c.classify(ctx, texts)
	if err == nil {
		return labels, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if c.fallback == nil {
		return nil, err
	}
	c.logger.Warn("llm classification failed, using fallback", "batch", len(texts), "error", err)
	return c.fallback.Classify(ctx, texts)
}

func (c *LLMClassifier) classify(ctx context.Context, texts []string) ([]Label, error) {
	var list strings.Builder
	for i, t := range texts {
		if utf8.RuneCountInString(t) > maxPromptRunes {
			t = string([]rune(t)[:maxPromptRunes])
		}
		fmt.Fprintf(&list, "%d. %s\n", i+1, strings.ReplaceAll(t, "\n", " "))
	}

	response, err := c.client.Generate(ctx, fmt.Sprintf(classifyPrompt, len(texts), list.String()))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Labels []string `json:"labels"`
	}
	if err := json.Unmarshal([]byte(extractJSON(response)), &parsed); err != nil {
		return nil, fmt.Errorf("decode labels: %w", err)
	}
	if len(parsed.Labels) != len(texts) {
		return nil, fmt.Errorf("expected %d labels, got %d", len(texts), len(parsed.Labels))
	}

	labels := make([]Label, len(texts))
	for i, raw := range parsed.Labels {
		l, ok := ParseLabel(raw)
		if !ok {
			return nil, fmt.Errorf("unknown label %q", raw)
		}
		labels[i] = l
	}
	return labels, nil
}

// extractJSON tries to find a JSON object in the LLM response.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start < 0 {
		return "{}"
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return "{}"
}
