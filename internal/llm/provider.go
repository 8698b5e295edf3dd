package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/atlasprompt/internal/model"
	"github.com/ppiankov/atlasprompt/internal/util"
)

// Provider defines the interface for extraction providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Extract sends the location prompt to the model and returns its raw text.
	// The text is untrusted and must go through validate.ParseRecords.
	Extract(ctx context.Context, req ExtractRequest) (*ExtractResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// ExtractRequest contains the input for place extraction
type ExtractRequest struct {
	// Prompt is the user's natural-language location prompt
	Prompt string

	// Instruction overrides the default extraction instruction (if empty, BuildPrompt is used)
	Instruction string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// ExtractResponse contains the model's raw output
type ExtractResponse struct {
	// Text is the raw response text, possibly wrapped in code fences
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// systemInstruction is shared by every provider
const systemInstruction = "You extract geographic places from text and answer with raw JSON only."

// BuildPrompt constructs the extraction instruction for a user prompt
func BuildPrompt(prompt string) string {
	return fmt.Sprintf(`You are an AI assistant. Given a user prompt that may mention one or more locations, extract each distinct place and return a JSON list.

Each item must contain:
- "name" (name of the location),
- "latitude" (decimal degrees, number),
- "longitude" (decimal degrees, number),
- "fact" (one historical fact about that location),
- "type" (one of "country", "city", "region", "landmark", "site")

Only return the raw JSON array.
Prompt: """%s"""
`, strings.TrimSpace(prompt))
}

// resolve fills request defaults from the provider config
func (c Config) resolve(req ExtractRequest, defaultModel string) (instruction, modelName string, maxTokens int) {
	instruction = req.Instruction
	if instruction == "" {
		instruction = BuildPrompt(req.Prompt)
	}

	modelName = req.Model
	if modelName == "" {
		modelName = c.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = c.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 2048
	}
	return instruction, modelName, maxTokens
}

// upstreamError wraps a provider failure as an extraction UpstreamError
func upstreamError(provider string, status int, details string, err error) *model.UpstreamError {
	return &model.UpstreamError{
		Collaborator: "extraction",
		Provider:     provider,
		Status:       status,
		Details:      details,
		Err:          err,
	}
}

// asUpstream returns err unchanged if it already is an UpstreamError
func asUpstream(provider string, err error) error {
	var upstreamErr *model.UpstreamError
	if errors.As(err, &upstreamErr) {
		return err
	}
	return upstreamError(provider, 0, "", err)
}

// newHTTPClient builds the outbound client shared by the REST providers
func newHTTPClient(config Config, defaultTimeout time.Duration) *http.Client {
	timeout := time.Duration(config.Timeout) * time.Second
	if timeout == 0 {
		timeout = defaultTimeout
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		},
	}
}
