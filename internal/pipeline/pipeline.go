package pipeline

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/ppiankov/atlasprompt/internal/highlight"
	"github.com/ppiankov/atlasprompt/internal/llm"
	"github.com/ppiankov/atlasprompt/internal/logger"
	"github.com/ppiankov/atlasprompt/internal/marker"
	"github.com/ppiankov/atlasprompt/internal/model"
	"github.com/ppiankov/atlasprompt/internal/render"
	"github.com/ppiankov/atlasprompt/internal/store"
	"github.com/ppiankov/atlasprompt/internal/style"
	"github.com/ppiankov/atlasprompt/internal/validate"
)

var (
	// ErrEmptyPrompt is returned when Extract is called without a prompt
	ErrEmptyPrompt = errors.New("prompt is required")

	// ErrNoResult is returned when an operation needs the current set and none exists
	ErrNoResult = errors.New("no places extracted yet")
)

// Pipeline orchestrates extraction, storage and map rendering
type Pipeline struct {
	provider    llm.Provider
	store       store.ResultStore
	synthesizer *marker.Synthesizer
	highlighter *highlight.Highlighter
	builder     *render.Builder
	client      *render.Client
	config      *model.Config
	log         *logger.Logger
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, provider llm.Provider, results store.ResultStore, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}

	return &Pipeline{
		provider:    provider,
		store:       results,
		synthesizer: marker.NewSynthesizer(cfg.Markers.Palette, cfg.Markers.NameOffset),
		highlighter: highlight.Default(),
		builder:     render.NewBuilder(cfg.Render.Width, cfg.Render.Height, cfg.Render.APIKey),
		client: render.NewClient(render.ClientOptions{
			BaseURL:    cfg.Render.BaseURL,
			Timeout:    cfg.Render.Timeout,
			UserAgent:  cfg.HTTP.UserAgent,
			MaxBytes:   cfg.Render.MaxBodyBytes,
			HTTPProxy:  cfg.HTTP.HTTPProxy,
			HTTPSProxy: cfg.HTTP.HTTPSProxy,
			NoProxy:    cfg.HTTP.NoProxy,
		}),
		config: cfg,
		log:    log.With("component", "pipeline"),
	}
}

// ExtractResult contains a validated extraction
type ExtractResult struct {
	Prompt     string
	Records    []model.PlaceRecord
	Raw        string
	Model      string
	TokensUsed int
	Duration   time.Duration
}

// Extract runs the prompt through the provider and, on success, replaces the current set.
// On any failure the current set is left untouched.
func (p *Pipeline) Extract(ctx context.Context, prompt string) (*ExtractResult, error) {
	result, err := p.ExtractOnly(ctx, prompt)
	if err != nil {
		return nil, err
	}

	if err := p.store.Replace(ctx, result.Records); err != nil {
		return nil, fmt.Errorf("store result: %w", err)
	}

	p.log.Info("current set replaced", "places", len(result.Records), "scope", style.ClassifyScope(result.Records))
	return result, nil
}

// ExtractOnly runs extraction and validation without touching the store
func (p *Pipeline) ExtractOnly(ctx context.Context, prompt string) (*ExtractResult, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}
	if p.provider == nil {
		return nil, fmt.Errorf("no extraction provider configured")
	}

	start := time.Now()

	// 1. Ask the extraction collaborator
	resp, err := p.provider.Extract(ctx, llm.ExtractRequest{
		Prompt:    prompt,
		Model:     p.config.LLM.Model,
		MaxTokens: p.config.LLM.MaxTokens,
	})
	if err != nil {
		p.log.Warn("extraction failed", "provider", p.provider.Name(), "error", err)
		return nil, asUpstream(p.provider.Name(), err)
	}

	// 2. Validate the untrusted response
	records, err := validate.ParseRecords(resp.Text)
	if err != nil {
		p.log.Warn("extraction response rejected", "provider", p.provider.Name(), "error", err)
		return nil, err
	}

	result := &ExtractResult{
		Prompt:     prompt,
		Records:    records,
		Raw:        resp.Text,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
		Duration:   time.Since(start),
	}

	p.log.Debug("extraction complete",
		"provider", p.provider.Name(),
		"model", resp.Model,
		"places", len(records),
		"tokens", resp.TokensUsed,
		"duration", result.Duration,
	)
	return result, nil
}

// Current returns the current set or ErrNoResult
func (p *Pipeline) Current(ctx context.Context) ([]model.PlaceRecord, error) {
	records, found, err := p.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load current set: %w", err)
	}
	if !found {
		return nil, ErrNoResult
	}
	return records, nil
}

// RenderOptions are the per-request rendering choices
type RenderOptions struct {
	ShowNames bool
	Theme     string
}

// BuildRequest composes the static map request for the current set
func (p *Pipeline) BuildRequest(ctx context.Context, opts RenderOptions) (render.Request, error) {
	records, err := p.Current(ctx)
	if err != nil {
		return render.Request{}, err
	}
	return p.RequestFor(records, opts), nil
}

// RequestFor composes the static map request for an explicit record set
func (p *Pipeline) RequestFor(records []model.PlaceRecord, opts RenderOptions) render.Request {
	themeName := opts.Theme
	if themeName == "" {
		themeName = p.config.Render.DefaultTheme
	}

	scope := style.ClassifyScope(records)
	markers := p.synthesizer.Synthesize(records, opts.ShowNames)
	directives := style.ComposeTheme(scope, themeName, opts.ShowNames)

	return p.builder.Build(markers, directives)
}

// RenderMap builds the request for the current set and fetches the image
func (p *Pipeline) RenderMap(ctx context.Context, opts RenderOptions) (*render.Image, error) {
	req, err := p.BuildRequest(ctx, opts)
	if err != nil {
		return nil, err
	}
	return p.Fetch(ctx, req)
}

// Fetch sends a prepared request to the rendering collaborator
func (p *Pipeline) Fetch(ctx context.Context, req render.Request) (*render.Image, error) {
	start := time.Now()
	img, err := p.client.Fetch(ctx, req)
	if err != nil {
		p.log.Warn("render failed", "error", err)
		return nil, err
	}

	p.log.Debug("map rendered", "bytes", len(img.Data), "duration", time.Since(start))
	return img, nil
}

// RenderURL returns the full rendering URL with the key redacted
func (p *Pipeline) RenderURL(req render.Request) string {
	return p.client.URL(req.Redacted())
}

// AnnotatedPlace is a place prepared for display next to the map
type AnnotatedPlace struct {
	Index    int           `json:"index"` // 1-based, matches the numeric marker label
	Name     string        `json:"name"`
	Kind     string        `json:"type,omitempty"`
	Lat      float64       `json:"latitude"`
	Lng      float64       `json:"longitude"`
	Color    string        `json:"color"`     // marker colour, 0xRRGGBB
	CSSColor string        `json:"css_color"` // same colour as #RRGGBB
	Fact     string        `json:"fact"`
	FactHTML template.HTML `json:"fact_html"`
}

// Annotate pairs each record with its marker colour and highlighted fact
func (p *Pipeline) Annotate(records []model.PlaceRecord) []AnnotatedPlace {
	out := make([]AnnotatedPlace, 0, len(records))
	for i, r := range records {
		color := p.synthesizer.ColorFor(i)
		out = append(out, AnnotatedPlace{
			Index:    i + 1,
			Name:     r.Name,
			Kind:     r.Kind,
			Lat:      r.Latitude,
			Lng:      r.Longitude,
			Color:    color,
			CSSColor: "#" + strings.TrimPrefix(color, "0x"),
			Fact:     r.Fact,
			// Highlight escapes the fact before wrapping spans
			FactHTML: template.HTML(p.highlighter.Highlight(r.Fact)),
		})
	}
	return out
}

// Legend returns the highlight categories in priority order
func (p *Pipeline) Legend() []highlight.Category {
	return p.highlighter.Legend()
}

// Themes returns the selectable theme names
func (p *Pipeline) Themes() []style.Theme {
	return style.Themes()
}

// asUpstream attributes a provider failure to the extraction collaborator
func asUpstream(provider string, err error) error {
	var upstreamErr *model.UpstreamError
	if errors.As(err, &upstreamErr) {
		return err
	}
	return &model.UpstreamError{Collaborator: "extraction", Provider: provider, Err: err}
}
