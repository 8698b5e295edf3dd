package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/atlasprompt/internal/pipeline"
)

// Extractor runs one prompt through extraction and validation without touching the current set
type Extractor interface {
	ExtractOnly(ctx context.Context, prompt string) (*pipeline.ExtractResult, error)
}

// ExtractJob represents one prompt of a batch
type ExtractJob struct {
	Index     int
	Prompt    string
	Extractor Extractor
	Limiter   *Limiter
}

// Execute executes the extraction job
func (j *ExtractJob) Execute(ctx context.Context) Result {
	if j.Limiter != nil {
		if err := j.Limiter.Wait(ctx, "extraction"); err != nil {
			return &ExtractJobResult{Index: j.Index, Prompt: j.Prompt, Error: err}
		}
	}

	result, err := j.Extractor.ExtractOnly(ctx, j.Prompt)
	return &ExtractJobResult{
		Index:  j.Index,
		Prompt: j.Prompt,
		Result: result,
		Error:  err,
	}
}

// ExtractJobResult represents the outcome of one prompt
type ExtractJobResult struct {
	Index  int
	Prompt string
	Result *pipeline.ExtractResult
	Error  error
}

// GetError returns the error from the job
func (r *ExtractJobResult) GetError() error {
	return r.Error
}

// BatchProcessor extracts many prompts concurrently
type BatchProcessor struct {
	extractor   Extractor
	concurrency int
	limiter     *Limiter
}

// NewBatchProcessor creates a new batch processor. requestsPerSecond <= 0 disables pacing.
func NewBatchProcessor(extractor Extractor, concurrency int, requestsPerSecond float64, burst int) *BatchProcessor {
	var limiter *Limiter
	if requestsPerSecond > 0 {
		limiter = NewLimiter(requestsPerSecond, burst)
	}

	return &BatchProcessor{
		extractor:   extractor,
		concurrency: concurrency,
		limiter:     limiter,
	}
}

// ProcessPrompts extracts every prompt; results are returned in input order
func (b *BatchProcessor) ProcessPrompts(ctx context.Context, prompts []string) []*ExtractJobResult {
	if len(prompts) == 0 {
		return []*ExtractJobResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, prompt := range prompts {
		job := &ExtractJob{
			Index:     i,
			Prompt:    prompt,
			Extractor: b.extractor,
			Limiter:   b.limiter,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := pool.Wait()

	out := make([]*ExtractJobResult, len(results))
	for i, result := range results {
		out[i] = result.(*ExtractJobResult)
	}
	return out
}

// ProcessFile reads prompts from a file and extracts them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*ExtractJobResult, error) {
	prompts, err := ReadPromptsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}

	return b.ProcessPrompts(ctx, prompts), nil
}

// ReadPromptsFromFile reads prompts from a file (one per line).
// Blank lines and lines starting with # are skipped; duplicates are dropped.
func ReadPromptsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var prompts []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			prompts = append(prompts, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return prompts, nil
}
