package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/colereed/showrunner/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/bedrock"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator is the content-generation contract the pipeline depends on.
type Generator interface {
	Generate(ctx context.Context, step StepKind, gc GenContext) (string, error)
}

// Model wraps a langchaingo LLM for per-step generation.
type Model struct {
	llm       llms.Model
	modelName string
	now       func() time.Time
}

// NewModel creates an LLM model based on configuration.
func NewModel(ctx context.Context, cfg config.Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.LLM.Provider {
	case config.ProviderAnthropic:
		if cfg.LLM.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY required for provider %s", cfg.LLM.Provider)
		}
		model, err = anthropic.New(
			anthropic.WithToken(cfg.LLM.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	case config.ProviderOpenAI:
		if cfg.LLM.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY required for provider %s", cfg.LLM.Provider)
		}
		model, err = openai.New(
			openai.WithToken(cfg.LLM.OpenAIAPIKey),
			openai.WithModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLM.Model),
			ollama.WithServerURL(cfg.LLM.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderBedrock:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.LLM.BedrockRegion),
		)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		client := bedrockruntime.NewFromConfig(awsCfg)
		model, err = bedrock.New(
			bedrock.WithClient(client),
			bedrock.WithModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("create bedrock model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLM.Provider)
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLM.Model,
		now:       time.Now,
	}, nil
}

// Generate runs one pipeline step and returns the raw model text. Transport
// failures and empty responses come back as a *GenerationError; the caller
// decides whether to re-drive the step (titles via operator feedback) or
// surface it (content steps are never auto-retried, silent retry risks
// inconsistent multi-step context).
func (m *Model) Generate(ctx context.Context, step StepKind, gc GenContext) (string, error) {
	prompt := buildPrompt(step, gc, m.now())
	if prompt == "" {
		return "", &GenerationError{Step: step, Err: fmt.Errorf("unknown step kind")}
	}

	response, err := llms.GenerateFromSinglePrompt(ctx, m.llm, prompt,
		llms.WithMaxTokens(MaxTokens(step)),
	)
	if err != nil {
		return "", &GenerationError{Step: step, Err: err}
	}
	if strings.TrimSpace(response) == "" {
		return "", &GenerationError{Step: step, Err: fmt.Errorf("empty response")}
	}
	return response, nil
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}
