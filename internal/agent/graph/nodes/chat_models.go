package nodes

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/headhunter-core/server/internal/agent/model"
	logx "github.com/headhunter-core/server/pkg/logger"
)

// ChatModelConfig holds the configuration for chat model creation.
type ChatModelConfig struct {
	APIKey     string
	BaseURL    string
	Classifier *model.ClassifierModelConfig
	Enricher   *model.EnricherModelConfig
	Specialist *model.SpecialistModelConfig
	Synthesis  *model.SynthesisModelConfig
}

// ChatModels holds one model instance per graph stage. Each specialist gets
// its own instance because tool binding is per-instance: the candidate
// specialist must only ever see candidate tools, and so on.
type ChatModels struct {
	Classifier *gemini.ChatModel
	Enricher   *gemini.ChatModel
	Synthesis  *gemini.ChatModel

	CandidateSpecialist *gemini.ChatModel
	MarketSpecialist    *gemini.ChatModel
	WebResearcher       *gemini.ChatModel
	GeneralAssistant    *gemini.ChatModel

	ClassifierModelName string
	EnricherModelName   string
	SpecialistModelName string
	SynthesisModelName  string
}

// NewChatModels creates every stage model over one shared Gemini client.
func NewChatModels(ctx context.Context, config ChatModelConfig) (*ChatModels, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = config.BaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}

	classifier, err := newStageModel(ctx, client, config.Classifier.Model, config.Classifier.Temperature, config.Classifier.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating classifier model: %w", err)
	}
	enricher, err := newStageModel(ctx, client, config.Enricher.Model, config.Enricher.Temperature, config.Enricher.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating enricher model: %w", err)
	}
	synthesis, err := newStageModel(ctx, client, config.Synthesis.Model, config.Synthesis.Temperature, config.Synthesis.MaxTokens)
	if err != nil {
		return nil, fmt.Errorf("error creating synthesis model: %w", err)
	}

	specialists := make([]*gemini.ChatModel, 4)
	for i := range specialists {
		specialists[i], err = newStageModel(ctx, client, config.Specialist.Model, config.Specialist.Temperature, config.Specialist.MaxTokens)
		if err != nil {
			return nil, fmt.Errorf("error creating specialist model: %w", err)
		}
	}

	return &ChatModels{
		Classifier:          classifier,
		Enricher:            enricher,
		Synthesis:           synthesis,
		CandidateSpecialist: specialists[0],
		MarketSpecialist:    specialists[1],
		WebResearcher:       specialists[2],
		GeneralAssistant:    specialists[3],
		ClassifierModelName: config.Classifier.Model,
		EnricherModelName:   config.Enricher.Model,
		SpecialistModelName: config.Specialist.Model,
		SynthesisModelName:  config.Synthesis.Model,
	}, nil
}

func newStageModel(ctx context.Context, client *genai.Client, modelName string, temperature float32, maxTokens int) (*gemini.ChatModel, error) {
	return gemini.NewChatModel(ctx, &gemini.Config{
		Client:      client,
		Model:       modelName,
		Temperature: &temperature,
		MaxTokens:   &maxTokens,
		ThinkingConfig: &genai.ThinkingConfig{
			IncludeThoughts: true,
			ThinkingBudget:  genai.Ptr(int32(2000)),
		},
	})
}

// SpecialistFor maps a query category to its dedicated model instance.
func (cm *ChatModels) SpecialistFor(qt model.QueryType) *gemini.ChatModel {
	switch qt {
	case model.QueryCandidateSearch:
		return cm.CandidateSpecialist
	case model.QueryMarketAnalysis:
		return cm.MarketSpecialist
	case model.QueryWebResearch:
		return cm.WebResearcher
	default:
		return cm.GeneralAssistant
	}
}

// BindSpecialistTools binds a category's tool subset to that category's model
// instance.
func (cm *ChatModels) BindSpecialistTools(qt model.QueryType, toolInfos []*schema.ToolInfo) error {
	if err := cm.SpecialistFor(qt).BindTools(toolInfos); err != nil {
		logx.Error().Err(err).Str("query_type", qt.String()).Msg("Failed to bind tools")
		return fmt.Errorf("failed to bind tools for %s: %w", qt, err)
	}
	logx.Debug().Str("query_type", qt.String()).Int("tools", len(toolInfos)).Msg("Bound specialist tools")
	return nil
}
