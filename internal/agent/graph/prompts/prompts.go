package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/headhunter-core/server/internal/agent/model"
)

//go:embed template/system_prompt.txt
var systemPrompt string

//go:embed template/classifier_prompt.txt
var classifierPrompt string

//go:embed template/enricher_prompt.txt
var enricherPrompt string

//go:embed template/specialist_candidate.txt
var specialistCandidate string

//go:embed template/specialist_market.txt
var specialistMarket string

//go:embed template/specialist_web.txt
var specialistWeb string

//go:embed template/specialist_general.txt
var specialistGeneral string

//go:embed template/synthesis_prompt.txt
var synthesisPrompt string

//go:embed template/formatter.txt
var formatterTemplate string

// SystemPrompt returns the assistant's standing role description.
func SystemPrompt() string {
	return strings.TrimSpace(systemPrompt)
}

// RenderClassifier renders the classification prompt for one query via the
// Eino prompt component, so prompt callbacks fire.
func RenderClassifier(ctx context.Context, query string) (string, error) {
	content := strings.ReplaceAll(classifierPrompt, "{query}", query)
	return renderThroughCallbacks(ctx, content)
}

// RenderEnricher renders the parameter-extraction prompt.
func RenderEnricher(ctx context.Context, query string, qt model.QueryType) (string, error) {
	content := strings.NewReplacer(
		"{query}", query,
		"{query_type}", qt.String(),
	).Replace(enricherPrompt)
	return renderThroughCallbacks(ctx, content)
}

// SpecialistInstructions returns the role instruction block for a category.
func SpecialistInstructions(qt model.QueryType) string {
	switch qt {
	case model.QueryCandidateSearch:
		return strings.TrimSpace(specialistCandidate)
	case model.QueryMarketAnalysis:
		return strings.TrimSpace(specialistMarket)
	case model.QueryWebResearch:
		return strings.TrimSpace(specialistWeb)
	default:
		return strings.TrimSpace(specialistGeneral)
	}
}

// RenderSpecialist combines the role instructions with the user query and the
// extracted search context.
func RenderSpecialist(ctx context.Context, qt model.QueryType, query, extractedInfo string) (string, error) {
	var sb strings.Builder
	sb.WriteString(SpecialistInstructions(qt))
	sb.WriteString("\n\n사용자 질문: ")
	sb.WriteString(query)
	if strings.TrimSpace(extractedInfo) != "" {
		sb.WriteString("\n\n추출된 검색 조건:\n")
		sb.WriteString(extractedInfo)
	}
	return renderThroughCallbacks(ctx, sb.String())
}

// RenderSynthesis returns the synthesis instruction appended after the
// accumulated conversation.
func RenderSynthesis(ctx context.Context) (string, error) {
	return renderThroughCallbacks(ctx, strings.TrimSpace(synthesisPrompt))
}

// FormatFinal wraps a synthesized answer in the decorative response frame.
// Pure string work, no model call.
func FormatFinal(response string) string {
	return strings.TrimSpace(strings.ReplaceAll(formatterTemplate, "{response}", response))
}

// renderThroughCallbacks pushes a prepared prompt through the Eino prompt
// component with a messages placeholder, which emits prompt callbacks without
// the component touching the braces inside the content.
func renderThroughCallbacks(ctx context.Context, content string) (string, error) {
	tpl := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("prepared_messages", false),
	)
	msgs, err := tpl.Format(ctx, map[string]any{
		"prepared_messages": []*schema.Message{schema.UserMessage(content)},
	})
	if err != nil {
		return "", fmt.Errorf("prompt callbacks: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("prompt callbacks: empty result")
	}
	return msgs[0].Content, nil
}
