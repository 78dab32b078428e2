package parsers

import (
	"fmt"
	"strings"

	"github.com/headhunter-core/server/internal/agent/model"
)

// ParseClassification maps a raw classifier completion to a category.
// The classifier answers in a loose "카테고리: ... / 의도: ..." layout; nothing
// enforces that shape, so parsing is keyword-based with fixed priority and the
// whole reply is kept as the rationale. The result is always in enum.
func ParseClassification(raw string) (*model.Classification, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("empty classifier response")
	}
	return &model.Classification{
		Type:      model.ParseQueryType(trimmed),
		Rationale: trimmed,
	}, nil
}
