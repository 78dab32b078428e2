package model

import (
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
)

func TestComputeCost(t *testing.T) {
	usage := &schema.TokenUsage{PromptTokens: 500_000, CompletionTokens: 200_000}
	in, out, total := ComputeCost(usage, ResolvePricing("gemini-2.5-flash"))
	assert.InDelta(t, 0.15, in, 1e-9)
	assert.InDelta(t, 0.50, out, 1e-9)
	assert.InDelta(t, 0.65, total, 1e-9)
}

func TestComputeCostNilUsage(t *testing.T) {
	in, out, total := ComputeCost(nil, ResolvePricing("gemini-2.5-flash"))
	assert.Zero(t, in)
	assert.Zero(t, out)
	assert.Zero(t, total)
}

func TestResolvePricingUnknownModel(t *testing.T) {
	p := ResolvePricing("some-future-model")
	assert.Zero(t, p.InputPerM)
	assert.Zero(t, p.OutputPerM)
}
