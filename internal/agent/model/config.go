package model

// ================ Config ================

type SessionConfig struct {
	TTL string `envconfig:"SESSION_TTL" default:"30m"`
	Context struct {
		MaxTurns int `envconfig:"SESSION_CONTEXT_MAX_TURNS" default:"6"`
	}
}

type ClassifierModelConfig struct {
	Model       string  `envconfig:"CLASSIFIER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"CLASSIFIER_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"CLASSIFIER_TEMPERATURE" default:"0"`
}

type EnricherModelConfig struct {
	Model       string  `envconfig:"ENRICHER_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"ENRICHER_MAX_TOKENS" default:"1000"`
	Temperature float32 `envconfig:"ENRICHER_TEMPERATURE" default:"0.1"`
}

type SpecialistModelConfig struct {
	Model       string  `envconfig:"SPECIALIST_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"SPECIALIST_MAX_TOKENS" default:"2000"`
	Temperature float32 `envconfig:"SPECIALIST_TEMPERATURE" default:"0.2"`
}

type SynthesisModelConfig struct {
	Model       string  `envconfig:"SYNTHESIS_MODEL" default:"gemini-2.5-flash"`
	MaxTokens   int     `envconfig:"SYNTHESIS_MAX_TOKENS" default:"3000"`
	Temperature float32 `envconfig:"SYNTHESIS_TEMPERATURE" default:"0.4"`
}

// QualityConfig tunes the quality gate. Threshold 0.7 is reachable only when
// all three heuristics pass (2/3 < 0.7), so the gate is effectively
// "all checks must hold". MaxRetries bounds the retry edge back into context
// enrichment; on exhaustion the best-scoring response is formatted as-is.
type QualityConfig struct {
	Threshold  float64 `envconfig:"QUALITY_THRESHOLD" default:"0.7"`
	MaxRetries int     `envconfig:"QUALITY_MAX_RETRIES" default:"2"`
}
