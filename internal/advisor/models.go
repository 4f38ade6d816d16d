package advisor

import "time"

// Request describes one manual migration the model is asked about
type Request struct {
	RuleID      string
	Title       string
	Severity    string
	FilePath    string
	LineNumber  int
	MatchedText string
	Explanation string
	Snippet     string
	Occurrences int
}

// Guidance is the parsed model answer for one rule
type Guidance struct {
	RuleID      string   `json:"rule_id"`
	Summary     string   `json:"summary"`
	Steps       []string `json:"steps"`
	Replacement string   `json:"replacement"`
	Caveats     string   `json:"caveats"`
	TokensUsed  int      `json:"tokens_used"`
}

// Summary aggregates one advisor run over a report
type Summary struct {
	Model           string        `json:"model"`
	Candidates      int           `json:"candidates"`
	RulesRequested  int           `json:"rules_requested"`
	RulesAdvised    int           `json:"rules_advised"`
	FindingsAdvised int           `json:"findings_advised"`
	Skipped         int           `json:"skipped"`
	TotalTokens     int           `json:"total_tokens"`
	Duration        time.Duration `json:"duration"`
	Errors          []string      `json:"errors,omitempty"`
}

// TokenPricing contains pricing per million tokens for a model
type TokenPricing struct {
	InputPerMillion  float64
	OutputPerMillion float64
}

// CostEstimate is shown before any request is sent
type CostEstimate struct {
	Model         string  `json:"model"`
	Requests      int     `json:"requests"`
	InputTokens   int     `json:"input_tokens"`
	OutputTokens  int     `json:"output_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// ModelPricing returns pricing for a model
func ModelPricing(model string) TokenPricing {
	switch model {
	case "haiku", "claude-3-5-haiku-latest":
		return TokenPricing{InputPerMillion: 0.8, OutputPerMillion: 4.0}
	case "opus", "claude-opus-4-20250514":
		return TokenPricing{InputPerMillion: 15.0, OutputPerMillion: 75.0}
	default: // sonnet
		return TokenPricing{InputPerMillion: 3.0, OutputPerMillion: 15.0}
	}
}

// EstimateCost estimates the cost of advising on the given number of rules
func EstimateCost(model string, requests int) *CostEstimate {
	// Averages measured on the guidance prompt
	const (
		inputTokens  = 1100
		outputTokens = 350
	)

	pricing := ModelPricing(model)
	estimate := &CostEstimate{
		Model:        model,
		Requests:     requests,
		InputTokens:  requests * inputTokens,
		OutputTokens: requests * outputTokens,
	}
	estimate.EstimatedCost = float64(estimate.InputTokens)/1e6*pricing.InputPerMillion +
		float64(estimate.OutputTokens)/1e6*pricing.OutputPerMillion
	return estimate
}
