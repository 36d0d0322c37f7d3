package llm

// model is one catalog entry. Prices are USD per million tokens.
type model struct {
	provider string
	alias    string // short name accepted in config, may be empty
	id       string
	inPerM   float64
	outPerM  float64
}

// catalog lists the models Lasi ships defaults and prices for. Any other
// model ID is passed through to the provider unpriced.
var catalog = []model{
	{"anthropic", "claude-haiku", "claude-haiku-4-5-20251001", 1, 5},
	{"anthropic", "claude-sonnet", "claude-sonnet-4-20250514", 3, 15},
	{"anthropic", "", "claude-haiku-4-5", 1, 5},
	{"anthropic", "", "claude-sonnet-4-5", 3, 15},
	{"anthropic", "", "claude-sonnet-4-5-20250929", 3, 15},
	{"anthropic", "", "claude-3-5-haiku-20241022", 0.8, 4},

	{"openai", "", "gpt-4o", 2.5, 10},
	{"openai", "", "gpt-4o-mini", 0.15, 0.6},
	{"openai", "", "gpt-4.1-mini", 0.4, 1.6},
	{"openai", "", "gpt-4.1-nano", 0.1, 0.4},
	{"openai", "", "gpt-5-mini", 0.25, 2},
	{"openai", "", "gpt-5-nano", 0.05, 0.4},

	{"gemini", "gemini-flash", "gemini-2.5-flash", 0.3, 2.5},
	{"gemini", "gemini-flash-lite", "gemini-2.5-flash-lite", 0.1, 0.4},
	{"gemini", "gemini-pro", "gemini-2.5-pro", 1.25, 10},
	{"gemini", "", "gemini-2.0-flash", 0.1, 0.4},
	{"gemini", "", "gemini-2.0-flash-lite", 0.075, 0.3},

	{"deepseek", "", "deepseek-chat", 0.27, 1.1},
}

// resolveModel maps a configured name to the provider's model ID.
// Aliases only resolve within their own provider.
func resolveModel(provider, name string) string {
	for _, m := range catalog {
		if m.provider == provider && m.alias != "" && m.alias == name {
			return m.id
		}
	}
	return name
}

// ModelCost is per-million-token pricing in USD.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost prices a call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// LookupCost returns the pricing for a model ID as recorded in the event
// log, or nil when the model is not in the catalog. OpenRouter IDs carry
// a vendor prefix ("google/gemini-2.5-flash") which is ignored.
func LookupCost(modelID string) *ModelCost {
	id := modelID
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == '/' {
			id = id[i+1:]
			break
		}
	}
	for _, m := range catalog {
		if m.id == id {
			return &ModelCost{InputPerMTok: m.inPerM, OutputPerMTok: m.outPerM}
		}
	}
	return nil
}
