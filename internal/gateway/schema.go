package gateway

import "github.com/abhisek/lasi/internal/llm"

// FormatSchema is the reply shape for formatText.
var FormatSchema = &llm.Schema{
	Name:        "formatted-text",
	Description: "The user's text with only formatting changed",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "The reformatted text, every word kept",
			},
		},
		"required":             []any{"text"},
		"additionalProperties": false,
	},
}

// QuestionsSchema is the reply shape for generateQuestions.
var QuestionsSchema = &llm.Schema{
	Name:        "comprehension-questions",
	Description: "Reading comprehension questions about one text fragment",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "Question texts only, no answers",
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// BatchQuestionsSchema is the reply shape for one batch group.
var BatchQuestionsSchema = &llm.Schema{
	Name:        "comprehension-questions-batch",
	Description: "Reading comprehension questions for several numbered fragments",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"fragments": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"index": map[string]any{
							"type":        "integer",
							"description": "The fragment number from the prompt",
						},
						"questions": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required":             []any{"index", "questions"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"fragments"},
		"additionalProperties": false,
	},
}

// EvaluationSchema is the reply shape for evaluate.
var EvaluationSchema = &llm.Schema{
	Name:        "answer-evaluation",
	Description: "Verdict on a child's answer with a supporting quote",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"feedback": map[string]any{
				"type":        "string",
				"description": "One short sentence about the answer",
			},
			"correct_snippet": map[string]any{
				"type":        "string",
				"description": "Short verbatim quote from the text proving the correct answer",
			},
			"correct": map[string]any{
				"type": "boolean",
			},
		},
		"required":             []any{"feedback", "correct_snippet", "correct"},
		"additionalProperties": false,
	},
}
