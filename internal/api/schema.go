package api

// payloadSchema is a named JSON schema for one backend response shape.
type payloadSchema struct {
	Name       string
	Definition map[string]any
}

var nullableString = map[string]any{"type": []any{"string", "null"}}

var stringList = map[string]any{
	"type":  "array",
	"items": map[string]any{"type": "string"},
}

var countMap = map[string]any{
	"type":                 "object",
	"additionalProperties": map[string]any{"type": "integer", "minimum": 0},
}

var questionSchema = map[string]any{
	"type":     "object",
	"required": []any{"id"},
	"properties": map[string]any{
		"id":               map[string]any{"type": "integer"},
		"title":            nullableString,
		"url":              nullableString,
		"topic":            nullableString,
		"tags":             map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": "string"}},
		"difficulty":       nullableString,
		"companies":        map[string]any{"type": []any{"array", "null"}, "items": map[string]any{"type": "string"}},
		"task_text":        nullableString,
		"task_html":        nullableString,
		"hint":             nullableString,
		"solution":         nullableString,
		"answer":           nullableString,
		"is_solved":        map[string]any{"type": "boolean"},
		"attempts":         map[string]any{"type": "integer"},
		"avg_time_seconds": map[string]any{"type": []any{"number", "null"}},
	},
}

// catalogSchema describes GET /questions.
var catalogSchema = &payloadSchema{
	Name: "catalog",
	Definition: map[string]any{
		"type":  "array",
		"items": questionSchema,
	},
}

// statsSchema describes GET /stats.
var statsSchema = &payloadSchema{
	Name: "stats",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"total_questions", "solved_questions"},
		"properties": map[string]any{
			"total_questions":      map[string]any{"type": "integer", "minimum": 0},
			"solved_questions":     map[string]any{"type": "integer", "minimum": 0},
			"avg_time_seconds":     map[string]any{"type": []any{"number", "null"}},
			"solved_by_difficulty": countMap,
			"solved_by_topic":      countMap,
			"solved_by_company":    countMap,
			"daily_solved": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []any{"date", "solved"},
					"properties": map[string]any{
						"date":   map[string]any{"type": "string"},
						"solved": map[string]any{"type": "integer", "minimum": 0},
					},
				},
			},
		},
	},
}

// statusSchema describes the {"status": ...} acknowledgements of writes.
var statusSchema = &payloadSchema{
	Name: "status",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"status"},
		"properties": map[string]any{
			"status": map[string]any{"type": "string"},
		},
	},
}

// userSchema describes GET /auth/me and POST /auth/register.
var userSchema = &payloadSchema{
	Name: "user",
	Definition: map[string]any{
		"type":     "object",
		"required": []any{"id", "username"},
		"properties": map[string]any{
			"id":         map[string]any{"type": "integer"},
			"username":   map[string]any{"type": "string"},
			"created_at": nullableString,
		},
	},
}
