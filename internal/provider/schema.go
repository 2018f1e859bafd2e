package provider

import "google.golang.org/genai"

var stageRequiredFields = []string{
	"stageName", "goal", "userAction", "touchpoints", "thinking",
	"feeling", "painPoints", "designOpportunities", "technicalSupport", "emotionScore",
}

// geminiJourneySchema describes the journey shape for Gemini's native
// structured output.
func geminiJourneySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       {Type: genai.TypeString, Description: "A catchy title for this specific user journey scenario."},
			"summary":     {Type: genai.TypeString, Description: "A brief 1-2 sentence overview of the scenario."},
			"personaName": {Type: genai.TypeString, Description: "Name and brief archetype of the persona."},
			"stages": {
				Type:        genai.TypeArray,
				Description: "The chronological steps of the user journey.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"stageName":           {Type: genai.TypeString, Description: "Name of the phase."},
						"goal":                {Type: genai.TypeString, Description: "User's intent."},
						"userAction":          {Type: genai.TypeString, Description: "What the user is physically doing."},
						"touchpoints":         {Type: genai.TypeString, Description: "Devices, apps, or physical objects."},
						"thinking":            {Type: genai.TypeString, Description: "Internal monologue."},
						"feeling":             {Type: genai.TypeString, Description: "Emotional state."},
						"painPoints":          {Type: genai.TypeString, Description: "Frictions or difficulties."},
						"designOpportunities": {Type: genai.TypeString, Description: "UX insights."},
						"technicalSupport":    {Type: genai.TypeString, Description: "Technical implementation support points."},
						"emotionScore":        {Type: genai.TypeInteger, Description: "1-10 score."},
					},
					Required: stageRequiredFields,
				},
			},
		},
		Required: []string{"title", "summary", "personaName", "stages"},
	}
}

// openaiJourneySchema describes the same shape as a JSON schema document for
// the OpenAI-compatible structured-outputs response format. Strict mode
// requires additionalProperties to be false at every object level.
func openaiJourneySchema() map[string]any {
	stringProp := func() map[string]any { return map[string]any{"type": "string"} }
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":       stringProp(),
			"summary":     stringProp(),
			"personaName": stringProp(),
			"stages": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"stageName":           stringProp(),
						"goal":                stringProp(),
						"userAction":          stringProp(),
						"touchpoints":         stringProp(),
						"thinking":            stringProp(),
						"feeling":             stringProp(),
						"painPoints":          stringProp(),
						"designOpportunities": stringProp(),
						"technicalSupport":    stringProp(),
						"emotionScore":        map[string]any{"type": "integer"},
					},
					"required":             stageRequiredFields,
					"additionalProperties": false,
				},
			},
		},
		"required":             []string{"title", "summary", "personaName", "stages"},
		"additionalProperties": false,
	}
}
