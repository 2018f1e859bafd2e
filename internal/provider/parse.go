package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

// stripCodeFence removes a markdown code fence if the model wrapped its
// JSON in one despite the structured-output request.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSuffix(s, "```")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}

// decodeJourney parses the raw model output into a journey and validates
// its shape. Emotion scores are clamped into the documented 1-10 range;
// everything else is accepted as produced.
func decodeJourney(raw string) (*models.JourneyData, error) {
	cleaned := stripCodeFence(raw)
	if cleaned == "" {
		return nil, ErrEmptyResponse
	}
	var data models.JourneyData
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadShape, err)
	}
	if len(data.Stages) == 0 {
		return nil, fmt.Errorf("%w: journey has no stages", ErrBadShape)
	}
	data.IsFallback = false
	for i := range data.Stages {
		if data.Stages[i].EmotionScore < 1 {
			data.Stages[i].EmotionScore = 1
		} else if data.Stages[i].EmotionScore > 10 {
			data.Stages[i].EmotionScore = 10
		}
	}
	return &data, nil
}
