package store

import (
	"encoding/json"
	"fmt"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

func encodeJourneyJSON(journey *models.JourneyData) (string, error) {
	if journey == nil {
		return "", fmt.Errorf("journey is nil")
	}
	b, err := json.Marshal(journey)
	if err != nil {
		return "", fmt.Errorf("encode journey: %w", err)
	}
	return string(b), nil
}

func decodeJourneyJSON(dataJSON string) (*models.JourneyData, error) {
	var j models.JourneyData
	if err := json.Unmarshal([]byte(dataJSON), &j); err != nil {
		return nil, fmt.Errorf("decode journey: %w", err)
	}
	return &j, nil
}
