package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

// InMemoryStore keeps journey history in memory. Used by tests and by
// deployments that run without a database.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []JourneyRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveJourney appends one generation result for a session.
func (s *InMemoryStore) SaveJourney(ctx context.Context, sessionID string, p models.Provider, journey *models.JourneyData) error {
	rec, err := newJourneyRecord(sessionID, p, journey)
	if err != nil {
		slog.Error("InMemoryStore SaveJourney encode failed", "error", err, "sessionID", sessionID)
		return err
	}
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	slog.Debug("InMemoryStore SaveJourney succeeded", "sessionID", sessionID, "id", rec.ID)
	return nil
}

// ListJourneys returns records for a session, most recent first.
func (s *InMemoryStore) ListJourneys(ctx context.Context, sessionID string, limit int) ([]JourneyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []JourneyRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].SessionID != sessionID {
			continue
		}
		out = append(out, s.records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	slog.Debug("InMemoryStore ListJourneys succeeded", "sessionID", sessionID, "count", len(out))
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }

// newJourneyRecord builds a record with a fresh id and timestamp.
func newJourneyRecord(sessionID string, p models.Provider, journey *models.JourneyData) (JourneyRecord, error) {
	dataJSON, err := encodeJourneyJSON(journey)
	if err != nil {
		return JourneyRecord{}, err
	}
	return JourneyRecord{
		ID:          uuid.NewString(),
		SessionID:   sessionID,
		Provider:    p,
		Title:       journey.Title,
		PersonaName: journey.PersonaName,
		DataJSON:    dataJSON,
		IsFallback:  journey.IsFallback,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
