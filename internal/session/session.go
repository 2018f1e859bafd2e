// Package session implements the generation lifecycle controller.
//
// A Session owns one journey workspace: the prompt, the four context
// variables, per-provider API keys, uploaded background material, the
// current journey and the generation state machine. At most one generation
// is in flight per session; a newer submission supersedes an older one and
// the superseded result is discarded unseen. Variable changes after the
// first successful generation schedule a debounced regeneration.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BTreeMap/JourneyMap/internal/models"
	"github.com/BTreeMap/JourneyMap/internal/prompt"
	"github.com/BTreeMap/JourneyMap/internal/provider"
)

// Status is the generation state of a session.
type Status string

const (
	// StatusIdle means no generation has been requested yet.
	StatusIdle Status = "idle"
	// StatusPending means a generation is in flight.
	StatusPending Status = "pending"
	// StatusSuccess means the session holds a generated journey.
	StatusSuccess Status = "success"
	// StatusError means the last generation attempt failed.
	StatusError Status = "error"
)

// ErrSessionClosed is returned by operations on a closed session.
var ErrSessionClosed = errors.New("session is closed")

// Generator runs one journey generation against a named provider.
// *provider.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, p models.Provider, req provider.GenerateRequest) (*models.JourneyData, error)
}

// Recorder persists successful generations. Saves are best-effort: a
// failing recorder never fails the generation.
type Recorder interface {
	SaveJourney(ctx context.Context, sessionID string, p models.Provider, journey *models.JourneyData) error
}

// Snapshot is a point-in-time copy of the observable session state. The
// journey is deep-copied, so holders can read it without racing edits.
type Snapshot struct {
	ID         string                  `json:"id"`
	Status     Status                  `json:"status"`
	Message    string                  `json:"message,omitempty"`
	NeedsKey   bool                    `json:"needsKey,omitempty"`
	Provider   models.Provider         `json:"provider"`
	Variables  models.ContextVariables `json:"variables"`
	Prompt     string                  `json:"prompt,omitempty"`
	Journey    *models.JourneyData     `json:"journey,omitempty"`
	Generation uint64                  `json:"generation"`
}

// Opts holds the configuration for a Session.
type Opts struct {
	Generator       Generator
	Recorder        Recorder
	DebounceDelay   time.Duration
	FallbackEnabled bool
	DefaultProvider models.Provider
	// DefaultKeys seeds per-provider API keys, typically from server
	// configuration. Keys set on the session itself take precedence.
	DefaultKeys map[models.Provider]string
}

// Option configures Opts.
type Option func(*Opts)

// WithGenerator sets the generation backend.
func WithGenerator(g Generator) Option {
	return func(o *Opts) { o.Generator = g }
}

// WithRecorder sets the journey history recorder.
func WithRecorder(r Recorder) Option {
	return func(o *Opts) { o.Recorder = r }
}

// WithDebounceDelay sets the variable-change regeneration window.
func WithDebounceDelay(d time.Duration) Option {
	return func(o *Opts) { o.DebounceDelay = d }
}

// WithFallback enables substituting the demo dataset when generation fails.
func WithFallback(enabled bool) Option {
	return func(o *Opts) { o.FallbackEnabled = enabled }
}

// WithDefaultProvider sets the provider a new session starts on.
func WithDefaultProvider(p models.Provider) Option {
	return func(o *Opts) { o.DefaultProvider = p }
}

// WithDefaultKeys seeds per-provider API keys for every new session.
func WithDefaultKeys(keys map[models.Provider]string) Option {
	return func(o *Opts) { o.DefaultKeys = keys }
}

// Session is a single journey workspace. All methods are safe for
// concurrent use.
type Session struct {
	id   string
	opts Opts

	mu           sync.Mutex
	status       Status
	message      string
	needsKey     bool
	provider     models.Provider
	variables    models.ContextVariables
	apiKeys      map[models.Provider]string
	background   string
	prompt       string
	journey      *models.JourneyData
	hasGenerated bool
	// generation is bumped on every submission and cancellation; an
	// in-flight result is committed only if its token still matches.
	generation uint64
	cancel     context.CancelFunc
	debounce   *debouncer
	watchers   map[chan Snapshot]struct{}
	closed     bool
}

// New creates a session with the given id.
func New(id string, options ...Option) *Session {
	opts := Opts{
		DebounceDelay:   DefaultDebounceDelay,
		DefaultProvider: models.ProviderGemini,
	}
	for _, opt := range options {
		opt(&opts)
	}
	apiKeys := make(map[models.Provider]string, len(opts.DefaultKeys))
	for p, key := range opts.DefaultKeys {
		if key != "" {
			apiKeys[p] = key
		}
	}
	return &Session{
		id:        id,
		opts:      opts,
		status:    StatusIdle,
		provider:  opts.DefaultProvider,
		variables: models.DefaultVariables(),
		apiKeys:   apiKeys,
		debounce:  newDebouncer(opts.DebounceDelay),
		watchers:  make(map[chan Snapshot]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot returns the current observable state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		ID:         s.id,
		Status:     s.status,
		Message:    s.message,
		NeedsKey:   s.needsKey,
		Provider:   s.provider,
		Variables:  s.variables,
		Prompt:     s.prompt,
		Journey:    s.journey.Clone(),
		Generation: s.generation,
	}
}

func (s *Session) notifyLocked() {
	if len(s.watchers) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for ch := range s.watchers {
		select {
		case ch <- snap:
		default:
			// Slow watcher; drop the update rather than block the session.
		}
	}
}

// Watch registers a watcher. Every state change is delivered as a snapshot
// on the returned channel; slow consumers miss intermediate updates. The
// returned stop function unregisters the watcher and closes the channel.
func (s *Session) Watch() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 16)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.watchers[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			s.mu.Lock()
			if _, ok := s.watchers[ch]; ok {
				delete(s.watchers, ch)
				close(ch)
			}
			s.mu.Unlock()
		})
	}
	return ch, stop
}

// Submit starts a generation for the given prompt, superseding any
// generation already in flight. Validation failures surface as an error
// state with a user-facing message and never reach the provider.
func (s *Session) Submit(promptText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.submitLocked(promptText)
}

func (s *Session) submitLocked(promptText string) error {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		s.status = StatusError
		s.message = models.MsgPromptRequired
		s.notifyLocked()
		return models.ErrEmptyPrompt
	}
	s.prompt = promptText

	apiKey := s.apiKeys[s.provider]
	if apiKey == "" {
		s.status = StatusError
		s.message = models.MsgNeedAPIKey(s.provider)
		s.needsKey = true
		s.notifyLocked()
		return models.ErrMissingAPIKey
	}

	// Supersede any in-flight generation. Its result will fail the token
	// check below and be discarded without ever surfacing.
	s.generation++
	token := s.generation
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.status = StatusPending
	s.message = ""
	s.needsKey = false
	s.notifyLocked()

	req := provider.GenerateRequest{
		Prompt:     promptText,
		Variables:  s.variables,
		APIKey:     apiKey,
		Background: s.background,
	}
	p := s.provider

	slog.Info("session generation started", "sessionID", s.id, "provider", p, "generation", token)
	go s.runGeneration(ctx, token, p, req)
	return nil
}

func (s *Session) runGeneration(ctx context.Context, token uint64, p models.Provider, req provider.GenerateRequest) {
	data, err := s.opts.Generator.Generate(ctx, p, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || token != s.generation {
		// Superseded or cancelled; the result is stale regardless of
		// whether the transport honoured the context.
		slog.Debug("session generation discarded as stale", "sessionID", s.id, "generation", token)
		return
	}
	s.cancel = nil

	if err != nil {
		if s.opts.FallbackEnabled {
			slog.Warn("session generation failed, using fallback dataset", "sessionID", s.id, "provider", p, "error", err)
			s.journey = models.FallbackJourney()
			s.status = StatusSuccess
			s.hasGenerated = true
			s.message = "生成失败，已展示离线演示数据。"
			s.notifyLocked()
			return
		}
		slog.Error("session generation failed", "sessionID", s.id, "provider", p, "error", err)
		s.status = StatusError
		s.message = err.Error()
		s.notifyLocked()
		return
	}

	slog.Info("session generation succeeded", "sessionID", s.id, "provider", p, "stages", len(data.Stages))
	s.journey = data
	s.status = StatusSuccess
	s.hasGenerated = true
	s.message = ""
	s.notifyLocked()

	if s.opts.Recorder != nil {
		saved := data.Clone()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.opts.Recorder.SaveJourney(ctx, s.id, p, saved); err != nil {
				slog.Warn("session journey save failed", "sessionID", s.id, "error", err)
			}
		}()
	}
}

// Cancel aborts the in-flight generation, if any. Cancelling an idle
// session is a no-op. The session lands in an error state carrying the
// cancellation notice; a previously generated journey stays available for
// display.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPending {
		return
	}
	slog.Info("session generation cancelled", "sessionID", s.id, "generation", s.generation)
	// Invalidate the in-flight token so the result is discarded even if
	// the backend ignores the context.
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.status = StatusError
	s.message = models.MsgCancelled
	s.notifyLocked()
}

// SetVariable assigns a context variable. After the first successful
// generation a change schedules a debounced regeneration of the current
// prompt; rapid changes coalesce into one run. No regeneration is
// scheduled while a generation is already in flight.
func (s *Session) SetVariable(axis, value string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if err := s.variables.Set(axis, value); err != nil {
		s.mu.Unlock()
		return err
	}
	shouldRegen := s.hasGenerated && s.prompt != "" && s.status != StatusPending
	s.notifyLocked()
	s.mu.Unlock()

	if shouldRegen {
		s.debounce.Trigger(s.regenerate)
	}
	return nil
}

// regenerate re-runs the current prompt after the debounce window. The
// guard conditions are re-validated here because the session may have
// changed while the timer was pending; in particular a generation started
// inside the window must not be superseded.
func (s *Session) regenerate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.hasGenerated || s.prompt == "" || s.status == StatusPending {
		return
	}
	slog.Debug("session debounced regeneration firing", "sessionID", s.id)
	_ = s.submitLocked(s.prompt)
}

// SelectProvider switches the active provider. The switch alone does not
// trigger a regeneration.
func (s *Session) SelectProvider(p models.Provider) error {
	if !models.IsValidProvider(p) {
		return models.ErrInvalidProvider
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.provider = p
	s.needsKey = s.apiKeys[p] == ""
	s.notifyLocked()
	return nil
}

// SetAPIKey stores the key for a provider. Supplying the key the session
// was blocked on clears the needs-key state.
func (s *Session) SetAPIKey(p models.Provider, key string) error {
	if !models.IsValidProvider(p) {
		return models.ErrInvalidProvider
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.apiKeys[p] = key
	if p == s.provider && key != "" && s.needsKey {
		s.needsKey = false
		if s.message == models.MsgNeedAPIKey(p) {
			s.message = ""
		}
	}
	s.notifyLocked()
	return nil
}

// UploadBackground appends pasted text or an uploaded file to the
// background material included in subsequent generations.
func (s *Session) UploadBackground(filename, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.background = prompt.AppendBackgroundFile(s.background, filename, content)
	s.notifyLocked()
	return nil
}

// Journey returns a deep copy of the current journey, or ErrNoJourney if
// none has been generated.
func (s *Session) Journey() (*models.JourneyData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journey == nil {
		return nil, models.ErrNoJourney
	}
	return s.journey.Clone(), nil
}

// EditStageField sets one free-text field of one stage. Edits are applied
// copy-on-write so watchers holding earlier snapshots are unaffected.
func (s *Session) EditStageField(index int, field, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.journey == nil {
		return models.ErrNoJourney
	}
	if index < 0 || index >= len(s.journey.Stages) {
		return models.ErrStageIndex
	}
	next := s.journey.Clone()
	if err := next.Stages[index].SetField(field, value); err != nil {
		return err
	}
	s.journey = next
	s.notifyLocked()
	return nil
}

// AddStage appends a placeholder stage and returns its index.
func (s *Session) AddStage() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrSessionClosed
	}
	if s.journey == nil {
		return 0, models.ErrNoJourney
	}
	next := s.journey.Clone()
	next.Stages = append(next.Stages, models.NewPlaceholderStage())
	s.journey = next
	s.notifyLocked()
	return len(next.Stages) - 1, nil
}

// DeleteStage removes the stage at index. A journey always keeps at least
// one stage.
func (s *Session) DeleteStage(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.journey == nil {
		return models.ErrNoJourney
	}
	if index < 0 || index >= len(s.journey.Stages) {
		return models.ErrStageIndex
	}
	if len(s.journey.Stages) == 1 {
		return models.ErrLastStage
	}
	next := s.journey.Clone()
	next.Stages = append(next.Stages[:index], next.Stages[index+1:]...)
	s.journey = next
	s.notifyLocked()
	return nil
}

// Close cancels any in-flight generation, stops the debounce timer and
// closes all watcher channels. The session rejects further mutations.
func (s *Session) Close() {
	s.debounce.Stop()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	for ch := range s.watchers {
		close(ch)
	}
	s.watchers = make(map[chan Snapshot]struct{})
	slog.Debug("session closed", "sessionID", s.id)
}
