// Package session owns the lifecycle of consultation sessions: creation,
// per-session serialized stepping, idle expiry, and archival of finished
// sessions.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"marketnerd/internal/campaign"
	"marketnerd/internal/config"
	"marketnerd/internal/consultation"
	"marketnerd/internal/logging"
)

// TurnResult is what one user turn produced.
type TurnResult struct {
	SessionID string

	// Type is "question", "ready" or "failed".
	Type string

	// Question is set for Type "question".
	Question string

	// Request is the campaign input, set for Type "ready".
	Request *campaign.Request

	// Reason is set for Type "failed".
	Reason string

	// State is a defensive copy of the session after the turn.
	State *consultation.State
}

const (
	TurnQuestion = "question"
	TurnReady    = "ready"
	TurnFailed   = "failed"
)

// entry pairs a session with its own lock so concurrent messages to the
// same session serialize while distinct sessions proceed in parallel.
type entry struct {
	mu         sync.Mutex
	state      *consultation.State
	lastActive time.Time
	archived   bool
}

// Stats is a point-in-time view of the registry.
type Stats struct {
	Active    int
	Completed int
	Failed    int
	Created   int
	Expired   int
}

// Manager is the registry of live sessions.
type Manager struct {
	machine *consultation.Machine
	ccfg    config.ConsultationConfig
	scfg    config.SessionConfig
	archive *Archive // nil disables archival

	mu      sync.RWMutex
	entries map[string]*entry
	created int
	expired int

	log *logging.Logger
}

// NewManager builds a manager. archive may be nil.
func NewManager(machine *consultation.Machine, ccfg config.ConsultationConfig, scfg config.SessionConfig, archive *Archive) *Manager {
	return &Manager{
		machine: machine,
		ccfg:    ccfg,
		scfg:    scfg,
		archive: archive,
		entries: make(map[string]*entry),
		log:     logging.Get(logging.CategorySession),
	}
}

// Create opens a new session for the given first message and runs the first
// turn, returning the session id together with the first result.
func (m *Manager) Create(ctx context.Context, initialInput string) (string, *TurnResult, error) {
	id := uuid.NewString()

	e := &entry{lastActive: time.Now()}
	m.mu.Lock()
	e.state = consultation.NewState(id, initialInput, m.ccfg.MaxQuestions, m.ccfg.MaxValidationRetries)
	m.entries[id] = e
	m.created++
	m.mu.Unlock()

	m.log.Info("session %s created", id)

	res, err := m.step(ctx, e, id, "")
	if err != nil {
		return id, nil, err
	}
	return id, res, nil
}

// UpdateConsultationConfig applies a reloaded consultation section. New
// sessions pick up the limits; live sessions keep the ones they started
// with.
func (m *Manager) UpdateConsultationConfig(ccfg config.ConsultationConfig) {
	m.mu.Lock()
	m.ccfg = ccfg
	m.mu.Unlock()
	m.log.Info("consultation limits updated: maxQuestions=%d retries=%d",
		ccfg.MaxQuestions, ccfg.MaxValidationRetries)
}

// Submit feeds one user message into an existing session.
func (m *Manager) Submit(ctx context.Context, id, message string) (*TurnResult, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	return m.step(ctx, e, id, message)
}

// Get returns a copy of the session state.
func (m *Manager) Get(id string) (*consultation.State, error) {
	e, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone(), nil
}

// Discard removes a session without archiving it.
func (m *Manager) Discard(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("%w: %s", consultation.ErrSessionNotFound, id)
	}
	delete(m.entries, id)
	m.log.Info("session %s discarded", id)
	return nil
}

func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", consultation.ErrSessionNotFound, id)
	}
	return e, nil
}

// step serializes on the entry lock, advances the machine, and translates
// the machine turn into a TurnResult.
func (m *Manager) step(ctx context.Context, e *entry, id, message string) (*TurnResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, turn, err := m.machine.Step(ctx, e.state, message)
	if err != nil {
		var corrupted *consultation.CorruptedStateError
		if turn != nil && turn.Stage == consultation.StageFailed && errors.As(err, &corrupted) {
			// The machine already moved the session to failed; keep that.
			e.state = next
			e.lastActive = time.Now()
			m.log.Error("session %s corrupted: %v", id, err)
			m.archiveLocked(e, id)
			return m.result(id, e, turn), nil
		}
		return nil, err
	}

	e.state = next
	e.lastActive = time.Now()

	if next.Stage.Terminal() {
		m.log.Info("session %s reached %s after %d questions", id, next.Stage, next.QuestionCount)
		m.archiveLocked(e, id)
	}
	return m.result(id, e, turn), nil
}

// result builds the caller-facing TurnResult. Caller holds e.mu.
func (m *Manager) result(id string, e *entry, turn *consultation.Turn) *TurnResult {
	res := &TurnResult{SessionID: id, State: e.state.Clone()}
	switch {
	case turn.Stage == consultation.StageFailed:
		res.Type = TurnFailed
		res.Reason = turn.Reason
	case turn.Stage == consultation.StageCompleted:
		res.Type = TurnReady
		req, err := campaign.FromState(e.state)
		if err != nil {
			res.Type = TurnFailed
			res.Reason = err.Error()
			break
		}
		res.Request = req
	default:
		res.Type = TurnQuestion
		if turn.Question != nil {
			res.Question = turn.Question.Text
		}
	}
	return res
}

// archiveLocked persists a terminal session. Caller holds e.mu.
func (m *Manager) archiveLocked(e *entry, id string) {
	if m.archive == nil || e.archived {
		return
	}
	if err := m.archive.Save(e.state); err != nil {
		m.log.Error("session %s archive failed: %v", id, err)
		return
	}
	e.archived = true
}

// StartSweeper launches the idle-expiry loop. It stops when ctx is
// cancelled.
func (m *Manager) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(m.scfg.CleanupInterval())
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.sweep(time.Now())
			}
		}
	}()
}

// sweep removes sessions idle longer than the configured timeout. Terminal
// sessions were archived when they finished; live ones are archived in
// whatever stage they stalled at so the transcript is not lost.
//
// The registry lock is never held while waiting on an entry lock, so a
// slow in-flight turn cannot stall the rest of the manager. Idleness is
// re-checked under the entry lock: a session that was answered between the
// snapshot and the expiry survives.
func (m *Manager) sweep(now time.Time) {
	timeout := m.scfg.Timeout()

	m.mu.RLock()
	candidates := make(map[string]*entry, len(m.entries))
	for id, e := range m.entries {
		candidates[id] = e
	}
	m.mu.RUnlock()

	for id, e := range candidates {
		e.mu.Lock()
		if now.Sub(e.lastActive) <= timeout {
			e.mu.Unlock()
			continue
		}
		m.archiveLocked(e, id)
		m.mu.Lock()
		if m.entries[id] == e {
			delete(m.entries, id)
			m.expired++
		}
		m.mu.Unlock()
		e.mu.Unlock()
		m.log.Info("session %s expired after %s idle", id, timeout)
	}
}

// Stats reports registry counters.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Stats{Created: m.created, Expired: m.expired}
	for _, e := range m.entries {
		e.mu.Lock()
		switch e.state.Stage {
		case consultation.StageCompleted:
			s.Completed++
		case consultation.StageFailed:
			s.Failed++
		default:
			s.Active++
		}
		e.mu.Unlock()
	}
	return s
}
