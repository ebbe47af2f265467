// Package simulate drives a sequence of operational readings through
// the risk engines on a fixed interval: one reading per tick, AI
// scoring when available, deterministic fallback otherwise.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prosentry/prosentry/internal/ai"
	"github.com/prosentry/prosentry/internal/database"
	"github.com/prosentry/prosentry/internal/risk"
)

// State is the lifecycle state of a run.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateStopped   State = "stopped"
)

// Scorer is the AI collaborator contract. Implementations return a
// tagged outcome; anything non-OK triggers the deterministic fallback.
type Scorer interface {
	Analyze(ctx context.Context, r risk.Reading, history []risk.Reading) ai.Outcome
}

// Advisor generates preventive-action advice for an assessment.
type Advisor interface {
	Recommend(ctx context.Context, a risk.Assessment, r risk.Reading) ai.Advice
}

// TimelineEntry is one processed step of a run.
type TimelineEntry struct {
	Step       int             `json:"step"`
	Reading    risk.Reading    `json:"reading"`
	Assessment risk.Assessment `json:"assessment"`
	Advice     ai.Advice       `json:"advice"`
	ScoredBy   string          `json:"scoredBy"` // "ai" or "fallback"
}

// Alert is the single high-risk alert a run may raise.
type Alert struct {
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	RiskScore    int       `json:"riskScore"`
	RiskLevel    risk.Level `json:"riskLevel"`
	TriggeredAt  time.Time `json:"triggeredAt"`
	Acknowledged bool      `json:"acknowledged"`
}

// Snapshot is an immutable copy of the run state for readers.
type Snapshot struct {
	SessionID  string          `json:"sessionId"`
	State      State           `json:"state"`
	DataSource string          `json:"dataSource"`
	FileName   string          `json:"fileName,omitempty"`
	Step       int             `json:"step"`
	TotalSteps int             `json:"totalSteps"`
	Timeline   []TimelineEntry `json:"timeline"`
	Alert      *Alert          `json:"alert,omitempty"`
}

// Config holds the runner's timing parameters.
type Config struct {
	Interval time.Duration
}

// Runner drives at most one progression run at a time. All mutable
// run state is guarded by mu: the tick goroutine is the only writer
// during a run, but HTTP readers and Stop race against it.
type Runner struct {
	cfg      Config
	engine   *risk.Analyzer
	scorer   Scorer
	advisor  Advisor
	recorder *database.Recorder

	mu          sync.Mutex
	state       State
	sessionID   string
	readings    []risk.Reading
	source      string
	fileName    string
	step        int
	timeline    []TimelineEntry
	alert       *Alert
	alertRaised bool
	cancel      context.CancelFunc
	subscribers map[chan TimelineEntry]struct{}
}

// NewRunner creates an idle runner. scorer and advisor may be nil,
// in which case every step runs on the deterministic engine and the
// fallback advice rules.
func NewRunner(cfg Config, engine *risk.Analyzer, scorer Scorer, advisor Advisor, recorder *database.Recorder) *Runner {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	return &Runner{
		cfg:         cfg,
		engine:      engine,
		scorer:      scorer,
		advisor:     advisor,
		recorder:    recorder,
		state:       StateIdle,
		subscribers: make(map[chan TimelineEntry]struct{}),
	}
}

// Start begins a run over the given readings. It fails if a run is
// already in progress or the sequence is empty. Pattern memory is
// deliberately not reset; it accumulates until a new data source is
// loaded.
func (r *Runner) Start(readings []risk.Reading, source, fileName string) (string, error) {
	if len(readings) == 0 {
		return "", errors.New("no readings to process")
	}

	r.mu.Lock()
	if r.state == StateRunning {
		r.mu.Unlock()
		return "", errors.New("a run is already in progress")
	}

	id := uuid.NewString()
	r.sessionID = id
	r.state = StateRunning
	r.readings = readings
	r.source = source
	r.fileName = fileName
	r.step = 0
	r.timeline = nil
	r.alert = nil
	r.alertRaised = false

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.mu.Unlock()

	var file *string
	if fileName != "" {
		file = &fileName
	}
	r.recorder.SessionStarted(database.Session{
		ID:         id,
		StartTime:  now(),
		Status:     string(StateRunning),
		TotalSteps: len(readings),
		DataSource: source,
		FileName:   file,
	})

	log.Printf("run %s started: %d readings from %s", id, len(readings), source)
	go r.loop(ctx, id)
	return id, nil
}

// Stop cancels a running simulation. The state flips to Stopped
// atomically with scheduler invalidation: a tick already in flight
// may finish its computation but can no longer mutate the session or
// schedule a successor.
func (r *Runner) Stop() error {
	r.mu.Lock()
	if r.state != StateRunning {
		r.mu.Unlock()
		return errors.New("no run in progress")
	}
	r.state = StateStopped
	id := r.sessionID
	cancel := r.cancel
	r.cancel = nil
	r.mu.Unlock()

	cancel()
	r.recorder.SessionEnded(id, string(StateStopped), now())
	log.Printf("run %s stopped", id)
	return nil
}

// AcknowledgeAlert marks the current alert acknowledged. It does not
// alter the run's progression.
func (r *Runner) AcknowledgeAlert() {
	r.mu.Lock()
	acked := ""
	if r.alert != nil && !r.alert.Acknowledged {
		r.alert.Acknowledged = true
		acked = r.sessionID
	}
	r.mu.Unlock()

	if acked != "" {
		r.recorder.AlertAcknowledged(acked, now())
	}
}

// Snapshot returns a copy of the current run state.
func (r *Runner) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := Snapshot{
		SessionID:  r.sessionID,
		State:      r.state,
		DataSource: r.source,
		FileName:   r.fileName,
		Step:       r.step,
		TotalSteps: len(r.readings),
		Timeline:   append([]TimelineEntry(nil), r.timeline...),
	}
	if snap.State == "" {
		snap.State = StateIdle
	}
	if r.alert != nil {
		alert := *r.alert
		snap.Alert = &alert
	}
	return snap
}

// ResetPatterns clears the engine's learned pattern memory. Callers
// must use this rather than reaching into the engine directly: the
// reset shares the runner's mutex with the tick goroutine's engine
// access, so it is safe during an active run.
func (r *Runner) ResetPatterns() {
	r.mu.Lock()
	r.engine.Patterns().Reset()
	r.mu.Unlock()
}

// PatternCount reports how many pattern buckets the engine has
// learned.
func (r *Runner) PatternCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Patterns().Len()
}

// Subscribe registers a channel that receives every appended timeline
// entry. Sends are non-blocking; slow subscribers miss entries.
func (r *Runner) Subscribe(ch chan TimelineEntry) {
	r.mu.Lock()
	r.subscribers[ch] = struct{}{}
	r.mu.Unlock()
}

// Unsubscribe removes a previously registered channel.
func (r *Runner) Unsubscribe(ch chan TimelineEntry) {
	r.mu.Lock()
	delete(r.subscribers, ch)
	r.mu.Unlock()
}

func (r *Runner) loop(ctx context.Context, id string) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if done := r.tick(ctx, id); done {
				return
			}
		}
	}
}

// tick processes exactly one reading. It returns true when the loop
// should stop, either because the run finished or because it no
// longer owns the session.
func (r *Runner) tick(ctx context.Context, id string) bool {
	r.mu.Lock()
	if r.state != StateRunning || r.sessionID != id {
		r.mu.Unlock()
		return true
	}
	step := r.step
	reading := r.readings[step]
	history := r.readings[:step]
	r.mu.Unlock()

	assessment, scoredBy := r.score(ctx, reading, step, history)
	advice := r.advise(ctx, assessment, reading)

	entry := TimelineEntry{
		Step:       step,
		Reading:    reading,
		Assessment: assessment,
		Advice:     advice,
		ScoredBy:   scoredBy,
	}

	// Cancel point: a Stop between the unlock above and here means
	// this tick's work is discarded.
	r.mu.Lock()
	if r.state != StateRunning || r.sessionID != id {
		r.mu.Unlock()
		return true
	}

	r.timeline = append(r.timeline, entry)
	r.step++

	var raised *Alert
	if assessment.Level == risk.LevelHigh && !r.alertRaised {
		r.alertRaised = true
		alert := buildAlert(assessment)
		r.alert = &alert
		raised = r.alert
	}

	done := r.step == len(r.readings)
	if done {
		r.state = StateCompleted
	}

	subs := make([]chan TimelineEntry, 0, len(r.subscribers))
	for ch := range r.subscribers {
		subs = append(subs, ch)
	}
	r.mu.Unlock()

	// Persistence is queued before the broadcast so that a consumer
	// seeing the final entry can Flush and read the session back.
	r.record(id, entry, raised)
	if done {
		r.recorder.SessionEnded(id, string(StateCompleted), now())
		log.Printf("run %s completed: %d steps", id, step+1)
	}

	for _, ch := range subs {
		select {
		case ch <- entry:
		default:
		}
	}
	return done
}

// Flush waits for queued persistence writes to land.
func (r *Runner) Flush() {
	r.recorder.Flush()
}

// score runs the AI collaborator under its deadline and falls back to
// the deterministic engine on any non-OK outcome. A panic anywhere in
// the AI path is also a fallback trigger, never a halted scheduler.
func (r *Runner) score(ctx context.Context, reading risk.Reading, step int, history []risk.Reading) (assessment risk.Assessment, scoredBy string) {
	if out, ok := r.tryAI(ctx, reading, history); ok {
		return out, "ai"
	}

	r.mu.Lock()
	assessment = r.engine.Analyze(reading, step, history)
	r.mu.Unlock()
	return assessment, "fallback"
}

func (r *Runner) tryAI(ctx context.Context, reading risk.Reading, history []risk.Reading) (assessment risk.Assessment, ok bool) {
	if r.scorer == nil {
		return risk.Assessment{}, false
	}
	defer func() {
		if p := recover(); p != nil {
			log.Printf("AI scoring panicked, falling back: %v", p)
			ok = false
		}
	}()

	out := r.scorer.Analyze(ctx, reading, history)
	switch out.Status {
	case ai.StatusOK:
		return out.Assessment, true
	case ai.StatusTimedOut:
		log.Printf("AI scoring timed out, falling back")
	default:
		log.Printf("AI scoring failed, falling back: %v", out.Err)
	}
	return risk.Assessment{}, false
}

func (r *Runner) advise(ctx context.Context, a risk.Assessment, reading risk.Reading) ai.Advice {
	if r.advisor == nil {
		return ai.Advice{}
	}
	return r.advisor.Recommend(ctx, a, reading)
}

func (r *Runner) record(id string, entry TimelineEntry, raised *Alert) {
	r.recorder.ResultScored(database.Result{
		SessionID:       id,
		StepNumber:      entry.Step,
		Timestamp:       entry.Reading.Timestamp,
		WorkHours:       entry.Reading.WorkHours,
		NearMissCount:   entry.Reading.NearMissCount,
		MachineUsage:    entry.Reading.MachineUsage,
		ShiftType:       entry.Reading.Shift,
		RiskScore:       entry.Assessment.Score,
		RiskLevel:       string(entry.Assessment.Level),
		Factors:         entry.Assessment.Factors,
		Confidence:      entry.Assessment.Confidence,
		Insights:        entry.Assessment.Insights,
		Recommendations: entry.Assessment.Recommendations,
	})

	if raised != nil {
		r.recorder.AlertRaised(database.AlertRecord{
			SessionID:   id,
			Title:       raised.Title,
			Message:     raised.Message,
			RiskScore:   raised.RiskScore,
			RiskLevel:   string(raised.RiskLevel),
			TriggeredAt: raised.TriggeredAt.UTC().Format(time.RFC3339),
		})
	}
}

// buildAlert composes the one high-risk alert a run may raise.
func buildAlert(a risk.Assessment) Alert {
	signals := a.Insights
	if len(signals) == 0 {
		signals = a.Factors
	}
	msg := fmt.Sprintf("High-risk conditions detected. Risk: %d/100.", a.Score)
	if len(signals) > 0 {
		if len(signals) > 2 {
			signals = signals[:2]
		}
		msg += " Signals: " + strings.Join(signals, ", ") + "."
	}
	return Alert{
		Title:       "Critical Safety Alert",
		Message:     msg,
		RiskScore:   a.Score,
		RiskLevel:   a.Level,
		TriggeredAt: time.Now().UTC(),
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
