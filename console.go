package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/afittestide/mascot/storage"
)

// Submission is an in-flight command started by Console.Begin.
type Submission struct {
	Seq     int64
	Command string

	ctx     context.Context
	started time.Time
}

// Outcome is what came back for a Submission.
type Outcome struct {
	Seq      int64
	Command  string
	Response Response
	Err      error
	Duration time.Duration
}

// Canceled reports whether the request was canceled before a reply arrived.
func (o Outcome) Canceled() bool {
	return o.Err != nil && errors.Is(o.Err, context.Canceled)
}

// Snapshot is a consistent copy of the console state.
type Snapshot struct {
	State   SessionState
	History []string
	Result  *Result
	Error   string
	Loading bool
	Seq     int64
}

// Console runs submission cycles against the service. The session state,
// history, last result, error text and loading flag change together under
// one lock. Each submission supersedes the previous one: its request is
// canceled and its outcome discarded.
type Console struct {
	client    Querier
	journal   *storage.Journal
	logger    *slog.Logger
	sessionID string

	mu       sync.Mutex
	tracker  *SessionTracker
	seq      int64
	cancel   context.CancelFunc
	loading  bool
	errText  string
	last     *Result
	lastResp Response
}

// NewConsole creates a console. journal may be nil.
func NewConsole(client Querier, journal *storage.Journal, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	sessionID := ""
	if journal != nil {
		sessionID = journal.SessionID()
	}
	return &Console{
		client:    client,
		journal:   journal,
		logger:    logger.With("session", sessionID),
		sessionID: sessionID,
		tracker:   NewSessionTracker(),
	}
}

// SessionID identifies this console run.
func (c *Console) SessionID() string {
	return c.sessionID
}

// Journal returns the submission journal, or nil.
func (c *Console) Journal() *storage.Journal {
	return c.journal
}

// Begin starts a submission for raw. Blank input is ignored. While a
// request is in flight, Begin refuses unless force is set.
func (c *Console) Begin(parent context.Context, raw string, force bool) (*Submission, bool) {
	if strings.TrimSpace(raw) == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading && !force {
		return nil, false
	}
	if c.cancel != nil {
		c.logger.Debug("superseding in-flight request", "seq", c.seq)
		c.cancel()
	}

	c.seq++
	ctx, cancel := context.WithCancel(parent)
	c.cancel = cancel
	c.loading = true
	c.errText = ""

	return &Submission{
		Seq:     c.seq,
		Command: raw,
		ctx:     ctx,
		started: time.Now(),
	}, true
}

// Execute performs the request for sub. It does not touch console state.
func (c *Console) Execute(sub *Submission) Outcome {
	resp, err := c.client.Query(sub.ctx, sub.Command)
	return Outcome{
		Seq:      sub.Seq,
		Command:  sub.Command,
		Response: resp,
		Err:      err,
		Duration: time.Since(sub.started),
	}
}

// Complete applies out to the console. It returns false when out belongs to
// a superseded submission, which is dropped.
func (c *Console) Complete(out Outcome) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if out.Seq != c.seq {
		c.logger.Debug("discarding stale outcome", "seq", out.Seq, "latest", c.seq, "command", out.Command)
		return false
	}

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loading = false

	entry := storage.Entry{Seq: out.Seq, Command: out.Command, Duration: out.Duration}

	switch {
	case out.Canceled():
		entry.Outcome = storage.OutcomeCanceled
		c.logger.Info("request canceled", "seq", out.Seq, "command", out.Command, "duration", out.Duration)

	case out.Err != nil:
		c.errText = connectivityNotice
		entry.Outcome = storage.OutcomeTransport
		entry.Error = out.Err.Error()
		kind := TransportOther
		var te *TransportError
		if errors.As(out.Err, &te) {
			kind = te.Kind
			c.errText = te.Notice()
		}
		c.logger.Error("request failed", "seq", out.Seq, "command", out.Command,
			"kind", kind, "duration", out.Duration, "error", out.Err)

	default:
		accepted := c.tracker.Apply(out.Command, out.Response)
		res := Render(out.Response, c.tracker.State())
		entry.Kind = string(out.Response.Kind())
		if !accepted || res.IsError() {
			c.errText = res.Error
			entry.Outcome = storage.OutcomeFailure
			entry.Error = res.Error
			c.logger.Info("command rejected", "seq", out.Seq, "command", out.Command,
				"kind", out.Response.Kind(), "duration", out.Duration)
			break
		}
		c.last = &res
		c.lastResp = out.Response
		entry.Outcome = storage.OutcomeSuccess
		entry.Rendered = res.PlainText()
		c.logger.Info("command completed", "seq", out.Seq, "command", out.Command,
			"kind", out.Response.Kind(), "duration", out.Duration, "history", c.tracker.Len())
	}

	c.record(entry)
	return true
}

func (c *Console) record(entry storage.Entry) {
	if c.journal == nil {
		return
	}
	if _, err := c.journal.Record(entry); err != nil {
		c.logger.Warn("failed to record journal entry", "seq", entry.Seq, "error", err)
	}
}

// Submit runs one full cycle synchronously. ok is false when raw is blank
// or another request is in flight.
func (c *Console) Submit(ctx context.Context, raw string) (Outcome, bool) {
	sub, ok := c.Begin(ctx, raw, false)
	if !ok {
		return Outcome{}, false
	}
	out := c.Execute(sub)
	c.Complete(out)
	return out, true
}

// Cancel aborts the in-flight request, if any.
func (c *Console) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loading || c.cancel == nil {
		return false
	}
	c.cancel()
	return true
}

// ClearResult empties the results panel and the error text.
func (c *Console) ClearResult() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = nil
	c.lastResp = nil
	c.errText = ""
}

// Loading reports whether a request is in flight.
func (c *Console) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// History returns the accepted commands, oldest first.
func (c *Console) History() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.History()
}

// Snapshot returns a copy of the current state.
func (c *Console) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{
		State:   c.tracker.State(),
		History: c.tracker.History(),
		Error:   c.errText,
		Loading: c.loading,
		Seq:     c.seq,
	}
	if c.last != nil {
		res := *c.last
		snap.Result = &res
	}
	return snap
}
