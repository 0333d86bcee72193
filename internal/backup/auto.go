package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/imobcontrol/internal/domain"
)

// DefaultDelay is how long the portfolio must stay unchanged before an
// automatic backup runs.
const DefaultDelay = 5 * time.Second

// Snapshot is what a Sink receives.
type Snapshot struct {
	Key        string
	Taken      time.Time
	Properties []domain.Property
	// Payload is the exported document, ready to store as a file.
	Payload []byte
}

// Sink stores automatic backups somewhere.
type Sink interface {
	Name() string
	Write(ctx context.Context, snap Snapshot) error
}

// Status reports the state of an AutoBackup.
type Status struct {
	Key        string     `json:"key"`
	Pending    bool       `json:"pending"`
	LastBackup *time.Time `json:"lastBackup,omitempty"`
	LastError  string     `json:"lastError,omitempty"`
}

// AutoBackup debounces portfolio changes into backups: every change restarts
// the delay, and only the last snapshot is written. Empty portfolios are
// never backed up.
type AutoBackup struct {
	key     string
	delay   time.Duration
	sinks   []Sink
	log     zerolog.Logger
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	pending []domain.Property
	last    time.Time
	lastErr error
	stopped bool
}

// NewAutoBackup returns a debouncer for the portfolio stored under key.
func NewAutoBackup(key string, delay time.Duration, sinks []Sink, log zerolog.Logger) *AutoBackup {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &AutoBackup{
		key:     key,
		delay:   delay,
		sinks:   sinks,
		log:     log.With().Str("storage_key", key).Logger(),
		timeout: 30 * time.Second,
		now:     time.Now,
	}
}

// Notify records a change. It has the portfolio listener signature.
func (a *AutoBackup) Notify(props []domain.Property) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if len(props) == 0 {
		a.pending = nil
		return
	}
	a.pending = props
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *AutoBackup) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.Flush(ctx); err != nil {
		a.log.Error().Err(err).Msg("Automatic backup failed")
	}
}

// Flush writes the pending snapshot now, if any.
func (a *AutoBackup) Flush(ctx context.Context) error {
	a.mu.Lock()
	props := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()

	if len(props) == 0 {
		return nil
	}

	taken := a.now()
	payload, err := Export(props, taken)
	if err != nil {
		a.setResult(time.Time{}, err)
		return err
	}
	snap := Snapshot{Key: a.key, Taken: taken, Properties: props, Payload: payload}

	var firstErr error
	for _, sink := range a.sinks {
		if err := sink.Write(ctx, snap); err != nil {
			a.log.Warn().Err(err).Str("sink", sink.Name()).Msg("Backup sink failed")
			if firstErr == nil {
				firstErr = fmt.Errorf("sink %s: %w", sink.Name(), err)
			}
			continue
		}
		a.log.Info().Str("sink", sink.Name()).Int("property_count", len(props)).Msg("Automatic backup written")
	}
	if firstErr != nil {
		a.setResult(time.Time{}, firstErr)
		return firstErr
	}
	a.setResult(taken, nil)
	return nil
}

func (a *AutoBackup) setResult(at time.Time, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = err
	if err == nil {
		a.last = at
	}
}

// Status returns the last backup time and whether one is waiting.
func (a *AutoBackup) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	st := Status{Key: a.key, Pending: a.pending != nil}
	if !a.last.IsZero() {
		last := a.last
		st.LastBackup = &last
	}
	if a.lastErr != nil {
		st.LastError = a.lastErr.Error()
	}
	return st
}

// Stop cancels the pending timer and flushes what is waiting.
func (a *AutoBackup) Stop(ctx context.Context) error {
	a.mu.Lock()
	a.stopped = true
	a.mu.Unlock()
	return a.Flush(ctx)
}
