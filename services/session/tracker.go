package session

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"strix/models"
	"strix/services/progress"
)

var ErrSessionClosed = errors.New("session already closed")

const (
	// DefaultTickInterval is how often watched time accrues while the
	// player is visible.
	DefaultTickInterval = time.Second
	// DefaultAutosaveInterval is how often accumulated progress is
	// committed to the stores mid-session.
	DefaultAutosaveInterval = 15 * time.Second

	// minMeaningfulSeconds is the threshold below which a brand-new
	// session leaves no trace. Sessions resuming prior history always
	// commit, so an accidental reopen cannot lose the resume point.
	minMeaningfulSeconds = 10
)

// Tracker accumulates watched time for one playback session and commits it
// to the progress stores. Time only accrues while the player is visible.
// The local store is always written; the remote store is written only when
// the session belongs to an authenticated account, and its failures never
// block the local write.
type Tracker struct {
	mu sync.Mutex
	// commitMu serializes store writes so commits land in the order they
	// were decided, never interleaved.
	commitMu sync.Mutex

	entry          models.WatchProgressEntry
	initialElapsed float64
	elapsed        float64
	visible        bool
	watched        bool
	closed         bool

	local    progress.Store
	remote   progress.Store
	onCommit func(entry models.WatchProgressEntry)

	tickInterval     time.Duration
	autosaveInterval time.Duration
	cancel           context.CancelFunc
	done             chan struct{}
}

// TrackerOptions configures a new tracker. Remote and OnCommit may be nil.
type TrackerOptions struct {
	Entry            models.WatchProgressEntry
	InitialElapsed   float64
	Local            progress.Store
	Remote           progress.Store
	OnCommit         func(entry models.WatchProgressEntry)
	TickInterval     time.Duration
	AutosaveInterval time.Duration
}

// NewTracker creates a tracker. The session starts visible and idle; call
// Start to begin accruing time.
func NewTracker(opts TrackerOptions) *Tracker {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.AutosaveInterval <= 0 {
		opts.AutosaveInterval = DefaultAutosaveInterval
	}
	return &Tracker{
		entry:            opts.Entry,
		initialElapsed:   opts.InitialElapsed,
		visible:          true,
		local:            opts.Local,
		remote:           opts.Remote,
		onCommit:         opts.OnCommit,
		tickInterval:     opts.TickInterval,
		autosaveInterval: opts.AutosaveInterval,
		done:             make(chan struct{}),
	}
}

// Start launches the tick and autosave loop. It returns immediately.
func (t *Tracker) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	t.mu.Lock()
	t.cancel = cancel
	t.mu.Unlock()

	go t.run(ctx)
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	tick := time.NewTicker(t.tickInterval)
	defer tick.Stop()
	autosave := time.NewTicker(t.autosaveInterval)
	defer autosave.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			t.handleTick()
		case <-autosave.C:
			t.autosaveCommit(context.Background())
		}
	}
}

// handleTick accrues one tick of watched time while the player is visible.
func (t *Tracker) handleTick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed || !t.visible {
		return
	}
	t.elapsed += t.tickInterval.Seconds()
}

func (t *Tracker) autosaveCommit(ctx context.Context) {
	t.mu.Lock()
	if t.closed || t.watched {
		t.mu.Unlock()
		return
	}
	entry, ok := t.snapshotLocked()
	t.mu.Unlock()

	if ok {
		t.commitUnlessWatched(ctx, entry)
	}
}

// commitUnlessWatched writes an autosave snapshot, dropping it when a
// MarkWatched or Close landed after the snapshot was taken. A stale
// autosave must not overwrite the completed state with a lower estimate.
func (t *Tracker) commitUnlessWatched(ctx context.Context, entry models.WatchProgressEntry) {
	t.commitMu.Lock()
	defer t.commitMu.Unlock()

	t.mu.Lock()
	stale := t.watched || t.closed
	t.mu.Unlock()
	if stale {
		return
	}
	t.writeStores(ctx, entry)
}

// SetVisible records a visibility change. Hidden sessions keep running but
// stop accruing time until they become visible again.
func (t *Tracker) SetVisible(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.visible = visible
}

// Entry returns the identity the session was opened for.
func (t *Tracker) Entry() models.WatchProgressEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.entry
}

// snapshotLocked builds the entry to persist from the current counters.
// It reports false when the session is too short to be worth recording:
// a freshly started title watched for under ten seconds. Sessions that
// resumed existing history always snapshot so the prior position survives.
func (t *Tracker) snapshotLocked() (models.WatchProgressEntry, bool) {
	total := t.initialElapsed + t.elapsed
	if total < minMeaningfulSeconds && t.initialElapsed == 0 {
		return models.WatchProgressEntry{}, false
	}

	entry := t.entry
	if t.entry.Duration > 0 {
		if total > t.entry.Duration {
			total = t.entry.Duration
		}
		entry.Progress = total / t.entry.Duration * 100
		if entry.Progress > 100 {
			entry.Progress = 100
		}
	}
	entry.CurrentTime = total
	return entry, true
}

// commit writes the entry to the stores unconditionally. MarkWatched and
// Close use it; autosaves go through commitUnlessWatched.
func (t *Tracker) commit(ctx context.Context, entry models.WatchProgressEntry) {
	t.commitMu.Lock()
	defer t.commitMu.Unlock()
	t.writeStores(ctx, entry)
}

// writeStores performs the store writes. The local write always happens;
// a remote failure is logged and otherwise ignored.
func (t *Tracker) writeStores(ctx context.Context, entry models.WatchProgressEntry) {
	if t.local != nil {
		if err := t.local.Upsert(ctx, entry); err != nil {
			log.Printf("[session] Local progress write failed: %v", err)
		}
	}
	if t.remote != nil {
		if err := t.remote.Upsert(ctx, entry); err != nil {
			log.Printf("[session] Remote progress write failed: %v", err)
		}
	}
	if t.onCommit != nil {
		t.onCommit(entry)
	}
}

// MarkWatched records the title as fully watched and freezes the session:
// no later autosave or close commit can overwrite the completed state.
// Calling it again is a no-op.
func (t *Tracker) MarkWatched(ctx context.Context) {
	t.mu.Lock()
	if t.closed || t.watched {
		t.mu.Unlock()
		return
	}
	t.watched = true

	entry := t.entry
	entry.Progress = 100
	if entry.Duration > 0 {
		entry.CurrentTime = entry.Duration
	}
	t.mu.Unlock()

	t.commit(ctx, entry)
}

// Close stops the timers and performs the final commit. It is safe to call
// more than once; later calls return ErrSessionClosed without side effects.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrSessionClosed
	}
	t.closed = true
	cancel := t.cancel
	watched := t.watched
	entry, ok := t.snapshotLocked()
	t.mu.Unlock()

	if cancel != nil {
		cancel()
		<-t.done
	}

	// A watched session already committed its final state.
	if !watched && ok {
		t.commit(ctx, entry)
	}
	return nil
}
