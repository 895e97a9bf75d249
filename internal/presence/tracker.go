package presence

import (
	"context"
	"sync"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/realtime"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
)

// Tracker owns the presence lifecycle: an entry is written when a user
// attaches to a document, refreshed by a heartbeat loop, and deleted
// best-effort when they detach. The clock is injectable for tests.
type Tracker struct {
	store     Store
	events    realtime.Publisher
	heartbeat time.Duration
	stale     time.Duration
	now       func() time.Time
}

func NewTracker(store Store, events realtime.Publisher, heartbeat, stale time.Duration) *Tracker {
	return &Tracker{
		store:     store,
		events:    events,
		heartbeat: heartbeat,
		stale:     stale,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetNow overrides the clock. Test hook.
func (t *Tracker) SetNow(now func() time.Time) { t.now = now }

// Join writes the user's entry and starts heartbeating it until the returned
// leave function is called. Leave deletes the entry best-effort; a missed
// delete ages out via staleness.
func (t *Tracker) Join(ctx context.Context, docID string, id models.Identity) (leave func(), err error) {
	if err := t.write(ctx, docID, id); err != nil {
		return nil, err
	}
	t.publish(docID, id.UID)

	hbCtx, stop := context.WithCancel(context.Background())
	go t.loop(hbCtx, docID, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			stop()
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := t.store.Delete(dctx, docID, id.UID); err != nil {
				logger.Warnf("presence: delete for %s on %s failed: %v", id.UID, docID, err)
			}
			t.publish(docID, id.UID)
		})
	}, nil
}

func (t *Tracker) loop(ctx context.Context, docID string, id models.Identity) {
	ticker := time.NewTicker(t.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.write(ctx, docID, id); err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warnf("presence: heartbeat for %s on %s failed: %v", id.UID, docID, err)
				continue
			}
			metrics.PresenceHeartbeats.Inc()
		}
	}
}

func (t *Tracker) write(ctx context.Context, docID string, id models.Identity) error {
	return t.store.Put(ctx, docID, Entry{
		UID:         id.UID,
		DisplayName: id.Name(),
		PhotoURL:    id.PhotoURL,
		LastSeen:    t.now(),
	})
}

// Active lists the users currently online on a document, staleness applied.
func (t *Tracker) Active(ctx context.Context, docID string) ([]Entry, error) {
	entries, err := t.store.List(ctx, docID)
	if err != nil {
		return nil, err
	}
	return Filter(entries, t.now(), t.stale), nil
}

// Clear drops every entry for a document. Called from document deletion.
func (t *Tracker) Clear(ctx context.Context, docID string) error {
	return t.store.Clear(ctx, docID)
}

func (t *Tracker) publish(docID, uid string) {
	if t.events == nil {
		return
	}
	t.events.Publish(realtime.DocTopic(docID), realtime.Event{
		Type:      realtime.EventPresenceChanged,
		DocID:     docID,
		OriginUID: uid,
		At:        t.now(),
	})
}
