// Package requestseq tracks the newest request per caller and view so that
// slower, superseded responses can be dropped instead of overwriting fresher data.
package requestseq

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/recaudopro/recaudo-api/internal/pkg/logger"
)

// Header carries the client-side monotonically increasing sequence number.
const Header = "X-Request-Seq"

const (
	keyPrefix = "reqseq:"
	keyTTL    = 10 * time.Minute
)

// advanceScript stores ARGV[1] when it is greater than the current value.
var advanceScript = redis.NewScript(`
local cur = tonumber(redis.call('GET', KEYS[1]) or '0')
local seq = tonumber(ARGV[1])
if seq > cur then
  redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[2])
  return seq
end
return cur
`)

type store interface {
	advance(ctx context.Context, key string, seq int64) (int64, error)
	current(ctx context.Context, key string) (int64, error)
}

// Tracker records the latest sequence number seen per key.
type Tracker struct {
	store store
}

// New returns a Redis-backed tracker, or an in-process one when client is nil.
func New(client *redis.Client) *Tracker {
	if client == nil {
		return &Tracker{store: newMemoryStore()}
	}
	return &Tracker{store: &redisStore{client: client}}
}

// Key builds the tracking key for a caller and a view.
func Key(callerID, view string) string {
	return callerID + ":" + view
}

// FromRequest reads the sequence header. ok is false when it is absent or malformed.
func FromRequest(r *http.Request) (seq int64, ok bool) {
	raw := r.Header.Get(Header)
	if raw == "" {
		return 0, false
	}
	seq, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || seq <= 0 {
		return 0, false
	}
	return seq, true
}

// Begin registers seq for key. It reports false when a newer request already began.
func (t *Tracker) Begin(ctx context.Context, key string, seq int64) (bool, error) {
	latest, err := t.store.advance(ctx, key, seq)
	if err != nil {
		return true, err
	}
	return latest == seq, nil
}

// IsLatest reports whether seq is still the newest request for key. Store
// errors count as latest so a Redis outage never hides data.
func (t *Tracker) IsLatest(ctx context.Context, key string, seq int64) bool {
	latest, err := t.store.current(ctx, key)
	if err != nil {
		return true
	}
	return seq >= latest
}

type redisStore struct {
	client *redis.Client
}

func (s *redisStore) advance(ctx context.Context, key string, seq int64) (int64, error) {
	return advanceScript.Run(ctx, s.client, []string{keyPrefix + key}, seq, int(keyTTL.Seconds())).Int64()
}

func (s *redisStore) current(ctx context.Context, key string) (int64, error) {
	v, err := s.client.Get(ctx, keyPrefix+key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

type memoryEntry struct {
	seq     int64
	expires time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func newMemoryStore() *memoryStore {
	return &memoryStore{entries: make(map[string]memoryEntry), now: time.Now}
}

func (s *memoryStore) advance(_ context.Context, key string, seq int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evictExpired(now)
	e := s.entries[key]
	if seq > e.seq {
		s.entries[key] = memoryEntry{seq: seq, expires: now.Add(keyTTL)}
		return seq, nil
	}
	return e.seq, nil
}

func (s *memoryStore) current(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || s.now().After(e.expires) {
		return 0, nil
	}
	return e.seq, nil
}

func (s *memoryStore) evictExpired(now time.Time) {
	for k, e := range s.entries {
		if now.After(e.expires) {
			delete(s.entries, k)
		}
	}
}

// Ticket is one tracked request. A nil Ticket is never superseded.
type Ticket struct {
	tracker *Tracker
	key     string
	seq     int64
}

// Start registers the sequence header of r for the caller's view. It returns a
// nil ticket when the header is absent, and current=false when a newer request
// for the same view already started.
func (t *Tracker) Start(r *http.Request, callerID, view string) (ticket *Ticket, current bool) {
	seq, ok := FromRequest(r)
	if !ok || t == nil {
		return nil, true
	}
	key := Key(callerID, view)
	latest, err := t.Begin(r.Context(), key, seq)
	if err != nil {
		logger.LogWarn(r.Context(), "request sequence store unavailable", "key", key, "error", err.Error())
	}
	if !latest {
		return nil, false
	}
	return &Ticket{tracker: t, key: key, seq: seq}, true
}

// Superseded reports whether a newer request for the same view started after this one.
func (k *Ticket) Superseded(ctx context.Context) bool {
	if k == nil {
		return false
	}
	return !k.tracker.IsLatest(ctx, k.key, k.seq)
}
