package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"validation-proxy-service/internal/entity"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrAlreadyExists   = errors.New("job already exists")
	ErrAlreadyTerminal = errors.New("job already in terminal state")
)

// JobRegistry is an in-process job store. Safe for concurrent use.
// Jobs are stored and returned by value so readers never share memory
// with a writer.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]entity.Job

	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

type Option func(*JobRegistry)

// WithTTL sets how long a terminal job stays readable after completion.
// Zero keeps terminal jobs forever.
func WithTTL(d time.Duration) Option {
	return func(r *JobRegistry) { r.ttl = d }
}

// WithMaxEntries caps the number of retained terminal jobs.
// Zero means no cap.
func WithMaxEntries(n int) Option {
	return func(r *JobRegistry) { r.maxEntries = n }
}

func withClock(now func() time.Time) Option {
	return func(r *JobRegistry) { r.now = now }
}

func NewJobRegistry(opts ...Option) *JobRegistry {
	r := &JobRegistry{
		jobs: make(map[string]entity.Job),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Insert stores a new running job for id.
func (r *JobRegistry) Insert(_ context.Context, id, email, url string) (entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.jobs[id]; ok {
		return entity.Job{}, ErrAlreadyExists
	}
	j := entity.Job{
		ID:        id,
		Status:    entity.StatusRunning,
		Email:     email,
		URL:       url,
		CreatedAt: r.now().UTC(),
	}
	r.jobs[id] = j
	return j, nil
}

func (r *JobRegistry) Get(_ context.Context, id string) (entity.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	j, ok := r.jobs[id]
	if !ok {
		return entity.Job{}, ErrNotFound
	}
	return j, nil
}

// CompleteAs moves a running job to its terminal state. It is the only
// transition a job ever makes.
func (r *JobRegistry) CompleteAs(_ context.Context, id string, out entity.Outcome) (entity.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return entity.Job{}, ErrNotFound
	}
	if j.Status.Terminal() {
		return j, ErrAlreadyTerminal
	}

	now := r.now().UTC()
	j.Status = out.Status()
	j.CompletedAt = &now
	if out.Result != nil {
		res := *out.Result
		j.Result = &res
	} else {
		msg := out.Err
		j.Error = &msg
	}
	r.jobs[id] = j
	return j, nil
}

// Remove drops a job that is still running. Used when a job could not be
// handed to a worker and its id was never returned to a caller.
func (r *JobRegistry) Remove(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	if j.Status.Terminal() {
		return ErrAlreadyTerminal
	}
	delete(r.jobs, id)
	return nil
}

// Len returns the number of retained jobs, running ones included.
func (r *JobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Evict removes terminal jobs older than the TTL, then the oldest terminal
// jobs beyond the entry cap. Running jobs are never evicted.
func (r *JobRegistry) Evict(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	terminal := make([]entity.Job, 0)

	for id, j := range r.jobs {
		if !j.Status.Terminal() {
			continue
		}
		if r.ttl > 0 && now.Sub(*j.CompletedAt) >= r.ttl {
			delete(r.jobs, id)
			removed++
			continue
		}
		terminal = append(terminal, j)
	}

	if r.maxEntries > 0 && len(terminal) > r.maxEntries {
		sort.Slice(terminal, func(a, b int) bool {
			return terminal[a].CompletedAt.Before(*terminal[b].CompletedAt)
		})
		for _, j := range terminal[:len(terminal)-r.maxEntries] {
			delete(r.jobs, j.ID)
			removed++
		}
	}
	return removed
}

// RunEvictor sweeps the registry every interval until ctx is done. A
// non-positive interval means one minute.
func (r *JobRegistry) RunEvictor(ctx context.Context, interval time.Duration, onEvict func(n int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Evict(ctx); n > 0 && onEvict != nil {
				onEvict(n)
			}
		}
	}
}
