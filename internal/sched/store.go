package sched

import (
	"sort"
	"sync"
	"time"
)

// Store is the in-memory registry of live jobs and the only shared state
// between the request path and the timing loop. All methods are safe for
// concurrent use; the mutex serializes every mutation so a job can never
// be observed or claimed twice.
//
// Jobs live only for the process lifetime by design.
type Store struct {
	mu   sync.Mutex
	jobs map[string]Job
}

func NewStore() *Store {
	return &Store{jobs: map[string]Job{}}
}

// Put inserts job keyed by its ID. An existing job under the same key is
// replaced atomically; the replaced job can no longer fire because Due
// only ever reads the map entry that is present at claim time.
func (s *Store) Put(job Job) {
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
}

// Remove deletes the job if present and reports whether it did.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	_, ok := s.jobs[id]
	if ok {
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	return ok
}

// RemoveAllFor deletes every job belonging to owner and returns the count.
func (s *Store) RemoveAllFor(ownerID string) int {
	s.mu.Lock()
	n := 0
	for id, j := range s.jobs {
		if j.OwnerID == ownerID {
			delete(s.jobs, id)
			n++
		}
	}
	s.mu.Unlock()
	return n
}

// ListFor returns a snapshot of the owner's jobs sorted by fire time.
func (s *Store) ListFor(ownerID string) []Job {
	s.mu.Lock()
	out := make([]Job, 0, 4)
	for _, j := range s.jobs {
		if j.OwnerID == ownerID {
			out = append(out, j)
		}
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, k int) bool { return out[i].FireAt.Before(out[k].FireAt) })
	return out
}

// Due claims every job whose FireAt is at or before now. Claiming deletes
// the job under the lock, so across any number of concurrent calls a job
// is returned exactly once. Intended for the scheduler loop only.
func (s *Store) Due(now time.Time) []Job {
	s.mu.Lock()
	var out []Job
	for id, j := range s.jobs {
		if !j.FireAt.After(now) {
			out = append(out, j)
			delete(s.jobs, id)
		}
	}
	s.mu.Unlock()
	return out
}

// Len reports the number of live jobs (all owners).
func (s *Store) Len() int {
	s.mu.Lock()
	n := len(s.jobs)
	s.mu.Unlock()
	return n
}
