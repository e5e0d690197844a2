package remind

import (
	"strings"
	"sync"
	"time"

	"remindbot/internal/sched"
	logx "remindbot/pkg/logx"
)

// Outcome classifies a SubmissionResult.
type Outcome int

const (
	OutcomeScheduled Outcome = iota
	OutcomeParseFailed
	OutcomeCleared
	OutcomeListed
)

// SubmissionResult is what the inbound layer renders into a reply.
// Exactly the fields for the active Outcome are populated.
type SubmissionResult struct {
	Outcome Outcome

	Reminder Reminder    // OutcomeScheduled
	Reason   error       // OutcomeParseFailed: ErrNoTimestamp, ErrPastTime, ...
	Cleared  int         // OutcomeCleared
	Jobs     []sched.Job // OutcomeListed
}

// Options are the compile-time knobs, hot-reloadable via Apply.
type Options struct {
	// Location is the fixed reference timezone for year-less dates.
	Location *time.Location
	// DefaultLeadMinutes replaces the built-in 15 when > 0.
	DefaultLeadMinutes int
}

// Service is the core submit entrypoint: free text in, scheduled job (or a
// typed refusal) out. It writes only through the shared job store.
type Service struct {
	mu  sync.Mutex
	opt Options

	store *sched.Store
	log   logx.Logger
}

func NewService(store *sched.Store, opt Options, log logx.Logger) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{store: store, opt: opt, log: log}
}

func (s *Service) Apply(opt Options) {
	s.mu.Lock()
	s.opt = opt
	s.mu.Unlock()
}

func (s *Service) options() Options {
	s.mu.Lock()
	opt := s.opt
	s.mu.Unlock()
	return opt
}

// Management verbs accepted in place of a reminder text.
var (
	listVerbs  = []string{"/list", "list", "列表", "查詢", "查询"}
	clearVerbs = []string{"/clear", "clear", "清除", "清空"}
)

// Submit handles one inbound message for ownerID. now is explicit so the
// whole path stays deterministic under test.
//
// Same-owner submissions take effect in arrival order: the store serializes
// writes, and a later Put under an identical job ID always wins.
func (s *Service) Submit(ownerID, text string, now time.Time) SubmissionResult {
	trimmed := strings.TrimSpace(text)

	if matchVerb(trimmed, listVerbs) {
		return SubmissionResult{Outcome: OutcomeListed, Jobs: s.List(ownerID)}
	}
	if matchVerb(trimmed, clearVerbs) {
		n := s.ClearAll(ownerID)
		s.log.Info("reminders cleared", logx.String("owner", ownerID), logx.Int("count", n))
		return SubmissionResult{Outcome: OutcomeCleared, Cleared: n}
	}

	opt := s.options()
	r, err := Compile(trimmed, now, opt.Location, opt.DefaultLeadMinutes)
	if err != nil {
		return SubmissionResult{Outcome: OutcomeParseFailed, Reason: err}
	}
	r.OwnerID = ownerID

	job := jobFromReminder(r)
	s.store.Put(job)
	s.log.Info("reminder scheduled",
		logx.String("owner", ownerID),
		logx.String("job", job.ID),
		logx.Time("trigger_at", r.TriggerAt),
		logx.Int("lead_min", r.LeadMinutes))

	return SubmissionResult{Outcome: OutcomeScheduled, Reminder: r}
}

// List returns the owner's pending jobs sorted by fire time.
func (s *Service) List(ownerID string) []sched.Job {
	return s.store.ListFor(ownerID)
}

// ClearAll cancels every pending job for the owner.
func (s *Service) ClearAll(ownerID string) int {
	return s.store.RemoveAllFor(ownerID)
}

func jobFromReminder(r Reminder) sched.Job {
	return sched.Job{
		ID:      sched.JobID(r.OwnerID, r.TriggerAt),
		OwnerID: r.OwnerID,
		FireAt:  r.TriggerAt.Add(-time.Duration(r.LeadMinutes) * time.Minute),
		Payload: sched.Payload{
			OwnerID:     r.OwnerID,
			Label:       r.Label,
			TriggerAt:   r.TriggerAt,
			LeadMinutes: r.LeadMinutes,
		},
	}
}

func matchVerb(text string, verbs []string) bool {
	low := strings.ToLower(text)
	for _, v := range verbs {
		if low == v {
			return true
		}
	}
	return false
}
