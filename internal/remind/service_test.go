package remind

import (
	"errors"
	"testing"
	"time"

	"remindbot/internal/sched"
	logx "remindbot/pkg/logx"
)

func newTestService() *Service {
	return NewService(sched.NewStore(), Options{Location: taipei}, logx.Nop())
}

func TestSubmitSchedules(t *testing.T) {
	t.Parallel()
	s := newTestService()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	res := s.Submit("chat-1", "6月12日 15:30 看牙醫", now)
	if res.Outcome != OutcomeScheduled {
		t.Fatalf("Outcome = %v, want OutcomeScheduled", res.Outcome)
	}
	if res.Reminder.OwnerID != "chat-1" {
		t.Fatalf("OwnerID = %q, want chat-1", res.Reminder.OwnerID)
	}

	jobs := s.List("chat-1")
	if len(jobs) != 1 {
		t.Fatalf("job count = %d, want 1", len(jobs))
	}
	wantFire := res.Reminder.TriggerAt.Add(-15 * time.Minute)
	if !jobs[0].FireAt.Equal(wantFire) {
		t.Fatalf("FireAt = %v, want %v", jobs[0].FireAt, wantFire)
	}
	if jobs[0].Payload.Label != "看牙醫" {
		t.Fatalf("payload label = %q", jobs[0].Payload.Label)
	}
}

func TestSubmitParseFailed(t *testing.T) {
	t.Parallel()
	s := newTestService()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	res := s.Submit("chat-1", "記得吃藥", now)
	if res.Outcome != OutcomeParseFailed {
		t.Fatalf("Outcome = %v, want OutcomeParseFailed", res.Outcome)
	}
	if !errors.Is(res.Reason, ErrNoTimestamp) {
		t.Fatalf("Reason = %v, want ErrNoTimestamp", res.Reason)
	}
	if len(s.List("chat-1")) != 0 {
		t.Fatal("failed submission must not schedule a job")
	}
}

func TestSubmitReplacesIdenticalReminder(t *testing.T) {
	t.Parallel()
	s := newTestService()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	s.Submit("chat-1", "6月12日 15:30 看牙醫", now)
	s.Submit("chat-1", "6月12日 15:30 看牙醫 提前30分鐘提醒", now)

	jobs := s.List("chat-1")
	if len(jobs) != 1 {
		t.Fatalf("job count = %d, want 1 (replace, not duplicate)", len(jobs))
	}
	if jobs[0].Payload.LeadMinutes != 30 {
		t.Fatalf("LeadMinutes = %d, want latest submission's 30", jobs[0].Payload.LeadMinutes)
	}
}

func TestSubmitManagementVerbs(t *testing.T) {
	t.Parallel()
	s := newTestService()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, taipei)

	s.Submit("chat-1", "6月12日 15:30 看牙醫", now)
	s.Submit("chat-1", "7月1日 09:00 繳費", now)
	s.Submit("chat-2", "7月2日 09:00 開會", now)

	res := s.Submit("chat-1", "列表", now)
	if res.Outcome != OutcomeListed || len(res.Jobs) != 2 {
		t.Fatalf("list outcome = %v jobs = %d, want Listed/2", res.Outcome, len(res.Jobs))
	}

	res = s.Submit("chat-1", "清除", now)
	if res.Outcome != OutcomeCleared || res.Cleared != 2 {
		t.Fatalf("clear outcome = %v count = %d, want Cleared/2", res.Outcome, res.Cleared)
	}
	if len(s.List("chat-2")) != 1 {
		t.Fatal("clearing one owner must not touch another owner's jobs")
	}
}
