package sched

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func mkJob(owner string, fireAt time.Time, label string) Job {
	trigger := fireAt.Add(15 * time.Minute)
	return Job{
		ID:      JobID(owner, trigger),
		OwnerID: owner,
		FireAt:  fireAt,
		Payload: Payload{OwnerID: owner, Label: label, TriggerAt: trigger, LeadMinutes: 15},
	}
}

func TestStorePutReplaces(t *testing.T) {
	t.Parallel()
	st := NewStore()
	at := time.Now().Add(time.Hour)

	st.Put(mkJob("a", at, "first"))
	st.Put(mkJob("a", at, "second"))

	jobs := st.ListFor("a")
	if len(jobs) != 1 {
		t.Fatalf("job count = %d, want 1", len(jobs))
	}
	if jobs[0].Payload.Label != "second" {
		t.Fatalf("label = %q, want the replacing job's payload", jobs[0].Payload.Label)
	}
}

func TestStoreRemove(t *testing.T) {
	t.Parallel()
	st := NewStore()
	j := mkJob("a", time.Now().Add(time.Hour), "x")
	st.Put(j)

	if !st.Remove(j.ID) {
		t.Fatal("Remove existing = false, want true")
	}
	if st.Remove(j.ID) {
		t.Fatal("Remove absent = true, want false")
	}
}

func TestStoreRemoveAllForLeavesOtherOwners(t *testing.T) {
	t.Parallel()
	st := NewStore()
	base := time.Now().Add(time.Hour)
	for i := 0; i < 3; i++ {
		st.Put(mkJob("a", base.Add(time.Duration(i)*time.Minute), "a-job"))
	}
	st.Put(mkJob("b", base, "b-job"))

	if n := st.RemoveAllFor("a"); n != 3 {
		t.Fatalf("RemoveAllFor = %d, want 3", n)
	}
	if len(st.ListFor("a")) != 0 {
		t.Fatal("owner a still has jobs")
	}
	if len(st.ListFor("b")) != 1 {
		t.Fatal("owner b's job must survive")
	}
}

func TestStoreListForSorted(t *testing.T) {
	t.Parallel()
	st := NewStore()
	base := time.Now()
	st.Put(mkJob("a", base.Add(3*time.Hour), "late"))
	st.Put(mkJob("a", base.Add(1*time.Hour), "early"))
	st.Put(mkJob("a", base.Add(2*time.Hour), "mid"))

	jobs := st.ListFor("a")
	if len(jobs) != 3 {
		t.Fatalf("job count = %d, want 3", len(jobs))
	}
	for i := 1; i < len(jobs); i++ {
		if jobs[i].FireAt.Before(jobs[i-1].FireAt) {
			t.Fatalf("jobs not sorted by FireAt: %v before %v", jobs[i].FireAt, jobs[i-1].FireAt)
		}
	}
}

func TestStoreDueClaims(t *testing.T) {
	t.Parallel()
	st := NewStore()
	now := time.Now()
	st.Put(mkJob("a", now.Add(-time.Minute), "due"))
	st.Put(mkJob("a", now.Add(time.Hour), "future"))

	due := st.Due(now)
	if len(due) != 1 || due[0].Payload.Label != "due" {
		t.Fatalf("Due = %+v, want exactly the overdue job", due)
	}
	if len(st.Due(now)) != 0 {
		t.Fatal("second Due call returned an already-claimed job")
	}
	if len(st.ListFor("a")) != 1 {
		t.Fatal("future job must remain")
	}
}

func TestStoreDueClaimsOnceUnderConcurrency(t *testing.T) {
	t.Parallel()
	st := NewStore()
	now := time.Now()

	const jobs = 200
	for i := 0; i < jobs; i++ {
		st.Put(mkJob(fmt.Sprintf("owner-%d", i%7), now.Add(-time.Duration(i+1)*time.Second), "due"))
	}

	var claimed int64
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				got := st.Due(now)
				if len(got) == 0 {
					return
				}
				atomic.AddInt64(&claimed, int64(len(got)))
			}
		}()
	}
	wg.Wait()

	if claimed != jobs {
		t.Fatalf("claimed = %d, want %d (never zero, never twice)", claimed, jobs)
	}
	if st.Len() != 0 {
		t.Fatalf("store length = %d, want 0", st.Len())
	}
}
