package views

import (
	"sync/atomic"
	"testing"
	"time"
)

type fakeView struct {
	closed atomic.Int32
	used   time.Time
}

func (v *fakeView) Close()              { v.closed.Add(1) }
func (v *fakeView) LastUsed() time.Time { return v.used }

func TestGetCreatesOnce(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[*fakeView]("test", nil)
	opened := 0
	open := func() *fakeView { opened++; return &fakeView{} }

	a := reg.Get("s1", "v", open)
	b := reg.Get("s1", "v", open)
	if a != b || opened != 1 {
		t.Fatalf("opened %d views", opened)
	}
	if _, ok := reg.Lookup("s2", "v"); ok {
		t.Fatal("views leaked across sessions")
	}
}

func TestDropClosesOnlyThatSession(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[*fakeView]("test", nil)
	a := reg.Get("s1", "form", func() *fakeView { return &fakeView{} })
	b := reg.Get("s1", "events", func() *fakeView { return &fakeView{} })
	c := reg.Get("s2", "form", func() *fakeView { return &fakeView{} })

	if n := reg.Drop("s1"); n != 2 {
		t.Fatalf("Drop() = %d", n)
	}
	if a.closed.Load() != 1 || b.closed.Load() != 1 || c.closed.Load() != 0 {
		t.Fatal("wrong views closed")
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d", reg.Len())
	}
}

func TestReplaceClosesPrevious(t *testing.T) {
	t.Parallel()

	reg := NewRegistry[*fakeView]("test", nil)
	old := reg.Get("s1", "form", func() *fakeView { return &fakeView{} })
	fresh := &fakeView{}
	reg.Replace("s1", "form", fresh)
	if old.closed.Load() != 1 {
		t.Fatal("replaced view not closed")
	}
	if got, _ := reg.Lookup("s1", "form"); got != fresh {
		t.Fatal("replacement not installed")
	}
}

func TestSweeperClosesIdleViews(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	reg := NewRegistry[*fakeView]("cascades", nil)
	stale := reg.Get("s1", "a", func() *fakeView { return &fakeView{used: now.Add(-time.Hour)} })
	live := reg.Get("s1", "b", func() *fakeView { return &fakeView{used: now.Add(-time.Minute)} })

	s, err := NewSweeper("*/5 * * * *", 20*time.Minute, nil, reg)
	if err != nil {
		t.Fatalf("NewSweeper() error = %v", err)
	}
	s.now = func() time.Time { return now }
	if n := s.Run(); n != 1 {
		t.Fatalf("Run() = %d", n)
	}
	if stale.closed.Load() != 1 || live.closed.Load() != 0 {
		t.Fatal("wrong view swept")
	}
}

func TestNewSweeperRejectsBadSpec(t *testing.T) {
	t.Parallel()

	if _, err := NewSweeper("every tuesday", time.Minute, nil); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}
