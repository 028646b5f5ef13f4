package system

import (
	"context"
	"errors"
	"testing"
)

type probeService struct {
	name    string
	started *[]string
	stopped *[]string
	fail    bool
}

func (p *probeService) Name() string { return p.name }

func (p *probeService) Start(context.Context) error {
	if p.fail {
		return errors.New("boom")
	}
	*p.started = append(*p.started, p.name)
	return nil
}

func (p *probeService) Stop(context.Context) error {
	*p.stopped = append(*p.stopped, p.name)
	return nil
}

func TestManager_StopsInReverseOrder(t *testing.T) {
	var started, stopped []string
	m := NewManager()
	for _, name := range []string{"a", "b", "c"} {
		if err := m.Register(&probeService{name: name, started: &started, stopped: &stopped}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	ctx := context.Background()
	if err := m.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"c", "b", "a"}
	if len(stopped) != len(want) {
		t.Fatalf("expected %d stops, got %d", len(want), len(stopped))
	}
	for i, name := range want {
		if stopped[i] != name {
			t.Fatalf("stop order %v, want %v", stopped, want)
		}
	}
}

func TestManager_RollsBackOnStartFailure(t *testing.T) {
	var started, stopped []string
	m := NewManager()
	_ = m.Register(&probeService{name: "ok", started: &started, stopped: &stopped})
	_ = m.Register(&probeService{name: "bad", started: &started, stopped: &stopped, fail: true})

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("expected start to fail")
	}
	if len(stopped) != 1 || stopped[0] != "ok" {
		t.Fatalf("expected rollback stop of ok, got %v", stopped)
	}
}

func TestManager_RejectsDuplicateNames(t *testing.T) {
	m := NewManager()
	if err := m.Register(NoopService{ServiceName: "x"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := m.Register(NoopService{ServiceName: "x"}); err == nil {
		t.Fatal("expected duplicate registration to fail")
	}
}
