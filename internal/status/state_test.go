package status

import (
	"testing"
	"time"

	"github.com/matheus3301/wamirror/internal/bus"
)

func TestInitialState(t *testing.T) {
	m := NewMachine(nil)
	if m.Current() != Booting {
		t.Errorf("initial state = %s, want BOOTING", m.Current())
	}
}

func TestValidTransitionChain(t *testing.T) {
	m := NewMachine(nil)
	for _, s := range []State{Connecting, Syncing, Ready, Reconnecting, Connecting} {
		if err := m.Transition(s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
}

func TestInvalidTransition(t *testing.T) {
	m := NewMachine(nil)
	if err := m.Transition(Ready); err == nil {
		t.Error("BOOTING → READY allowed, want error")
	}
	if m.Current() != Booting {
		t.Errorf("state changed on rejected transition: %s", m.Current())
	}
}

func TestLoggedOutPath(t *testing.T) {
	m := NewMachine(nil)
	for _, s := range []State{Connecting, Syncing, Ready, AuthRequired} {
		if err := m.Transition(s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
}

func TestTransitionPublishesChange(t *testing.T) {
	b := bus.New()
	ch, unsub := b.Subscribe("session.", 10)
	defer unsub()

	m := NewMachine(b)
	if err := m.Transition(Connecting); err != nil {
		t.Fatal(err)
	}

	select {
	case evt := <-ch:
		change, ok := evt.Payload.(StatusChange)
		if !ok {
			t.Fatalf("payload = %T, want StatusChange", evt.Payload)
		}
		if change.From != Booting || change.To != Connecting {
			t.Errorf("change = %+v", change)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for status change event")
	}
}
