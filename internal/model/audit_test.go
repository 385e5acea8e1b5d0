package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func buildChain(t *testing.T, tenantID uuid.UUID, actions ...string) []AuditEvent {
	t.Helper()
	actorID := uuid.New()
	prev := GenesisHash
	events := make([]AuditEvent, 0, len(actions))
	at := time.Now().UTC().Truncate(time.Microsecond)

	for i, action := range actions {
		e := AuditEvent{
			ID:         uuid.New(),
			TenantID:   tenantID,
			Sequence:   int64(i + 1),
			EventAt:    at.Add(time.Duration(i) * time.Second),
			Actor:      "Test User",
			ActorID:    &actorID,
			Action:     action,
			EntityType: "transfer_request",
			EntityID:   uuid.New().String(),
			Details:    []byte(`{"quantity":10}`),
			PrevHash:   prev,
		}
		e.Hash = e.ComputeHash()
		prev = e.Hash
		events = append(events, e)
	}
	return events
}

func TestComputeHashIsDeterministic(t *testing.T) {
	events := buildChain(t, uuid.New(), "transfer.requested")
	e := events[0]

	if e.ComputeHash() != e.ComputeHash() {
		t.Fatal("hash of the same event must be stable")
	}

	tampered := e
	tampered.Action = "transfer.approved"
	if tampered.ComputeHash() == e.Hash {
		t.Fatal("changing a hashed field must change the hash")
	}

	tampered = e
	tampered.Details = []byte(`{"quantity":999}`)
	if tampered.ComputeHash() == e.Hash {
		t.Fatal("changing details must change the hash")
	}

	tampered = e
	tampered.EventAt = e.EventAt.Add(time.Microsecond)
	if tampered.ComputeHash() == e.Hash {
		t.Fatal("changing the timestamp must change the hash")
	}
}

func TestVerifyChainIntact(t *testing.T) {
	events := buildChain(t, uuid.New(), "a", "b", "c", "d")

	if idx, ok := VerifyChain(events, GenesisHash); !ok {
		t.Fatalf("intact chain reported broken at %d", idx)
	}
	if idx, ok := VerifyChain(nil, GenesisHash); !ok || idx != -1 {
		t.Fatal("empty chain is trivially intact")
	}

	// A sub-range anchored at its predecessor's hash also verifies.
	if idx, ok := VerifyChain(events[2:], events[1].Hash); !ok {
		t.Fatalf("anchored sub-range reported broken at %d", idx)
	}
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	events := buildChain(t, uuid.New(), "a", "b", "c", "d")

	// Mutating a middle event breaks verification at that event.
	events[1].Details = []byte(`{"quantity":12345}`)
	idx, ok := VerifyChain(events, GenesisHash)
	if ok || idx != 1 {
		t.Fatalf("got (%d, %v), want (1, false)", idx, ok)
	}

	// Recomputing only the mutated event's hash moves the break to the
	// next link: the cascade cannot be hidden without rewriting the tail.
	events[1].Hash = events[1].ComputeHash()
	idx, ok = VerifyChain(events, GenesisHash)
	if ok || idx != 2 {
		t.Fatalf("got (%d, %v), want (2, false)", idx, ok)
	}
}

func TestVerifyChainDetectsDeletedLink(t *testing.T) {
	events := buildChain(t, uuid.New(), "a", "b", "c")

	// Dropping the middle event breaks the linkage at the follower.
	spliced := []AuditEvent{events[0], events[2]}
	idx, ok := VerifyChain(spliced, GenesisHash)
	if ok || idx != 1 {
		t.Fatalf("got (%d, %v), want (1, false)", idx, ok)
	}
}

func TestVerifyChainDetectsWrongAnchor(t *testing.T) {
	events := buildChain(t, uuid.New(), "a", "b")

	idx, ok := VerifyChain(events, "deadbeef")
	if ok || idx != 0 {
		t.Fatalf("got (%d, %v), want (0, false)", idx, ok)
	}
}
