package analysis

import (
	"context"
	"strings"
	"testing"
)

func TestIssue_LengthAndAlphabet(t *testing.T) {
	issuer := NewShareTokenIssuer(newMockStore())

	token, err := issuer.Issue(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(token) != shareTokenLength {
		t.Errorf("expected %d characters, got %d (%q)", shareTokenLength, len(token), token)
	}
	for _, r := range token {
		if !strings.ContainsRune(shareTokenAlphabet, r) {
			t.Errorf("character %q outside the token alphabet", r)
		}
	}
}

func TestIssue_Distinct(t *testing.T) {
	issuer := NewShareTokenIssuer(newMockStore())
	seen := make(map[string]bool)

	for i := 0; i < 100; i++ {
		token, err := issuer.Issue(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}

func TestIssue_RetriesOnCollision(t *testing.T) {
	st := newMockStore()
	issuer := NewShareTokenIssuer(st)

	// Pre-existing tokens can't realistically collide with fresh random
	// ones, so simulate collisions by marking everything taken, then free
	// the space after checking the failure path.
	st.markAllTokensTaken = true
	_, err := issuer.Issue(context.Background())
	if err == nil {
		t.Fatal("expected exhaustion error when every token collides")
	}
	if !strings.Contains(err.Error(), "attempts") {
		t.Errorf("exhaustion error should mention attempts: %v", err)
	}

	st.markAllTokensTaken = false
	if _, err := issuer.Issue(context.Background()); err != nil {
		t.Errorf("issue should succeed once collisions stop: %v", err)
	}
}
