package server

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildRotationThreePlayers(t *testing.T) {
	ids := []string{"A", "B", "C"}
	prompts := map[string]string{"A": "cat", "B": "dog", "C": "sun"}
	names := map[string]string{"A": "Ada", "B": "Ben", "C": "Cam"}

	rot := buildRotation(ids, prompts, names)

	want := map[string]Target{
		"A": {Prompt: "dog", FromID: "B", FromName: "Ben"},
		"B": {Prompt: "sun", FromID: "C", FromName: "Cam"},
		"C": {Prompt: "cat", FromID: "A", FromName: "Ada"},
	}
	if diff := cmp.Diff(want, rot.targets); diff != "" {
		t.Fatalf("unexpected targets (-want +got):\n%s", diff)
	}
	wantReceivers := map[string]string{"B": "A", "C": "B", "A": "C"}
	if diff := cmp.Diff(wantReceivers, rot.receiverOf); diff != "" {
		t.Fatalf("unexpected receivers (-want +got):\n%s", diff)
	}
}

func TestBuildRotationSinglePlayerDrawsOwnPrompt(t *testing.T) {
	rot := buildRotation([]string{"solo"}, map[string]string{"solo": "tree"}, map[string]string{"solo": "Sol"})
	target, ok := rot.targets["solo"]
	if !ok || target.FromID != "solo" || target.Prompt != "tree" {
		t.Fatalf("expected self mapping, got %#v", rot.targets)
	}
	if rot.receiverOf["solo"] != "solo" {
		t.Fatalf("expected solo to receive own prompt, got %q", rot.receiverOf["solo"])
	}
}

func TestBuildRotationIsDerangement(t *testing.T) {
	for n := 2; n <= 12; n++ {
		ids := make([]string, n)
		prompts := make(map[string]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("p%d", i)
			prompts[ids[i]] = fmt.Sprintf("prompt-%d", i)
		}
		rot := buildRotation(ids, prompts, nil)
		if len(rot.targets) != n {
			t.Fatalf("n=%d: expected %d targets, got %d", n, n, len(rot.targets))
		}
		sources := make(map[string]int, n)
		for receiver, target := range rot.targets {
			if receiver == target.FromID {
				t.Fatalf("n=%d: %s draws own prompt", n, receiver)
			}
			sources[target.FromID]++
			if rot.receiverOf[target.FromID] != receiver {
				t.Fatalf("n=%d: inverse index disagrees for %s", n, target.FromID)
			}
		}
		for _, id := range ids {
			if sources[id] != 1 {
				t.Fatalf("n=%d: %s used as source %d times", n, id, sources[id])
			}
		}
	}
}
