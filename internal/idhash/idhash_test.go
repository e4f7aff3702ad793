package idhash

import "testing"

func TestComputeTokenID(t *testing.T) {
	id := ComputeTokenID("MintABC", "CreatorXYZ")

	if len(id) != 64 {
		t.Errorf("Expected 64-char hex id, got %d chars", len(id))
	}

	// Deterministic
	if id != ComputeTokenID("MintABC", "CreatorXYZ") {
		t.Error("Same inputs must produce the same id")
	}

	// Any input change produces a different id
	if id == ComputeTokenID("MintABD", "CreatorXYZ") {
		t.Error("Different mint must produce a different id")
	}
	if id == ComputeTokenID("MintABC", "CreatorXYW") {
		t.Error("Different creator must produce a different id")
	}

	// Separator prevents ambiguous concatenation
	if ComputeTokenID("ab", "c") == ComputeTokenID("a", "bc") {
		t.Error("Field boundaries must be preserved")
	}
}
