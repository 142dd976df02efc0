package debugger

import (
	"testing"
)

func TestCommandHistory_Add(t *testing.T) {
	h := NewCommandHistory()

	h.Add("step")
	h.Add("continue")
	h.Add("break 0x1000")

	if h.Size() != 3 {
		t.Errorf("Size = %d, want 3", h.Size())
	}

	all := h.GetAll()
	if len(all) != 3 {
		t.Errorf("GetAll() length = %d, want 3", len(all))
	}

	if all[0] != "step" {
		t.Errorf("First command = %s, want step", all[0])
	}
}

func TestCommandHistory_IgnoreEmpty(t *testing.T) {
	h := NewCommandHistory()

	h.Add("step")
	h.Add("")
	h.Add("continue")

	if h.Size() != 2 {
		t.Errorf("Size = %d, want 2 (empty commands should be ignored)", h.Size())
	}
}

func TestCommandHistory_IgnoreConsecutiveDuplicates(t *testing.T) {
	h := NewCommandHistory()

	h.Add("step")
	h.Add("step")
	h.Add("step")

	if h.Size() != 1 {
		t.Errorf("Size = %d, want 1 (consecutive duplicates should collapse)", h.Size())
	}
}

func TestCommandHistory_PreviousNext(t *testing.T) {
	h := NewCommandHistory()

	h.Add("step")
	h.Add("continue")
	h.Add("break 0x1000")

	if got := h.Previous(); got != "break 0x1000" {
		t.Errorf("Previous() = %q, want %q", got, "break 0x1000")
	}
	if got := h.Previous(); got != "continue" {
		t.Errorf("Previous() = %q, want %q", got, "continue")
	}
	if got := h.Next(); got != "break 0x1000" {
		t.Errorf("Next() = %q, want %q", got, "break 0x1000")
	}
}

func TestCommandHistory_ExpandBangBang(t *testing.T) {
	h := NewCommandHistory()
	h.Add("stepi")
	h.Add("x/4w $sp")

	got, err := h.Expand("!!")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "x/4w $sp" {
		t.Errorf("Expand(!!) = %q, want %q", got, "x/4w $sp")
	}
}

func TestCommandHistory_ExpandByIndex(t *testing.T) {
	h := NewCommandHistory()
	h.Add("stepi")
	h.Add("continue")
	h.Add("break 0x1000")

	if got, err := h.Expand("!1"); err != nil || got != "stepi" {
		t.Errorf("Expand(!1) = (%q, %v), want (\"stepi\", nil)", got, err)
	}
	if got, err := h.Expand("!-1"); err != nil || got != "break 0x1000" {
		t.Errorf("Expand(!-1) = (%q, %v), want (\"break 0x1000\", nil)", got, err)
	}
}

func TestCommandHistory_ExpandNonBangPassesThrough(t *testing.T) {
	h := NewCommandHistory()
	h.Add("stepi")

	got, err := h.Expand("continue")
	if err != nil {
		t.Fatalf("Expand: %v", err)
	}
	if got != "continue" {
		t.Errorf("Expand(continue) = %q, want unchanged", got)
	}
}

func TestCommandHistory_ExpandErrors(t *testing.T) {
	h := NewCommandHistory()

	if _, err := h.Expand("!!"); err == nil {
		t.Error("expected an error expanding !! against empty history")
	}

	h.Add("stepi")
	if _, err := h.Expand("!99"); err == nil {
		t.Error("expected an error for an out-of-range index")
	}
	if _, err := h.Expand("!nope"); err == nil {
		t.Error("expected an error for a non-numeric reference")
	}
}

func TestCommandHistory_GetLast(t *testing.T) {
	h := NewCommandHistory()

	if got := h.GetLast(); got != "" {
		t.Errorf("GetLast() on empty history = %q, want empty", got)
	}

	h.Add("step")
	h.Add("continue")

	if got := h.GetLast(); got != "continue" {
		t.Errorf("GetLast() = %q, want %q", got, "continue")
	}
}

func TestCommandHistory_Clear(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("continue")

	h.Clear()

	if h.Size() != 0 {
		t.Errorf("Size after Clear = %d, want 0", h.Size())
	}
}

func TestCommandHistory_Search(t *testing.T) {
	h := NewCommandHistory()
	h.Add("break 0x1000")
	h.Add("break 0x2000")
	h.Add("continue")

	results := h.Search("break")
	if len(results) != 2 {
		t.Errorf("Search(break) returned %d results, want 2", len(results))
	}
}
