package http11

import "testing"

func TestHeaderAddAndGet(t *testing.T) {
	var h Header
	if err := h.Add([]byte("Content-Type"), []byte("application/json")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := h.GetString([]byte("content-type")); got != "application/json" {
		t.Fatalf("GetString = %q, want application/json (case-insensitive lookup)", got)
	}
	if !h.Has([]byte("Content-Type")) {
		t.Fatal("Has = false, want true")
	}
}

func TestHeaderRejectsCRLFInjection(t *testing.T) {
	var h Header
	if err := h.Add([]byte("X-Evil"), []byte("value\r\nX-Injected: yes")); err == nil {
		t.Fatal("Add with embedded CRLF in value: got nil error, want rejection")
	}
	if err := h.Add([]byte("X-Evil\r\n"), []byte("value")); err == nil {
		t.Fatal("Add with embedded CRLF in name: got nil error, want rejection")
	}
}

func TestHeaderOverflowBeyondInlineCapacity(t *testing.T) {
	var h Header
	for i := 0; i < MaxHeaders+5; i++ {
		name := []byte{'A' + byte(i%26), 'B', 'C'}
		if err := h.Add(name, []byte("v")); err != nil {
			t.Fatalf("Add #%d: %v", i, err)
		}
	}
	if h.Len() != MaxHeaders+5 {
		t.Fatalf("Len = %d, want %d", h.Len(), MaxHeaders+5)
	}
}

func TestHeaderSetReplacesExisting(t *testing.T) {
	var h Header
	h.Add([]byte("X-Count"), []byte("1"))
	h.Set([]byte("X-Count"), []byte("2"))
	if got := h.GetString([]byte("X-Count")); got != "2" {
		t.Fatalf("GetString = %q, want 2", got)
	}
	if h.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (Set must not duplicate)", h.Len())
	}
}

func TestHeaderDel(t *testing.T) {
	var h Header
	h.Add([]byte("X-A"), []byte("1"))
	h.Add([]byte("X-B"), []byte("2"))
	h.Del([]byte("X-A"))
	if h.Has([]byte("X-A")) {
		t.Fatal("Has(X-A) = true after Del, want false")
	}
	if got := h.GetString([]byte("X-B")); got != "2" {
		t.Fatalf("GetString(X-B) = %q, want 2", got)
	}
}
