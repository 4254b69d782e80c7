package blog

import (
	"path/filepath"
	"testing"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "data", "render.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore(t *testing.T) {
	s := setupTestStore(t)
	if s.db == nil {
		t.Fatal("db should not be nil")
	}
	n, err := s.CountRenders()
	if err != nil {
		t.Fatalf("CountRenders failed: %v", err)
	}
	if n != 0 {
		t.Errorf("CountRenders = %d, want 0", n)
	}
}

func TestSaveAndGetRender(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SaveRender("first-post", "key-1", "<p>hello</p>"); err != nil {
		t.Fatalf("SaveRender failed: %v", err)
	}
	got, err := s.GetRender("first-post", "key-1")
	if err != nil {
		t.Fatalf("GetRender failed: %v", err)
	}
	if got != "<p>hello</p>" {
		t.Errorf("GetRender = %q, want %q", got, "<p>hello</p>")
	}
}

func TestGetRenderMissesOnKeyChange(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SaveRender("first-post", "key-1", "<p>old</p>"); err != nil {
		t.Fatalf("SaveRender failed: %v", err)
	}
	if _, err := s.GetRender("first-post", "key-2"); err != ErrNotFound {
		t.Errorf("GetRender with stale key: err = %v, want ErrNotFound", err)
	}
	if _, err := s.GetRender("nonexistent", "key-1"); err != ErrNotFound {
		t.Errorf("GetRender unknown slug: err = %v, want ErrNotFound", err)
	}
}

func TestSaveRenderReplaces(t *testing.T) {
	s := setupTestStore(t)

	if err := s.SaveRender("post", "key-1", "<p>old</p>"); err != nil {
		t.Fatalf("SaveRender failed: %v", err)
	}
	if err := s.SaveRender("post", "key-2", "<p>new</p>"); err != nil {
		t.Fatalf("SaveRender update failed: %v", err)
	}
	got, err := s.GetRender("post", "key-2")
	if err != nil {
		t.Fatalf("GetRender failed: %v", err)
	}
	if got != "<p>new</p>" {
		t.Errorf("GetRender = %q, want %q", got, "<p>new</p>")
	}
	if n, _ := s.CountRenders(); n != 1 {
		t.Errorf("CountRenders = %d, want 1", n)
	}
}

func TestPrune(t *testing.T) {
	s := setupTestStore(t)

	for _, slug := range []string{"a", "b", "c"} {
		if err := s.SaveRender(slug, "k", "<p>"+slug+"</p>"); err != nil {
			t.Fatalf("SaveRender failed: %v", err)
		}
	}
	removed, err := s.Prune([]string{"a", "c"})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune removed %d, want 1", removed)
	}
	if _, err := s.GetRender("b", "k"); err != ErrNotFound {
		t.Errorf("b should be pruned, err = %v", err)
	}
	if _, err := s.GetRender("a", "k"); err != nil {
		t.Errorf("a should be kept, err = %v", err)
	}

	removed, err = s.Prune(nil)
	if err != nil {
		t.Fatalf("Prune(nil) failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("Prune(nil) removed %d, want 2", removed)
	}
}
