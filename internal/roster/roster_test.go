package roster

import (
	"errors"
	"strings"
	"testing"
)

func TestAdd_AssignsIDAndPlaceholder(t *testing.T) {
	s := New()
	st := s.Add(ProfileData{Name: "John Doe", RollNumber: "17", PhoneNumber: "555-0101"})

	if !strings.HasPrefix(st.ID, "s-") {
		t.Errorf("expected s- prefixed id, got %q", st.ID)
	}
	if len(st.Image) == 0 {
		t.Error("expected placeholder image to be generated")
	}
	if st.ImageMIME != "image/png" {
		t.Errorf("expected image/png placeholder, got %q", st.ImageMIME)
	}
}

func TestAdd_KeepsSuppliedImage(t *testing.T) {
	s := New()
	img := []byte{0xFF, 0xD8, 0xFF}
	st := s.Add(ProfileData{Name: "Jane", Image: img, ImageMIME: "image/jpeg"})

	if string(st.Image) != string(img) {
		t.Error("supplied image was replaced")
	}
	if st.ImageMIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", st.ImageMIME)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := New()
	a := s.Add(ProfileData{Name: "A"})
	b := s.Add(ProfileData{Name: "B"})
	c := s.Add(ProfileData{Name: "C"})

	list := s.List()
	if len(list) != 3 {
		t.Fatalf("expected 3 students, got %d", len(list))
	}
	want := []string{c.ID, b.ID, a.ID}
	for i, id := range want {
		if list[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, list[i].ID)
		}
	}
}

func TestUpdate_PreservesID(t *testing.T) {
	s := New()
	st := s.Add(ProfileData{Name: "Before", RollNumber: "1"})

	updated, err := s.Update(st.ID, ProfileData{Name: "After", RollNumber: "2", PhoneNumber: "555"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.ID != st.ID {
		t.Errorf("id changed: %s -> %s", st.ID, updated.ID)
	}
	if updated.Name != "After" || updated.RollNumber != "2" {
		t.Errorf("fields not replaced: %+v", updated)
	}

	got, ok := s.Get(st.ID)
	if !ok || got.Name != "After" {
		t.Errorf("store not updated: %+v", got)
	}
}

func TestUpdate_UnknownID(t *testing.T) {
	s := New()
	_, err := s.Update("s-missing", ProfileData{Name: "X"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	s := New()
	st := s.Add(ProfileData{Name: "Gone"})

	if !s.Remove(st.ID) {
		t.Error("expected removal of existing student")
	}
	if s.Remove(st.ID) {
		t.Error("expected removal of missing student to report false")
	}
	if _, ok := s.Get(st.ID); ok {
		t.Error("student still retrievable after removal")
	}
	if len(s.List()) != 0 {
		t.Error("list not empty after removal")
	}
}
