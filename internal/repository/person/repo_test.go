package person

import (
	"context"
	"testing"
	"time"

	domper "github.com/statwatch/datasets/internal/domain/person"
)

type fakeStore struct {
	hashes map[string]map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{hashes: map[string]map[string]string{}}
}

func (f *fakeStore) HSet(_ context.Context, key string, fields map[string]string) error {
	f.hashes[key] = fields
	return nil
}

func (f *fakeStore) HGetAll(_ context.Context, key string) (map[string]string, error) {
	return f.hashes[key], nil
}

func novak() *domper.Identity {
	p := &domper.Identity{
		Jmeno:    "Jan",
		Prijmeni: "Dvořák",
		Narozeni: time.Date(1960, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	p.NameID = p.UniqueNameID()
	return p
}

func TestSaveAndFindExact(t *testing.T) {
	r := New(newFakeStore())
	ctx := context.Background()
	p := novak()

	if err := r.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := r.FindExact(ctx, "Jan", "Dvořák", p.Narozeni)
	if err != nil {
		t.Fatalf("FindExact: %v", err)
	}
	if got == nil || got.NameID != p.NameID {
		t.Fatalf("got = %+v", got)
	}
	if !got.Narozeni.Equal(p.Narozeni) {
		t.Fatalf("Narozeni = %v", got.Narozeni)
	}
}

func TestFindASCIIMatchesFoldedName(t *testing.T) {
	r := New(newFakeStore())
	ctx := context.Background()
	p := novak()

	if err := r.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := r.FindASCII(ctx, "Jan", "Dvorak", p.Narozeni)
	if err != nil {
		t.Fatalf("FindASCII: %v", err)
	}
	if got == nil || got.Prijmeni != "Dvořák" {
		t.Fatalf("got = %+v", got)
	}
}

func TestFindMissReturnsNilNil(t *testing.T) {
	r := New(newFakeStore())
	born := time.Date(1970, 5, 5, 0, 0, 0, 0, time.UTC)

	got, err := r.FindExact(context.Background(), "Eva", "Novotná", born)
	if err != nil {
		t.Fatalf("FindExact: %v", err)
	}
	if got != nil {
		t.Fatalf("got = %+v, want nil", got)
	}
}

func TestKeyIsCaseInsensitive(t *testing.T) {
	r := New(newFakeStore())
	ctx := context.Background()
	p := novak()

	if err := r.Save(ctx, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := r.FindExact(ctx, "jan", "dvořák", p.Narozeni)
	if err != nil || got == nil {
		t.Fatalf("got=%v err=%v", got, err)
	}
}
