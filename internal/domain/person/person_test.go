package person

import (
	"testing"
	"time"
)

func TestUniqueNameID_Deterministic(t *testing.T) {
	born := time.Date(1970, 5, 1, 0, 0, 0, 0, time.UTC)
	a := &Identity{Jmeno: "Ján", Prijmeni: "Dvořák", Narozeni: born}
	b := &Identity{Jmeno: "Ján", Prijmeni: "Dvořák", Narozeni: born}

	if a.UniqueNameID() != b.UniqueNameID() {
		t.Errorf("same identity produced different ids: %s vs %s", a.UniqueNameID(), b.UniqueNameID())
	}

	c := &Identity{Jmeno: "Ján", Prijmeni: "Dvořák", Narozeni: born.AddDate(1, 0, 0)}
	if a.UniqueNameID() == c.UniqueNameID() {
		t.Error("different birthdates produced the same id")
	}
}

func TestASCIIFold(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Dvořák", "Dvorak"},
		{"Černý", "Cerny"},
		{"Smith", "Smith"},
		{"Růžičková", "Ruzickova"},
	}
	for _, tt := range tests {
		if got := ASCIIFold(tt.in); got != tt.want {
			t.Errorf("ASCIIFold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseBirthDate(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"1970-05-01", true, time.Date(1970, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"1970-05-01T00:00:00Z", true, time.Date(1970, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"1.5.1970", true, time.Date(1970, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}
	for _, tt := range tests {
		got, err := ParseBirthDate(tt.in)
		if tt.ok != (err == nil) {
			t.Errorf("ParseBirthDate(%q) err = %v, want ok=%v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && !got.Equal(tt.want) {
			t.Errorf("ParseBirthDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFullName(t *testing.T) {
	tests := []struct {
		in       string
		ok       bool
		jmeno    string
		prijmeni string
	}{
		{"Jan Novák", true, "Jan", "Novák"},
		{"Ing. Jan Novák", true, "Jan", "Novák"},
		{"prof. MUDr. Jana Nováková, CSc.", true, "Jana", "Nováková"},
		{"Jan van der Berg", true, "Jan", "van der Berg"},
		{"Novák", false, "", ""},
		{"Ing.", false, "", ""},
		{"", false, "", ""},
	}
	for _, tt := range tests {
		got, ok := ParseFullName(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseFullName(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if got.Jmeno != tt.jmeno || got.Prijmeni != tt.prijmeni {
			t.Errorf("ParseFullName(%q) = %q %q, want %q %q", tt.in, got.Jmeno, got.Prijmeni, tt.jmeno, tt.prijmeni)
		}
	}
}
