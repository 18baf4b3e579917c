// Package person models canonical person identities (osoby) and the name
// handling entity resolution depends on: birthdate parsing, free-text name
// parsing and diacritics-insensitive folding.
package person

import (
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Identity is a canonical person record. NameId is assigned once, on first
// save, and never reassigned afterward.
type Identity struct {
	Jmeno    string    `json:"jmeno"`
	Prijmeni string    `json:"prijmeni"`
	Narozeni time.Time `json:"narozeni"`
	NameID   string    `json:"nameId,omitempty"`
}

// UniqueNameID derives a stable identifier from the identity's natural key:
// folded name and surname plus a short hash of the full key. The same
// identity always yields the same id.
func (p *Identity) UniqueNameID() string {
	given := slug(p.Jmeno)
	surname := slug(p.Prijmeni)

	h := fnv.New32a()
	fmt.Fprintf(h, "%s|%s|%s", given, surname, p.Narozeni.UTC().Format("2006-01-02"))
	return fmt.Sprintf("%s-%s-%d", given, surname, h.Sum32()%1000)
}

func slug(s string) string {
	s = strings.ToLower(ASCIIFold(strings.TrimSpace(s)))
	var b strings.Builder
	for _, c := range s {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// ASCIIFold strips combining marks, mapping e.g. "Dvořák" to "Dvorak".
func ASCIIFold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// birthDateLayouts are the accepted wire formats for birthdates, most
// specific first.
var birthDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2.1.2006",
}

// ParseBirthDate parses a birthdate field value.
func ParseBirthDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty birthdate")
	}
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized birthdate %q", s)
}

// academicTitles are tokens dropped before splitting a full name into
// given name and surname.
var academicTitles = map[string]struct{}{
	"ing":    {},
	"mgr":    {},
	"bc":     {},
	"judr":   {},
	"mudr":   {},
	"phdr":   {},
	"rndr":   {},
	"paeddr": {},
	"dr":     {},
	"prof":   {},
	"doc":    {},
	"phd":    {},
	"ph.d":   {},
	"csc":    {},
	"drsc":   {},
	"mba":    {},
}

// ParseFullName heuristically splits a free-text name ("Ing. Jan Novák
// Ph.D.") into given name and surname: academic titles are dropped, the
// first remaining token is the given name and the rest form the surname.
func ParseFullName(fullName string) (*Identity, bool) {
	var tokens []string
	for _, tok := range strings.Fields(fullName) {
		key := strings.ToLower(strings.Trim(tok, ".,"))
		if _, isTitle := academicTitles[key]; isTitle {
			continue
		}
		tokens = append(tokens, strings.Trim(tok, ","))
	}
	if len(tokens) < 2 {
		return nil, false
	}
	return &Identity{
		Jmeno:    tokens[0],
		Prijmeni: strings.Join(tokens[1:], " "),
	}, true
}
