package document

import (
	"testing"
	"time"
)

func mustParse(t *testing.T, raw string) Object {
	t.Helper()
	o, err := Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return o
}

func TestParse_RejectsNonObject(t *testing.T) {
	for _, raw := range []string{`[1,2]`, `"text"`, `{broken`} {
		if _, err := Parse([]byte(raw)); err == nil {
			t.Errorf("Parse(%q): expected error", raw)
		}
	}
}

func TestHasID(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"upper Id", `{"Id":"a"}`, true},
		{"lower id", `{"id":"a"}`, true},
		{"numeric id", `{"id":12}`, true},
		{"absent", `{"name":"a"}`, false},
		{"explicit null", `{"Id":null}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mustParse(t, tt.raw).HasID(); got != tt.want {
				t.Errorf("HasID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStamp(t *testing.T) {
	o := mustParse(t, `{"Id":"1"}`)
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.FixedZone("CET", 3600))
	o.Stamp("author@example.com", now)

	created, ok := o.String(FieldDBCreated)
	if !ok || created != "2024-03-01T11:30:00Z" {
		t.Errorf("DbCreated = %q, want UTC RFC3339", created)
	}
	if by, _ := o.String(FieldDBCreatedBy); by != "author@example.com" {
		t.Errorf("DbCreatedBy = %q", by)
	}
}

func TestKeyFold(t *testing.T) {
	o := mustParse(t, `{"Jmeno":"Jan","PRIJMENI":"Novak"}`)

	if k, ok := o.KeyFold("jmeno", "name"); !ok || k != "Jmeno" {
		t.Errorf("KeyFold(jmeno) = %q, %v", k, ok)
	}
	if k, ok := o.KeyFold("prijmeni", "surname"); !ok || k != "PRIJMENI" {
		t.Errorf("KeyFold(prijmeni) = %q, %v", k, ok)
	}
	if _, ok := o.KeyFold("narozeni", "birthdate"); ok {
		t.Error("KeyFold found a key that is not present")
	}
}

func TestMarkers_RecursesObjectsAndArrays(t *testing.T) {
	o := mustParse(t, `{
		"Id": "1",
		"osoba": {"HsProcessType": "person", "Jmeno": "Jan"},
		"prilohy": [
			{"HsProcessType": "document", "DocumentUrl": "http://x/a.pdf"},
			{"nested": {"HsProcessType": "document"}}
		],
		"plain": {"no": "marker"}
	}`)

	markers := o.Markers()
	if len(markers) != 3 {
		t.Fatalf("Markers() returned %d, want 3", len(markers))
	}

	counts := map[string]int{}
	for _, m := range markers {
		counts[m.Type()]++
	}
	if counts[ProcessPerson] != 1 || counts[ProcessDocument] != 2 {
		t.Errorf("marker types = %v", counts)
	}
}

func TestMarkers_MutationReachesRoot(t *testing.T) {
	o := mustParse(t, `{"osoba":{"HsProcessType":"person"}}`)

	markers := o.Markers()
	if len(markers) != 1 {
		t.Fatalf("Markers() returned %d, want 1", len(markers))
	}
	markers[0].Object.Set(FieldOsobaID, "jan-novak-1")

	data, err := o.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	reparsed := mustParse(t, string(data))
	inner, _ := reparsed["osoba"].(map[string]any)
	if inner[FieldOsobaID] != "jan-novak-1" {
		t.Errorf("OsobaId not propagated to serialized document: %s", data)
	}
}

func TestMarkers_NoneOnPlainDocument(t *testing.T) {
	o := mustParse(t, `{"Id":"1","a":{"b":[1,2,3]}}`)
	if got := o.Markers(); len(got) != 0 {
		t.Errorf("Markers() = %d, want 0", len(got))
	}
}
