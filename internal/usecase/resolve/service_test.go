package resolve

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/statwatch/datasets/internal/domain/document"
	"github.com/statwatch/datasets/internal/domain/person"
)

// --- Mocks ---

type mockDirectory struct {
	mu         sync.Mutex
	exact      map[string]*person.Identity
	ascii      map[string]*person.Identity
	saved      []*person.Identity
	findErr    error
	saveErr    error
	findDelay  time.Duration
	exactCalls int
}

func key(jmeno, prijmeni string, born time.Time) string {
	return jmeno + "|" + prijmeni + "|" + born.Format("2006-01-02")
}

func (m *mockDirectory) FindExact(_ context.Context, jmeno, prijmeni string, born time.Time) (*person.Identity, error) {
	m.mu.Lock()
	m.exactCalls++
	p := m.exact[key(jmeno, prijmeni, born)]
	m.mu.Unlock()
	if m.findDelay > 0 {
		time.Sleep(m.findDelay)
	}
	if m.findErr != nil {
		return nil, m.findErr
	}
	return p, nil
}

func (m *mockDirectory) FindASCII(_ context.Context, jmeno, prijmeni string, born time.Time) (*person.Identity, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ascii[key(jmeno, prijmeni, born)], nil
}

func (m *mockDirectory) Save(_ context.Context, p *person.Identity) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, p)
	return nil
}

func marker(t *testing.T, raw string) document.Object {
	t.Helper()
	o, err := document.Parse([]byte(raw))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return o
}

// osobaID distinguishes: value set to string / set to explicit null / key absent.
func osobaID(t *testing.T, m document.Object) (string, bool, bool) {
	t.Helper()
	v, present := m[document.FieldOsobaID]
	if !present {
		return "", false, false
	}
	if v == nil {
		return "", true, true
	}
	s, _ := v.(string)
	return s, false, true
}

var born = time.Date(1970, 5, 1, 0, 0, 0, 0, time.UTC)

func TestResolveMarker_StructuredMatch(t *testing.T) {
	dir := &mockDirectory{exact: map[string]*person.Identity{
		key("Jan", "Novák", born): {Jmeno: "Jan", Prijmeni: "Novák", Narozeni: born, NameID: "jan-novak-1"},
	}}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","Jmeno":"Jan","Prijmeni":"Novák","Narozeni":"1970-05-01"}`)
	svc.ResolveMarker(context.Background(), m)

	id, _, set := osobaID(t, m)
	if !set || id != "jan-novak-1" {
		t.Errorf("OsobaId = %q (set=%v), want jan-novak-1", id, set)
	}
	if len(dir.saved) != 0 {
		t.Errorf("identity with NameId should not be re-saved, got %d saves", len(dir.saved))
	}
}

func TestResolveMarker_ASCIIFallback(t *testing.T) {
	dir := &mockDirectory{ascii: map[string]*person.Identity{
		key("Jan", "Novak", born): {Jmeno: "Jan", Prijmeni: "Novak", Narozeni: born, NameID: "jan-novak-2"},
	}}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","name":"Jan","surname":"Novak","birthdate":"1970-05-01"}`)
	svc.ResolveMarker(context.Background(), m)

	if id, _, _ := osobaID(t, m); id != "jan-novak-2" {
		t.Errorf("OsobaId = %q, want jan-novak-2", id)
	}
}

func TestResolveMarker_AssignsNameIDOnFirstSave(t *testing.T) {
	existing := &person.Identity{Jmeno: "Jan", Prijmeni: "Novák", Narozeni: born}
	dir := &mockDirectory{exact: map[string]*person.Identity{
		key("Jan", "Novák", born): existing,
	}}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","Jmeno":"Jan","Prijmeni":"Novák","Narozeni":"1970-05-01"}`)
	svc.ResolveMarker(context.Background(), m)

	if len(dir.saved) != 1 {
		t.Fatalf("expected one save, got %d", len(dir.saved))
	}
	want := existing.UniqueNameID()
	if id, _, _ := osobaID(t, m); id != want {
		t.Errorf("OsobaId = %q, want %q", id, want)
	}
}

func TestResolveMarker_CreatesUnknownIdentity(t *testing.T) {
	dir := &mockDirectory{}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","Jmeno":"Eva","Prijmeni":"Svobodová","Narozeni":"1980-01-02"}`)
	svc.ResolveMarker(context.Background(), m)

	if len(dir.saved) != 1 {
		t.Fatalf("expected created identity to be saved, got %d saves", len(dir.saved))
	}
	id, isNull, set := osobaID(t, m)
	if !set || isNull || id == "" {
		t.Errorf("OsobaId = %q (null=%v set=%v), want generated NameId", id, isNull, set)
	}
	if id != dir.saved[0].NameID {
		t.Errorf("marker id %q differs from saved NameId %q", id, dir.saved[0].NameID)
	}
}

func TestResolveMarker_Deterministic(t *testing.T) {
	dir := &mockDirectory{}
	svc := New(dir, zap.NewNop())

	first := marker(t, `{"HsProcessType":"person","Jmeno":"Eva","Prijmeni":"Svobodová","Narozeni":"1980-01-02"}`)
	svc.ResolveMarker(context.Background(), first)
	firstID, _, _ := osobaID(t, first)

	// Second document, same natural key: directory now knows the identity.
	dir.mu.Lock()
	dir.exact = map[string]*person.Identity{
		key("Eva", "Svobodová", time.Date(1980, 1, 2, 0, 0, 0, 0, time.UTC)): dir.saved[0],
	}
	dir.mu.Unlock()

	second := marker(t, `{"HsProcessType":"person","Jmeno":"Eva","Prijmeni":"Svobodová","Narozeni":"1980-01-02"}`)
	svc.ResolveMarker(context.Background(), second)
	secondID, _, _ := osobaID(t, second)

	if firstID == "" || firstID != secondID {
		t.Errorf("resolution not deterministic: %q vs %q", firstID, secondID)
	}
}

// The lookup-then-save sequence has no atomicity: two concurrent resolutions
// of the same not-yet-known person both miss and both save. This test pins
// down that the race exists rather than pretending it is mitigated.
func TestResolveMarker_ConcurrentCreationRace(t *testing.T) {
	dir := &mockDirectory{findDelay: 10 * time.Millisecond}
	svc := New(dir, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := marker(t, `{"HsProcessType":"person","Jmeno":"Petr","Prijmeni":"Dvořák","Narozeni":"1975-03-04"}`)
			svc.ResolveMarker(context.Background(), m)
		}()
	}
	wg.Wait()

	if len(dir.saved) != 2 {
		t.Errorf("expected duplicate creation under concurrency, got %d saves", len(dir.saved))
	}
}

func TestResolveMarker_FreeTextPath(t *testing.T) {
	dir := &mockDirectory{exact: map[string]*person.Identity{
		key("Jan", "Novák", born): {Jmeno: "Jan", Prijmeni: "Novák", Narozeni: born, NameID: "jan-novak-1"},
	}}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","CeleJmeno":"Ing. Jan Novák","Narozeni":"1970-05-01"}`)
	svc.ResolveMarker(context.Background(), m)

	if id, _, _ := osobaID(t, m); id != "jan-novak-1" {
		t.Errorf("OsobaId = %q, want jan-novak-1", id)
	}
}

func TestResolveMarker_FreeTextUnparsable(t *testing.T) {
	dir := &mockDirectory{}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","fullname":"Novák","birthdate":"1970-05-01"}`)
	svc.ResolveMarker(context.Background(), m)

	_, isNull, set := osobaID(t, m)
	if !set || !isNull {
		t.Error("unparsable full name should leave explicit null OsobaId")
	}

	data, err := m.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var round map[string]json.RawMessage
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if string(round[document.FieldOsobaID]) != "null" {
		t.Errorf("serialized OsobaId = %s, want null", round[document.FieldOsobaID])
	}
}

func TestResolveMarker_SkipsWhenAlreadyResolved(t *testing.T) {
	dir := &mockDirectory{}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","OsobaId":"known-1","Jmeno":"Jan","Prijmeni":"Novák","Narozeni":"1970-05-01"}`)
	svc.ResolveMarker(context.Background(), m)

	if dir.exactCalls != 0 {
		t.Error("resolution ran despite populated OsobaId")
	}
	if id, _, _ := osobaID(t, m); id != "known-1" {
		t.Errorf("OsobaId overwritten to %q", id)
	}
}

func TestResolveMarker_UnparsableBirthdateLeavesMarkerUntouched(t *testing.T) {
	dir := &mockDirectory{}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","Jmeno":"Jan","Prijmeni":"Novák","Narozeni":"not-a-date"}`)
	svc.ResolveMarker(context.Background(), m)

	if _, _, set := osobaID(t, m); set {
		t.Error("OsobaId should not be set when birthdate does not parse")
	}
	if dir.exactCalls != 0 {
		t.Error("directory consulted despite unparsable birthdate")
	}
}

func TestResolveMarker_DirectoryErrorYieldsNull(t *testing.T) {
	dir := &mockDirectory{findErr: context.DeadlineExceeded}
	svc := New(dir, zap.NewNop())

	m := marker(t, `{"HsProcessType":"person","Jmeno":"Jan","Prijmeni":"Novák","Narozeni":"1970-05-01"}`)
	svc.ResolveMarker(context.Background(), m)

	_, isNull, set := osobaID(t, m)
	if !set || !isNull {
		t.Error("directory failure should record explicit null, not abort")
	}
}
