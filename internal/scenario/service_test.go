package scenario

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/galaxy"
	"github.com/paintgalaxy/server/internal/namefilter"
)

type memoryStore struct {
	saved []*database.Scenario
	err   error
}

func (m *memoryStore) SaveScenario(s *database.Scenario) error {
	if m.err != nil {
		return m.err
	}
	s.ID = "scenario-" + string(rune('a'+len(m.saved)))
	m.saved = append(m.saved, s)
	return nil
}

func testMap() *galaxy.Map {
	return &galaxy.Map{
		Name:               "Triangle",
		Stars:              []galaxy.Point{{X: 100, Y: 100}, {X: 200, Y: 100}, {X: 150, Y: 200}},
		Connections:        []galaxy.Connection{{{X: 100, Y: 100}, {X: 200, Y: 100}}, {{X: 200, Y: 100}, {X: 150, Y: 200}}},
		PotentialHomeStars: []galaxy.Point{{X: 100, Y: 100}},
		Nebulas:            []galaxy.Nebula{{X: 400, Y: 400, Radius: 20}},
	}
}

func seed(v int64) *int64 { return &v }

func TestGenerateWithSeed(t *testing.T) {
	svc := NewService(galaxy.DefaultSettings(), nil)

	a, err := svc.Generate(context.Background(), Request{Map: testMap(), Seed: seed(7)})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := svc.Generate(context.Background(), Request{Map: testMap(), Seed: seed(7)})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if a.Seed != 7 {
		t.Errorf("Seed = %d, want 7", a.Seed)
	}
	if a.Scenario != b.Scenario {
		t.Error("same seed should produce the same scenario")
	}
	if a.Fingerprint == "" || a.Fingerprint != b.Fingerprint {
		t.Errorf("fingerprints %q, %q", a.Fingerprint, b.Fingerprint)
	}
	if !strings.HasPrefix(a.Scenario, "static_galaxy_scenario = {") {
		t.Errorf("unexpected scenario start: %q", a.Scenario[:40])
	}
	if a.Summary.Stars != 3 || a.Summary.OneJump != 1 || a.Summary.TwoJumps != 1 {
		t.Errorf("unexpected summary: %+v", a.Summary)
	}
	if a.ID != "" {
		t.Error("unsaved result should have no id")
	}
}

func TestGenerateFreshSeed(t *testing.T) {
	svc := NewService(galaxy.DefaultSettings(), nil)
	svc.newSeed = func() int64 { return 99 }

	res, err := svc.Generate(context.Background(), Request{Map: testMap()})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Seed != 99 {
		t.Errorf("Seed = %d, want 99", res.Seed)
	}
}

func TestGenerateInvalidMap(t *testing.T) {
	svc := NewService(galaxy.DefaultSettings(), nil)

	bad := testMap()
	bad.Connections = append(bad.Connections, galaxy.Connection{{X: 100, Y: 100}, {X: 999, Y: 999}})
	if _, err := svc.Generate(context.Background(), Request{Map: bad}); !errors.Is(err, galaxy.ErrInvalidMap) {
		t.Errorf("expected ErrInvalidMap, got %v", err)
	}

	if _, err := svc.Generate(context.Background(), Request{}); !errors.Is(err, galaxy.ErrInvalidMap) {
		t.Errorf("expected ErrInvalidMap for nil map, got %v", err)
	}
}

func TestGenerateCanceled(t *testing.T) {
	svc := NewService(galaxy.DefaultSettings(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Generate(ctx, Request{Map: testMap()}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateSave(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(galaxy.DefaultSettings(), store)

	res, err := svc.Generate(context.Background(), Request{Map: testMap(), Seed: seed(3), Save: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.ID != "scenario-a" {
		t.Errorf("ID = %q", res.ID)
	}
	if len(store.saved) != 1 {
		t.Fatalf("expected one saved scenario, got %d", len(store.saved))
	}

	rec := store.saved[0]
	if rec.Body != res.Scenario || rec.Seed != 3 || rec.Fingerprint != res.Fingerprint {
		t.Errorf("archived record does not match result: %+v", rec)
	}
	if rec.SizeTier != "tiny" || rec.StarCount != 3 {
		t.Errorf("unexpected metadata: %+v", rec)
	}
	if !strings.Contains(rec.MapYAML, "name: Triangle") {
		t.Errorf("map document not archived:\n%s", rec.MapYAML)
	}
}

func TestGenerateSaveWithoutStore(t *testing.T) {
	svc := NewService(galaxy.DefaultSettings(), nil)
	if _, err := svc.Generate(context.Background(), Request{Map: testMap(), Save: true}); !errors.Is(err, ErrNoArchive) {
		t.Errorf("expected ErrNoArchive, got %v", err)
	}
}

func TestGenerateSaveNameFilter(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(galaxy.DefaultSettings(), store)
	svc.SetNameFilter(namefilter.New(&namefilter.Config{Enabled: true, BannedWords: []string{"triangle"}}))

	_, err := svc.Generate(context.Background(), Request{Map: testMap(), Save: true})
	if !errors.Is(err, namefilter.ErrNameNotAllowed) {
		t.Fatalf("expected ErrNameNotAllowed, got %v", err)
	}
	if len(store.saved) != 0 {
		t.Error("rejected map should not be archived")
	}

	// Unsaved previews are not screened.
	if _, err := svc.Generate(context.Background(), Request{Map: testMap()}); err != nil {
		t.Errorf("unsaved generate failed: %v", err)
	}
}

func TestGenerateSaveFails(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	svc := NewService(galaxy.DefaultSettings(), store)

	if _, err := svc.Generate(context.Background(), Request{Map: testMap(), Save: true}); err == nil {
		t.Error("expected archive error")
	}
}

func TestRegenerate(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(galaxy.DefaultSettings(), store)

	original, err := svc.Generate(context.Background(), Request{Map: testMap(), Seed: seed(11), Save: true})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	again, err := svc.Regenerate(context.Background(), store.saved[0])
	if err != nil {
		t.Fatalf("Regenerate failed: %v", err)
	}
	if again.Scenario != original.Scenario {
		t.Error("regenerated scenario differs from the archived one")
	}
	if again.Fingerprint != original.Fingerprint {
		t.Error("archived map should fingerprint the same")
	}
}

func TestVerify(t *testing.T) {
	store := &memoryStore{}
	svc := NewService(galaxy.DefaultSettings(), store)

	if _, err := svc.Generate(context.Background(), Request{Map: testMap(), Seed: seed(4), Save: true}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	rec := store.saved[0]

	v, err := svc.Verify(context.Background(), rec)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !v.Match || v.ID != rec.ID || v.Seed != 4 {
		t.Errorf("unexpected verification: %+v", v)
	}

	tampered := *rec
	tampered.Body += "\n# edited"
	if v, err := svc.Verify(context.Background(), &tampered); err != nil || v.Match {
		t.Errorf("edited body should not match: %+v, %v", v, err)
	}

	broken := *rec
	broken.MapYAML = "stars: [oops"
	if _, err := svc.Verify(context.Background(), &broken); err == nil {
		t.Error("expected error for an unreadable archived map")
	}
}
