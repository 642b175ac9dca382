// Package scenario ties generation to the map codec and the archive.
package scenario

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/galaxy"
	"github.com/paintgalaxy/server/internal/logger"
	"github.com/paintgalaxy/server/internal/mapfile"
	"github.com/paintgalaxy/server/internal/namefilter"
)

// ErrNoArchive is returned when a save is requested but no store is configured.
var ErrNoArchive = errors.New("scenario archive not configured")

// Store is the subset of the archive the service writes to.
type Store interface {
	SaveScenario(s *database.Scenario) error
}

// Request asks for one generation. A nil Seed picks a fresh one.
type Request struct {
	Map  *galaxy.Map
	Seed *int64
	Save bool
}

// Result is a generated scenario and what went into it.
type Result struct {
	ID          string         `json:"id,omitempty"`
	Seed        int64          `json:"seed"`
	Fingerprint string         `json:"fingerprint"`
	Scenario    string         `json:"scenario"`
	Summary     galaxy.Summary `json:"summary"`
}

// Service generates scenarios with fixed settings and optionally archives them.
type Service struct {
	settings galaxy.Settings
	store    Store
	names    *namefilter.Filter
	newSeed  func() int64
}

// NewService creates a service. store may be nil when nothing is archived.
func NewService(settings galaxy.Settings, store Store) *Service {
	return &Service{
		settings: settings,
		store:    store,
		newSeed:  func() int64 { return time.Now().UnixNano() },
	}
}

// SetNameFilter screens the names of maps archived from now on. nil turns
// screening off.
func (s *Service) SetNameFilter(f *namefilter.Filter) {
	s.names = f
}

// Settings returns the galaxy settings the service generates with.
func (s *Service) Settings() galaxy.Settings {
	return s.settings
}

// Generate validates the map, renders it with a generator seeded from the
// request, and archives the result when asked to.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if req.Map == nil {
		return nil, fmt.Errorf("%w: no map", galaxy.ErrInvalidMap)
	}
	if err := req.Map.Validate(s.settings.Bounds); err != nil {
		return nil, err
	}
	if req.Save {
		if s.store == nil {
			return nil, ErrNoArchive
		}
		if err := s.names.Check(req.Map.Name); err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := s.newSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	start := time.Now()
	gen := galaxy.NewGenerator(s.settings, rand.New(rand.NewSource(seed)))
	analysis := gen.Analyze(req.Map)
	text, err := gen.Render(req.Map, analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to render scenario: %w", err)
	}

	fingerprint, err := mapfile.Fingerprint(req.Map)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Seed:        seed,
		Fingerprint: fingerprint,
		Scenario:    text,
		Summary:     gen.Summary(req.Map, analysis),
	}

	if req.Save {
		if err := s.archive(req.Map, res); err != nil {
			return nil, err
		}
	}

	sum := res.Summary
	logger.Info("scenario generated",
		"name", req.Map.Name,
		"seed", seed,
		"stars", sum.Stars,
		"homes", sum.HomeStars,
		"one_jump", sum.OneJump,
		"two_jumps", sum.TwoJumps,
		"fe_spawns", sum.FallenEmpires,
		"nebula_groups", sum.NebulaGroups,
		"tier", sum.SizeTier,
		"id", res.ID,
		"duration", time.Since(start),
	)
	return res, nil
}

func (s *Service) archive(m *galaxy.Map, res *Result) error {
	doc, err := mapfile.Marshal(m)
	if err != nil {
		return err
	}
	rec := &database.Scenario{
		Name:        m.Name,
		Fingerprint: res.Fingerprint,
		Seed:        res.Seed,
		StarCount:   res.Summary.Stars,
		SizeTier:    res.Summary.SizeTier,
		MapYAML:     string(doc),
		Body:        res.Scenario,
	}
	if err := s.store.SaveScenario(rec); err != nil {
		return fmt.Errorf("failed to archive scenario: %w", err)
	}
	res.ID = rec.ID
	return nil
}

// Regenerate renders an archived map again with its recorded seed. With
// unchanged settings the text matches the archived body.
func (s *Service) Regenerate(ctx context.Context, rec *database.Scenario) (*Result, error) {
	m, err := mapfile.Parse([]byte(rec.MapYAML), mapfile.FormatYAML)
	if err != nil {
		return nil, err
	}
	seed := rec.Seed
	return s.Generate(ctx, Request{Map: m, Seed: &seed})
}

// Verification is the outcome of re-rendering an archived scenario.
type Verification struct {
	ID    string `json:"id"`
	Seed  int64  `json:"seed"`
	Match bool   `json:"match"`
}

// Verify regenerates rec and reports whether the text still matches the
// archived body. A mismatch means the settings or the generator changed
// since it was saved.
func (s *Service) Verify(ctx context.Context, rec *database.Scenario) (*Verification, error) {
	res, err := s.Regenerate(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to regenerate %s: %w", rec.ID, err)
	}
	v := &Verification{ID: rec.ID, Seed: rec.Seed, Match: res.Scenario == rec.Body}
	if !v.Match {
		logger.Warning("archived scenario no longer reproduces", "id", rec.ID, "seed", rec.Seed)
	}
	return v, nil
}
