package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/paintgalaxy/server/internal/client"
	"github.com/paintgalaxy/server/internal/database"
	"github.com/paintgalaxy/server/internal/scenario"
)

// archive is the scenario archive as the CLI sees it, either opened
// directly or through a running galaxyd.
type archive interface {
	List(ctx context.Context) ([]*database.Scenario, error)
	Show(ctx context.Context, id string) (string, error)
	History(ctx context.Context, fingerprint string) ([]*database.Scenario, error)
	Verify(ctx context.Context, id string) (*scenario.Verification, error)
	Delete(ctx context.Context, id string) error
}

type localArchive struct {
	db      *database.Database
	service *scenario.Service
}

func (a *localArchive) List(context.Context) ([]*database.Scenario, error) {
	return a.db.ListScenarios(0)
}

func (a *localArchive) Show(_ context.Context, id string) (string, error) {
	rec, err := a.db.GetScenario(id)
	if err != nil {
		return "", err
	}
	return rec.Body, nil
}

func (a *localArchive) History(_ context.Context, fingerprint string) ([]*database.Scenario, error) {
	return a.db.FindByFingerprint(fingerprint)
}

func (a *localArchive) Verify(ctx context.Context, id string) (*scenario.Verification, error) {
	rec, err := a.db.GetScenario(id)
	if err != nil {
		return nil, err
	}
	return a.service.Verify(ctx, rec)
}

func (a *localArchive) Delete(_ context.Context, id string) error {
	return a.db.DeleteScenario(id)
}

type remoteArchive struct {
	client *client.Client
	token  string
}

func (a *remoteArchive) List(ctx context.Context) ([]*database.Scenario, error) {
	return a.client.List(ctx, 0)
}

func (a *remoteArchive) Show(ctx context.Context, id string) (string, error) {
	return a.client.Scenario(ctx, id)
}

func (a *remoteArchive) History(ctx context.Context, fingerprint string) ([]*database.Scenario, error) {
	return a.client.History(ctx, fingerprint)
}

func (a *remoteArchive) Verify(ctx context.Context, id string) (*scenario.Verification, error) {
	return a.client.Verify(ctx, id)
}

func (a *remoteArchive) Delete(ctx context.Context, id string) error {
	if a.token == "" {
		return errors.New("deleting through galaxyd needs -token or PAINTGALAXY_ADMIN_TOKEN")
	}
	return a.client.Delete(ctx, id, a.token)
}

// archiveCommand is one of the archive flags.
type archiveCommand struct {
	list    bool
	show    string
	history string // fingerprint
	verify  string
	delete  string
}

func (c archiveCommand) requested() bool {
	return c.list || c.show != "" || c.history != "" || c.verify != "" || c.delete != ""
}

// runArchiveCommand carries out cmd against a and returns what to print.
func runArchiveCommand(ctx context.Context, a archive, cmd archiveCommand) (string, error) {
	switch {
	case cmd.list:
		list, err := a.List(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to list scenarios: %w", err)
		}
		return renderArchive(list), nil
	case cmd.show != "":
		return a.Show(ctx, cmd.show)
	case cmd.history != "":
		list, err := a.History(ctx, cmd.history)
		if err != nil {
			return "", fmt.Errorf("failed to look up map history: %w", err)
		}
		return renderArchive(list), nil
	case cmd.verify != "":
		v, err := a.Verify(ctx, cmd.verify)
		if err != nil {
			return "", err
		}
		return renderVerification(v), nil
	case cmd.delete != "":
		if err := a.Delete(ctx, cmd.delete); err != nil {
			return "", err
		}
		return dimStyle.Render("deleted " + cmd.delete), nil
	}
	return "", nil
}
