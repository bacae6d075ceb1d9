package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/config"
	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/storage/factory"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

// app bundles the opened store and the workflow service for one command.
type app struct {
	store *factory.Opened
	svc   *workflow.Service
}

func (a *app) Close() error { return a.store.Close() }

func storeOptions() factory.Options {
	return factory.Options{
		Driver:         config.GetString(config.KeyDBDriver),
		DSN:            config.GetString(config.KeyDBDSN),
		MaxOpenConns:   config.GetInt(config.KeyDBMaxConns),
		ConnectTimeout: config.GetDuration(config.KeyDBConnectTimeout),
	}
}

// openApp opens storage from config and builds the workflow service.
func openApp(ctx context.Context) (*app, error) {
	opened, err := factory.Open(ctx, storeOptions())
	if err != nil {
		return nil, err
	}
	svc := workflow.New(opened.Storage, workflow.Options{
		Location:    config.Location(),
		Logger:      logger,
		Attachments: workflow.NewAttachments(config.GetString(config.KeyUploadsDir), config.GetInt64(config.KeyUploadLimit)),
		PageSize:    config.GetInt(config.KeyPageSize),
	})
	return &app{store: opened, svc: svc}, nil
}

// mustOpenApp is openApp for commands that cannot continue without a store.
func mustOpenApp() *app {
	a, err := openApp(rootCtx)
	if err != nil {
		FatalErrorWithHint(fmt.Sprintf("open database: %v", err), "Check db.driver / db.dsn in sysapp.yaml or pass --db")
	}
	return a
}

// actor resolves the configured acting user, by id or exact name.
func (a *app) actor(ctx context.Context) (types.Actor, error) {
	ref := strings.TrimSpace(config.GetString(config.KeyActor))
	if ref == "" {
		return types.Actor{}, errors.New("no actor configured")
	}
	user, err := a.lookupUser(ctx, ref)
	if err != nil {
		return types.Actor{}, err
	}
	return types.ActorFromUser(user), nil
}

func (a *app) mustActor() types.Actor {
	act, err := a.actor(rootCtx)
	if err != nil {
		FatalErrorWithHint(err.Error(), "Pass --actor <id|name> or set SYSAPP_ACTOR")
	}
	return act
}

func (a *app) lookupUser(ctx context.Context, ref string) (*types.User, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		u, err := a.store.Storage.GetUser(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", id, err)
		}
		return u, nil
	}
	u, err := a.store.Storage.FindUserByName(ctx, ref)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("no user named %q", ref)
	}
	return u, err
}

// parseID parses a positional numeric id argument.
func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
