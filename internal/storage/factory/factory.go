// Package factory opens the configured storage backend.
package factory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/storage/sqlstore"
	"github.com/Fooracles/SystemApp-sub000/internal/telemetry"
)

// Options configures how the storage backend is opened.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int

	// ConnectTimeout bounds how long transient connection failures are
	// retried. Zero means a single attempt.
	ConnectTimeout time.Duration

	// SkipMigrate leaves the schema untouched.
	SkipMigrate bool
}

// Opened is the result of Open: the instrumented storage used by the
// application plus the raw SQL store for maintenance commands.
type Opened struct {
	Storage storage.Storage
	SQL     *sqlstore.Store
}

// Close releases the database handle.
func (o *Opened) Close() error {
	return o.Storage.Close()
}

// Open connects to the database, runs schema migrations and wraps the result
// with telemetry.
func Open(ctx context.Context, opts Options) (*Opened, error) {
	cfg := sqlstore.Config{Driver: opts.Driver, DSN: opts.DSN, MaxOpenConns: opts.MaxOpenConns}

	var store *sqlstore.Store
	open := func() error {
		s, err := sqlstore.Open(ctx, cfg)
		if err != nil {
			if isRetryableError(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		store = s
		return nil
	}

	var err error
	if opts.ConnectTimeout > 0 {
		err = backoff.Retry(open, backoff.WithContext(newOpenBackoff(opts.ConnectTimeout), ctx))
	} else {
		err = open()
	}
	if err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
		return nil, fmt.Errorf("open storage: %w", err)
	}

	if !opts.SkipMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	return &Opened{Storage: telemetry.WrapStorage(store), SQL: store}, nil
}

func newOpenBackoff(maxElapsed time.Duration) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Millisecond
	bo.MaxElapsedTime = maxElapsed
	return bo
}

// isRetryableError reports whether a connection error may clear on its own,
// for instance while a database container is still starting.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, s := range []string{
		"driver: bad connection",
		"invalid connection",
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"gone away",
		"lost connection",
		"database is locked",
	} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}
