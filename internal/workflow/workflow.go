// Package workflow implements the role-checked mutations and listings behind
// the task and ticket endpoints. Every call takes the acting user explicitly;
// nothing is read from ambient request state.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/lifecycle"
	"github.com/Fooracles/SystemApp-sub000/internal/shift"
	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid input")
	// ErrInternal is what callers see when the database fails; details go
	// to the error log only.
	ErrInternal = errors.New("something went wrong")

	ErrInvalidStatus = lifecycle.ErrInvalidStatus
	ErrDropped       = lifecycle.ErrDropped
	ErrTerminal      = shift.ErrTerminal
	ErrNotFound      = storage.ErrNotFound
)

// FieldErrors collects validation failures keyed by input field name.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrInvalidInput) match field errors.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrInvalidInput
}

func (fe FieldErrors) add(field, msg string) {
	if _, exists := fe[field]; !exists {
		fe[field] = msg
	}
}

func (fe FieldErrors) err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Options configures a Service.
type Options struct {
	Location    *time.Location
	Now         func() time.Time
	Logger      *slog.Logger
	Attachments *Attachments
	PageSize    int
}

// Service is the workflow layer shared by the HTTP API and the CLI.
type Service struct {
	store    storage.Storage
	loc      *time.Location
	now      func() time.Time
	logger   *slog.Logger
	files    *Attachments
	pageSize int
}

// New returns a Service over store.
func New(store storage.Storage, opts Options) *Service {
	s := &Service{
		store:    store,
		loc:      opts.Location,
		now:      opts.Now,
		logger:   opts.Logger,
		files:    opts.Attachments,
		pageSize: opts.PageSize,
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.pageSize <= 0 {
		s.pageSize = 10
	}
	return s
}

// Location is the zone planned and actual timestamps are read in.
func (s *Service) Location() *time.Location { return s.loc }

// PageSize is the default listing page size.
func (s *Service) PageSize() int { return s.pageSize }

// Actor resolves a user id into the role context for a request.
func (s *Service) Actor(ctx context.Context, userID int64) (types.Actor, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return types.Actor{}, fmt.Errorf("resolve actor %d: %w", userID, err)
	}
	return types.ActorFromUser(u), nil
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

// internal logs a storage failure and replaces it with ErrInternal.
// Not-found and permission errors pass through untouched.
func (s *Service) internal(ctx context.Context, op string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, ErrForbidden) {
		return err
	}
	s.logger.ErrorContext(ctx, op+" failed", append(attrs, "err", err)...)
	return fmt.Errorf("%s: %w", op, ErrInternal)
}

// forbidden converts a lifecycle permission failure into ErrForbidden while
// keeping the original message.
func forbidden(err error) error {
	if errors.Is(err, lifecycle.ErrNotPermitted) {
		return fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	return err
}
