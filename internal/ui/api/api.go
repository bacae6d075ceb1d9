// Package api exposes the workflow layer as JSON endpoints.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

// ActorHeader carries the authenticated user id set by the upstream proxy.
const ActorHeader = "X-Actor-ID"

// ActorResolver turns a user id into a request role context.
type ActorResolver interface {
	Actor(ctx context.Context, userID int64) (types.Actor, error)
}

type actorKey struct{}

// WithActor resolves the ActorHeader and stores the actor on the request
// context. Requests without a known actor are rejected with 401.
func WithActor(resolver ActorResolver, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(ActorHeader))
		id, err := strconv.ParseInt(raw, 10, 64)
		if raw == "" || err != nil || id <= 0 {
			http.Error(w, "missing or invalid "+ActorHeader, http.StatusUnauthorized)
			return
		}
		actor, err := resolver.Actor(r.Context(), id)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				http.Error(w, "unknown actor", http.StatusUnauthorized)
				return
			}
			http.Error(w, "resolve actor", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// ActorFrom returns the actor stored by WithActor.
func ActorFrom(ctx context.Context) (types.Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(types.Actor)
	return a, ok
}

// Register mounts every endpoint on mux behind the actor middleware.
func Register(mux *http.ServeMux, svc *workflow.Service, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	wrap := func(h http.Handler) http.Handler { return WithActor(svc, h) }

	mux.Handle("/api/tickets", wrap(NewTicketHandler(svc, logger)))
	mux.Handle("POST /api/tasks/status", wrap(NewTaskStatusHandler(svc)))
	mux.Handle("POST /api/tasks/shift", wrap(NewTaskShiftHandler(svc)))
	mux.Handle("POST /api/tasks/edit", wrap(NewTaskEditHandler(svc)))
	mux.Handle("GET /api/tasks", wrap(NewTaskListHandler(svc)))
	mux.Handle("POST /api/tasks", wrap(NewTaskCreateHandler(svc)))
}

// statusForError maps workflow and storage errors onto HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrDropped),
		errors.Is(err, workflow.ErrTerminal),
		errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrInvalidStatus),
		errors.Is(err, workflow.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage hides internal detail behind the generic message.
func errorMessage(err error) string {
	if statusForError(err) == http.StatusInternalServerError {
		return "Something went wrong"
	}
	return err.Error()
}
