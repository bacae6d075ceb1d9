package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

func TestWithActorRejectsMissingAndUnknownActors(t *testing.T) {
	f := newFixture(t)

	if rec := f.get("/api/tasks", nil, nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", rec.Code)
	}

	for _, raw := range []string{"abc", "-3", "424242"} {
		req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
		req.Header.Set(ActorHeader, raw)
		if rec := f.do(req, nil, nil); rec.Code != http.StatusUnauthorized {
			t.Fatalf("actor %q: expected 401, got %d", raw, rec.Code)
		}
	}
}

func TestStatusForError(t *testing.T) {
	t.Parallel()

	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get task: %w", storage.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: nope", workflow.ErrForbidden), http.StatusForbidden},
		{workflow.ErrDropped, http.StatusConflict},
		{workflow.ErrTerminal, http.StatusConflict},
		{storage.ErrConflict, http.StatusConflict},
		{workflow.ErrInvalidStatus, http.StatusBadRequest},
		{workflow.FieldErrors{"title": "required"}, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := statusForError(tc.err); got != tc.want {
			t.Errorf("statusForError(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
	if msg := errorMessage(errors.New("disk on fire")); msg != "Something went wrong" {
		t.Errorf("internal errors must not leak detail, got %q", msg)
	}
}
