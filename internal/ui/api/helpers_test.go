package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/storage/sqlstore"
	"github.com/Fooracles/SystemApp-sub000/internal/testutil/teststore"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

var fixedNow = time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC)

type fixture struct {
	t     *testing.T
	store *sqlstore.Store
	svc   *workflow.Service
	mux   *http.ServeMux

	admin, manager, doer, client *types.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	te := teststore.NewEnv(t)
	org := te.SeedOrgNamed("Support", "Globex")
	f := &fixture{
		t:       t,
		store:   te.Store,
		admin:   org.Admin,
		manager: org.Manager,
		doer:    org.Doer,
		client:  org.Client,
	}

	f.svc = workflow.New(te.Store, workflow.Options{
		Location:    time.UTC,
		Now:         func() time.Time { return fixedNow },
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Attachments: workflow.NewAttachments(t.TempDir(), 1<<20),
		PageSize:    10,
	})
	f.mux = http.NewServeMux()
	Register(f.mux, f.svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

// do sends req as user and decodes the JSON response into out when non-nil.
func (f *fixture) do(req *http.Request, user *types.User, out any) *httptest.ResponseRecorder {
	f.t.Helper()
	if user != nil {
		req.Header.Set(ActorHeader, strconv.FormatInt(user.ID, 10))
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, req)
	if out != nil {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			f.t.Fatalf("decode %s %s response %q: %v", req.Method, req.URL, rec.Body.String(), err)
		}
	}
	return rec
}

func (f *fixture) postForm(path string, user *types.User, form url.Values, out any) *httptest.ResponseRecorder {
	f.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req, user, out)
}

func (f *fixture) postJSON(path string, user *types.User, body map[string]any, out any) *httptest.ResponseRecorder {
	f.t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		f.t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return f.do(req, user, out)
}

func (f *fixture) get(path string, user *types.User, out any) *httptest.ResponseRecorder {
	f.t.Helper()
	return f.do(httptest.NewRequest(http.MethodGet, path, nil), user, out)
}

// multipartBody builds a form with the given fields and files keyed by field name.
func multipartBody(t *testing.T, fields map[string]string, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file %s: %v", name, err)
		}
		if _, err := io.WriteString(fw, content); err != nil {
			t.Fatalf("write form file %s: %v", name, err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// createTask adds a pending task for the fixture doer through the API.
func (f *fixture) createTask(date, clock string) *types.DelegationTask {
	f.t.Helper()
	var resp taskResponse
	rec := f.postForm("/api/tasks", f.manager, url.Values{
		"description":  {"Call supplier " + date},
		"doer":         {f.doer.Name},
		"planned_date": {date},
		"planned_time": {clock},
		"duration":     {"30"},
	}, &resp)
	if rec.Code != http.StatusCreated || resp.Task == nil {
		f.t.Fatalf("create task: status %d body %s", rec.Code, rec.Body.String())
	}
	return resp.Task
}
