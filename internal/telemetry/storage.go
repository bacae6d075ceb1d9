package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Fooracles/SystemApp-sub000/internal/storage"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

const storageScopeName = "github.com/Fooracles/SystemApp-sub000/storage"

// InstrumentedStorage wraps storage.Storage with OTel tracing and metrics.
// Every method gets a span and is counted in sysapp.storage.* metrics.
// Use WrapStorage to create one; it returns the original store unchanged when
// telemetry is disabled.
type InstrumentedStorage struct {
	inner   storage.Storage
	tracer  trace.Tracer
	ops     metric.Int64Counter
	dur     metric.Float64Histogram
	errs    metric.Int64Counter
	results metric.Int64Histogram
}

// WrapStorage returns s decorated with OTel instrumentation.
// When telemetry is disabled, s is returned as-is with zero overhead.
func WrapStorage(s storage.Storage) storage.Storage {
	if !Enabled() {
		return s
	}
	return newInstrumented(s)
}

func newInstrumented(s storage.Storage) *InstrumentedStorage {
	m := Meter(storageScopeName)
	ops, _ := m.Int64Counter("sysapp.storage.operations",
		metric.WithDescription("Total storage operations executed"),
	)
	dur, _ := m.Float64Histogram("sysapp.storage.operation.duration",
		metric.WithDescription("Storage operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("sysapp.storage.errors",
		metric.WithDescription("Total storage operation errors"),
	)
	results, _ := m.Int64Histogram("sysapp.storage.search.results",
		metric.WithDescription("Rows returned by task and item searches"),
	)
	return &InstrumentedStorage{
		inner:   s,
		tracer:  Tracer(storageScopeName),
		ops:     ops,
		dur:     dur,
		errs:    errs,
		results: results,
	}
}

// op starts a span and records a metric for the named storage operation.
func (s *InstrumentedStorage) op(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, time.Time) {
	all := append([]attribute.KeyValue{attribute.String("db.operation", name)}, attrs...)
	ctx, span := s.tracer.Start(ctx, "storage."+name,
		trace.WithAttributes(all...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	s.ops.Add(ctx, 1, metric.WithAttributes(all...))
	return ctx, span, time.Now()
}

// done ends the span, records duration and optional error.
func (s *InstrumentedStorage) done(ctx context.Context, span trace.Span, start time.Time, err error, attrs ...attribute.KeyValue) {
	ms := float64(time.Since(start).Milliseconds())
	s.dur.Record(ctx, ms, metric.WithAttributes(attrs...))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.errs.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	span.End()
}

func actorAttr(id int64) attribute.KeyValue {
	return attribute.Int64("sysapp.actor", id)
}

// ── Users and directory ─────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateUser(ctx context.Context, user *types.User) error {
	attrs := []attribute.KeyValue{attribute.String("sysapp.user.role", string(user.Role))}
	ctx, span, t := s.op(ctx, "CreateUser", attrs...)
	err := s.inner.CreateUser(ctx, user)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetUser(ctx context.Context, id int64) (*types.User, error) {
	ctx, span, t := s.op(ctx, "GetUser")
	v, err := s.inner.GetUser(ctx, id)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) FindUserByName(ctx context.Context, name string) (*types.User, error) {
	ctx, span, t := s.op(ctx, "FindUserByName")
	v, err := s.inner.FindUserByName(ctx, name)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) ListUsers(ctx context.Context, filter types.UserFilter) ([]*types.User, error) {
	ctx, span, t := s.op(ctx, "ListUsers")
	v, err := s.inner.ListUsers(ctx, filter)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) CreateDepartment(ctx context.Context, dept *types.Department) error {
	ctx, span, t := s.op(ctx, "CreateDepartment")
	err := s.inner.CreateDepartment(ctx, dept)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStorage) ListDepartments(ctx context.Context) ([]*types.Department, error) {
	ctx, span, t := s.op(ctx, "ListDepartments")
	v, err := s.inner.ListDepartments(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) CreateClientAccount(ctx context.Context, acct *types.ClientAccount) error {
	ctx, span, t := s.op(ctx, "CreateClientAccount")
	err := s.inner.CreateClientAccount(ctx, acct)
	s.done(ctx, span, t, err)
	return err
}

func (s *InstrumentedStorage) ListClientAccounts(ctx context.Context) ([]*types.ClientAccount, error) {
	ctx, span, t := s.op(ctx, "ListClientAccounts")
	v, err := s.inner.ListClientAccounts(ctx)
	s.done(ctx, span, t, err)
	return v, err
}

// ── Work items ──────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateItem(ctx context.Context, item *types.WorkItem, actorID int64) error {
	attrs := []attribute.KeyValue{
		actorAttr(actorID),
		attribute.String("sysapp.item.type", string(item.Type)),
	}
	ctx, span, t := s.op(ctx, "CreateItem", attrs...)
	err := s.inner.CreateItem(ctx, item, actorID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetItem(ctx context.Context, id int64) (*types.WorkItem, error) {
	attrs := []attribute.KeyValue{attribute.Int64("sysapp.item.id", id)}
	ctx, span, t := s.op(ctx, "GetItem", attrs...)
	v, err := s.inner.GetItem(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) SearchItems(ctx context.Context, filter types.ItemFilter) ([]*types.WorkItem, error) {
	ctx, span, t := s.op(ctx, "SearchItems")
	v, err := s.inner.SearchItems(ctx, filter)
	if err == nil {
		s.results.Record(ctx, int64(len(v)), metric.WithAttributes(attribute.String("db.operation", "SearchItems")))
	}
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) UpdateItem(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	attrs := []attribute.KeyValue{
		attribute.Int64("sysapp.item.id", id),
		actorAttr(actorID),
		attribute.Int("sysapp.update.count", len(updates)),
	}
	ctx, span, t := s.op(ctx, "UpdateItem", attrs...)
	err := s.inner.UpdateItem(ctx, id, updates, actorID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

// ── Delegation tasks ────────────────────────────────────────────────────────

func (s *InstrumentedStorage) CreateTask(ctx context.Context, task *types.DelegationTask, actorID int64) error {
	attrs := []attribute.KeyValue{
		actorAttr(actorID),
		attribute.String("sysapp.task.type", string(task.TaskType)),
	}
	ctx, span, t := s.op(ctx, "CreateTask", attrs...)
	err := s.inner.CreateTask(ctx, task, actorID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

func (s *InstrumentedStorage) GetTask(ctx context.Context, id int64) (*types.DelegationTask, error) {
	attrs := []attribute.KeyValue{attribute.Int64("sysapp.task.id", id)}
	ctx, span, t := s.op(ctx, "GetTask", attrs...)
	v, err := s.inner.GetTask(ctx, id)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

func (s *InstrumentedStorage) SearchTasks(ctx context.Context, filter types.TaskFilter) ([]*types.DelegationTask, error) {
	ctx, span, t := s.op(ctx, "SearchTasks")
	v, err := s.inner.SearchTasks(ctx, filter)
	if err == nil {
		s.results.Record(ctx, int64(len(v)), metric.WithAttributes(attribute.String("db.operation", "SearchTasks")))
	}
	s.done(ctx, span, t, err)
	return v, err
}

func (s *InstrumentedStorage) UpdateTask(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	attrs := []attribute.KeyValue{
		attribute.Int64("sysapp.task.id", id),
		actorAttr(actorID),
		attribute.Int("sysapp.update.count", len(updates)),
	}
	ctx, span, t := s.op(ctx, "UpdateTask", attrs...)
	err := s.inner.UpdateTask(ctx, id, updates, actorID)
	s.done(ctx, span, t, err, attrs...)
	return err
}

// ── Audit trail ─────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) GetEvents(ctx context.Context, entity string, entityID int64, limit int) ([]*types.Event, error) {
	attrs := []attribute.KeyValue{attribute.String("sysapp.entity", entity)}
	ctx, span, t := s.op(ctx, "GetEvents", attrs...)
	v, err := s.inner.GetEvents(ctx, entity, entityID, limit)
	s.done(ctx, span, t, err, attrs...)
	return v, err
}

// ── Transactions ────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) RunInTransaction(ctx context.Context, fn func(tx storage.Transaction) error) error {
	ctx, span, t := s.op(ctx, "RunInTransaction")
	err := s.inner.RunInTransaction(ctx, fn)
	s.done(ctx, span, t, err)
	return err
}

// ── Lifecycle ────────────────────────────────────────────────────────────────

func (s *InstrumentedStorage) Close() error {
	return s.inner.Close()
}
