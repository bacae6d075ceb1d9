package types

import (
	"strings"
	"testing"
	"time"
)

func TestWorkItemValidate(t *testing.T) {
	tests := []struct {
		name    string
		item    WorkItem
		wantErr string
	}{
		{
			name: "valid ticket",
			item: WorkItem{Type: ItemTicket, Title: "Printer jammed", CreatedBy: 3},
		},
		{
			name:    "missing title",
			item:    WorkItem{Type: ItemTicket, Title: "  ", CreatedBy: 3},
			wantErr: "title is required",
		},
		{
			name:    "title too long",
			item:    WorkItem{Type: ItemTask, Title: strings.Repeat("x", 256), CreatedBy: 3},
			wantErr: "255 characters",
		},
		{
			name:    "bad type",
			item:    WorkItem{Type: "Bug", Title: "x", CreatedBy: 3},
			wantErr: "invalid item type",
		},
		{
			name:    "no creator",
			item:    WorkItem{Type: ItemRequired, Title: "x"},
			wantErr: "created_by",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestParseItemType(t *testing.T) {
	for raw, want := range map[string]ItemType{"task": ItemTask, " TICKET ": ItemTicket, "Required": ItemRequired} {
		got, ok := ParseItemType(raw)
		if !ok || got != want {
			t.Fatalf("ParseItemType(%q) = %q, %v", raw, got, ok)
		}
	}
	if _, ok := ParseItemType("bug"); ok {
		t.Fatalf("expected bug to be rejected")
	}
}

func TestTaskStatusPredicates(t *testing.T) {
	if !TaskShifted.IsTerminal() || !TaskCantBeDone.IsTerminal() || TaskNotDone.IsTerminal() {
		t.Fatalf("unexpected terminal classification")
	}
	if !TaskShifted.IsDone() || TaskPending.IsDone() {
		t.Fatalf("unexpected done classification")
	}
	if TaskStatus("archived").IsValid() {
		t.Fatalf("archived should be invalid")
	}
}

func TestCombineDateTime(t *testing.T) {
	ts, err := CombineDateTime("2024-03-04", "09:30", time.UTC)
	if err != nil {
		t.Fatalf("CombineDateTime: %v", err)
	}
	if want := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC); !ts.Equal(want) {
		t.Fatalf("got %v, want %v", ts, want)
	}
	ts, err = CombineDateTime("2024-03-04", "", time.UTC)
	if err != nil || ts.Hour() != 0 {
		t.Fatalf("expected midnight, got %v (%v)", ts, err)
	}
	if _, err := CombineDateTime("04/03/2024", "09:30", time.UTC); err == nil {
		t.Fatalf("expected error for bad date")
	}
}

func TestActualAt(t *testing.T) {
	task := &DelegationTask{PlannedDate: "2024-03-04", PlannedTime: "09:00:00"}
	if _, ok, err := task.ActualAt(time.UTC); ok || err != nil {
		t.Fatalf("expected no actual timestamp, got ok=%v err=%v", ok, err)
	}
	date, clock := "2024-03-05", "10:15:00"
	task.ActualDate, task.ActualTime = &date, &clock
	at, ok, err := task.ActualAt(time.UTC)
	if err != nil || !ok {
		t.Fatalf("ActualAt: ok=%v err=%v", ok, err)
	}
	if at.Day() != 5 || at.Hour() != 10 || at.Minute() != 15 {
		t.Fatalf("unexpected actual %v", at)
	}
}

func TestActorFromUser(t *testing.T) {
	acct := int64(9)
	a := ActorFromUser(&User{ID: 4, Name: "Kim", Role: RoleClient, ClientAccountID: &acct})
	if !a.IsClient() || a.UserID != 4 || a.ClientAccountID == nil || *a.ClientAccountID != 9 {
		t.Fatalf("unexpected actor %+v", a)
	}
	if got := ActorFromUser(nil); got.Role != "" {
		t.Fatalf("expected zero actor, got %+v", got)
	}
}
