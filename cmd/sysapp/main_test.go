package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Fooracles/SystemApp-sub000/internal/lifecycle"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

func sampleSnapshot() snapshot {
	manager := int64(2)
	return snapshot{
		ExportedAt:  time.Date(2024, 3, 6, 10, 0, 0, 0, time.UTC),
		Departments: []*types.Department{{ID: 1, Name: "Support"}},
		Users: []*types.User{
			{ID: 2, Name: "Max Manager", Role: types.RoleManager},
			{ID: 3, Name: "Dina Doer", Role: types.RoleDoer, ManagerID: &manager},
		},
		Tasks: []*types.DelegationTask{{
			ID:          7,
			UniqueID:    "01HRDQ6Z3Y1T7K8M9N0P1Q2R3S",
			Description: "Call supplier",
			PlannedDate: "2024-03-06",
			PlannedTime: "09:00:00",
			Status:      types.TaskPending,
			DoerID:      3,
		}},
	}
}

func TestEncodeSnapshotFormats(t *testing.T) {
	snap := sampleSnapshot()

	var buf bytes.Buffer
	if err := encodeSnapshot(&buf, "json", snap); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if _, ok := decoded["tasks"]; !ok {
		t.Fatalf("json output missing tasks: %s", buf.String())
	}

	buf.Reset()
	if err := encodeSnapshot(&buf, "YAML", snap); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var y map[string]interface{}
	if err := yaml.Unmarshal(buf.Bytes(), &y); err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if users, ok := y["users"].([]interface{}); !ok || len(users) != 2 {
		t.Fatalf("yaml users = %#v", y["users"])
	}

	buf.Reset()
	if err := encodeSnapshot(&buf, "toml", snap); err != nil {
		t.Fatalf("toml: %v", err)
	}
	var tm map[string]interface{}
	if _, err := toml.Decode(buf.String(), &tm); err != nil {
		t.Fatalf("toml output does not parse: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "[[tasks]]") {
		t.Fatalf("toml output missing tasks table:\n%s", buf.String())
	}

	if err := encodeSnapshot(&buf, "csv", snap); err == nil {
		t.Fatalf("expected unknown format to fail")
	}
}

func TestItemMarkdown(t *testing.T) {
	desc := "token rotated"
	item := workflow.ItemView{
		WorkItem: &types.WorkItem{
			ID:                  12,
			Type:                types.ItemRequired,
			Title:               "VPN access",
			Status:              types.StatusProvided,
			CreatedByName:       "Max Manager",
			Attachments:         []string{"0f8fad5b-d9cb-469f-a165-70867728950e_spec.pdf"},
			ProvidedDescription: &desc,
		},
		Timeline: []lifecycle.Step{
			{Status: types.StatusRequested, State: lifecycle.StepDone},
			{Status: types.StatusProvided, State: lifecycle.StepCurrent},
		},
	}
	md := itemMarkdown(item)
	for _, want := range []string{"# #12 VPN access", "`spec.pdf`", "## Provided", "token rotated", "- [x] Requested", "- [>] Provided"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}
