package sqlstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

const timestampLayout = types.TimestampLayout

func parseTimestamp(s string) time.Time {
	ts, err := time.ParseInLocation(timestampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return ts
}

func nullInt64Ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func nullStringPtr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	v := n.String
	return &v
}

func int64PtrArg(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringPtrArg(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func boolArg(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func decodeList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil
	}
	return list
}

// normalizeValue converts an update value into something both drivers bind.
func normalizeValue(v interface{}) (interface{}, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string, int, int64:
		return val, nil
	case bool:
		return boolArg(val), nil
	case []string:
		return encodeList(val), nil
	case *string:
		return stringPtrArg(val), nil
	case *int64:
		return int64PtrArg(val), nil
	case types.TaskStatus:
		return string(val), nil
	case types.TaskType:
		return string(val), nil
	case types.ItemStatus:
		return string(val), nil
	case types.AssignedByType:
		return string(val), nil
	case time.Time:
		return val.UTC().Format(timestampLayout), nil
	}
	return nil, fmt.Errorf("unsupported update value type %T", v)
}

func encodeEventValue(v interface{}) *string {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

// sortedKeys gives update maps a deterministic column order.
func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
