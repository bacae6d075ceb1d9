// Package lifecycle holds the status sequence of each work item type and
// the role rules for moving an item along it.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

var (
	ErrDropped       = errors.New("item is dropped")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotPermitted  = errors.New("status change not permitted")
)

var sequences = map[types.ItemType][]types.ItemStatus{
	types.ItemTask: {
		types.StatusAssigned,
		types.StatusWorking,
		types.StatusReview,
		types.StatusRevise,
		types.StatusApproved,
		types.StatusCompleted,
	},
	types.ItemTicket: {
		types.StatusRaised,
		types.StatusInProgress,
		types.StatusResolved,
	},
	types.ItemRequired: {
		types.StatusRequested,
		types.StatusProvided,
	},
}

// roleStatuses lists what each non-admin role may set. Admins may set the
// full sequence; roles absent for a type may set nothing.
var roleStatuses = map[types.ItemType]map[types.Role][]types.ItemStatus{
	types.ItemTask: {
		types.RoleManager: {types.StatusWorking, types.StatusReview, types.StatusRevise, types.StatusApproved, types.StatusCompleted},
		types.RoleClient:  {types.StatusAssigned, types.StatusApproved, types.StatusRevise},
	},
	types.ItemTicket: {
		types.RoleManager: {types.StatusRaised, types.StatusInProgress, types.StatusResolved},
	},
	types.ItemRequired: {
		types.RoleManager: {types.StatusRequested, types.StatusProvided},
		types.RoleClient:  {types.StatusRequested, types.StatusProvided},
	},
}

// Sequence returns the ordered statuses of an item type. Dropped is never part of it.
func Sequence(t types.ItemType) []types.ItemStatus {
	seq := sequences[t]
	out := make([]types.ItemStatus, len(seq))
	copy(out, seq)
	return out
}

// InitialStatus is the status a newly created item of type t starts in.
func InitialStatus(t types.ItemType) types.ItemStatus {
	if seq := sequences[t]; len(seq) > 0 {
		return seq[0]
	}
	return ""
}

// ParseStatus matches raw against the statuses of t, ignoring case and
// surrounding whitespace. Dropped is accepted for every type.
func ParseStatus(t types.ItemType, raw string) (types.ItemStatus, bool) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, string(types.StatusDropped)) {
		return types.StatusDropped, true
	}
	for _, s := range sequences[t] {
		if strings.EqualFold(raw, string(s)) {
			return s, true
		}
	}
	return "", false
}

// StatusOptionsForItem returns the statuses role may set on item, in
// sequence order. Dropped items have no options.
func StatusOptionsForItem(item *types.WorkItem, role types.Role) []types.ItemStatus {
	if item == nil || item.IsDropped() {
		return nil
	}
	if role == types.RoleAdmin {
		return Sequence(item.Type)
	}
	allowed := roleStatuses[item.Type][role]
	if len(allowed) == 0 {
		return nil
	}
	var out []types.ItemStatus
	for _, s := range sequences[item.Type] {
		if containsStatus(allowed, s) {
			out = append(out, s)
		}
	}
	return out
}

// CanChangeStatus reports whether role has any status it may set on item.
func CanChangeStatus(item *types.WorkItem, role types.Role) bool {
	if item == nil || item.IsDropped() {
		return false
	}
	return len(StatusOptionsForItem(item, role)) > 0
}

// ValidateTransition checks that role may move item to status. Dropped is
// rejected here; dropping goes through ValidateDrop.
func ValidateTransition(item *types.WorkItem, role types.Role, status types.ItemStatus) error {
	if item.IsDropped() {
		return fmt.Errorf("item %d: %w", item.ID, ErrDropped)
	}
	if status == types.StatusDropped || !containsStatus(sequences[item.Type], status) {
		return fmt.Errorf("%q for %s: %w", status, item.Type, ErrInvalidStatus)
	}
	if !containsStatus(StatusOptionsForItem(item, role), status) {
		return fmt.Errorf("%s may not set %s to %q: %w", role, strings.ToLower(string(item.Type)), status, ErrNotPermitted)
	}
	return nil
}

// ValidateDrop checks that role may drop item. Only admins and managers drop.
func ValidateDrop(item *types.WorkItem, role types.Role) error {
	if item.IsDropped() {
		return fmt.Errorf("item %d: %w", item.ID, ErrDropped)
	}
	if role != types.RoleAdmin && role != types.RoleManager {
		return fmt.Errorf("%s may not drop items: %w", role, ErrNotPermitted)
	}
	return nil
}

// ValidateProvide checks that role may answer a Required item.
func ValidateProvide(item *types.WorkItem, role types.Role) error {
	if item.Type != types.ItemRequired {
		return fmt.Errorf("%s items cannot be provided: %w", item.Type, ErrInvalidStatus)
	}
	return ValidateTransition(item, role, types.StatusProvided)
}

func containsStatus(list []types.ItemStatus, s types.ItemStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
