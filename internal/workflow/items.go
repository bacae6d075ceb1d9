package workflow

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/lifecycle"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

// ItemView is a work item with what the actor may do to it.
type ItemView struct {
	*types.WorkItem
	StatusOptions   []types.ItemStatus `json:"status_options"`
	CanChangeStatus bool               `json:"can_change_status"`
	CanDrop         bool               `json:"can_drop"`
	Timeline        []lifecycle.Step   `json:"timeline"`
}

func view(item *types.WorkItem, actor types.Actor) ItemView {
	return ItemView{
		WorkItem:        item,
		StatusOptions:   lifecycle.StatusOptionsForItem(item, actor.Role),
		CanChangeStatus: lifecycle.CanChangeStatus(item, actor.Role),
		CanDrop:         lifecycle.ValidateDrop(item, actor.Role) == nil,
		Timeline:        lifecycle.Timeline(item),
	}
}

// GetItems lists the work items actor can see, newest first.
func (s *Service) GetItems(ctx context.Context, actor types.Actor, filter types.ItemFilter) ([]ItemView, error) {
	filter.Visibility = &actor
	items, err := s.store.SearchItems(ctx, filter)
	if err != nil {
		return nil, s.internal(ctx, "list items", err)
	}
	out := make([]ItemView, 0, len(items))
	for _, it := range items {
		out = append(out, view(it, actor))
	}
	return out, nil
}

// GetItem returns one visible item.
func (s *Service) GetItem(ctx context.Context, actor types.Actor, id int64) (ItemView, error) {
	item, err := s.loadItem(ctx, actor, id)
	if err != nil {
		return ItemView{}, err
	}
	return view(item, actor), nil
}

func (s *Service) loadItem(ctx context.Context, actor types.Actor, id int64) (*types.WorkItem, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return nil, s.internal(ctx, "get item", err, "item_id", id)
	}
	if actor.IsAdmin() {
		return item, nil
	}
	visible, err := s.store.SearchItems(ctx, types.ItemFilter{IDs: []int64{id}, Visibility: &actor})
	if err != nil {
		return nil, s.internal(ctx, "check item visibility", err, "item_id", id)
	}
	if len(visible) == 0 {
		return nil, fmt.Errorf("item %d: %w", id, ErrForbidden)
	}
	return item, nil
}

// CreateItemInput is the new item form.
type CreateItemInput struct {
	Type        string
	Title       string
	Description string
	AssignedTo  *int64
	Files       []Upload
}

// CreateItem adds a work item in the first status of its type. Doers do
// not create items.
func (s *Service) CreateItem(ctx context.Context, actor types.Actor, in CreateItemInput) (ItemView, error) {
	if actor.IsDoer() || actor.Role == "" {
		return ItemView{}, fmt.Errorf("%s may not create items: %w", actor.Role, ErrForbidden)
	}
	fe := FieldErrors{}
	itemType, ok := types.ParseItemType(in.Type)
	if !ok {
		fe.add("type", "must be Task, Ticket or Required")
	}
	title := strings.TrimSpace(in.Title)
	switch {
	case title == "":
		fe.add("title", "is required")
	case len(title) > 255:
		fe.add("title", "must be 255 characters or less")
	}
	if in.AssignedTo != nil {
		if _, err := s.store.GetUser(ctx, *in.AssignedTo); err != nil {
			fe.add("assigned_to", "no such user")
		}
	}
	if err := fe.err(); err != nil {
		return ItemView{}, err
	}

	names, err := s.saveUploads(in.Files)
	if err != nil {
		return ItemView{}, err
	}
	item := &types.WorkItem{
		Type:        itemType,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Status:      lifecycle.InitialStatus(itemType),
		CreatedBy:   actor.UserID,
		AssignedTo:  in.AssignedTo,
		Attachments: names,
	}
	if err := s.store.CreateItem(ctx, item, actor.UserID); err != nil {
		s.removeUploads(names)
		return ItemView{}, s.internal(ctx, "create item", err)
	}
	created, err := s.store.GetItem(ctx, item.ID)
	if err != nil {
		return ItemView{}, s.internal(ctx, "get item", err, "item_id", item.ID)
	}
	return view(created, actor), nil
}

// UpdateItemInput edits an item's details. Nil fields are left unchanged.
type UpdateItemInput struct {
	ID                int64
	Title             *string
	Description       *string
	AssignedTo        *int64
	AddFiles          []Upload
	RemoveAttachments []string
}

// UpdateItem edits title, description, assignee and attachments. The
// creator, admins and managers who can see the item may edit it.
func (s *Service) UpdateItem(ctx context.Context, actor types.Actor, in UpdateItemInput) (ItemView, error) {
	item, err := s.loadItem(ctx, actor, in.ID)
	if err != nil {
		return ItemView{}, err
	}
	if item.IsDropped() {
		return ItemView{}, fmt.Errorf("item %d: %w", item.ID, ErrDropped)
	}
	if !actor.IsAdmin() && !actor.IsManager() && item.CreatedBy != actor.UserID {
		return ItemView{}, fmt.Errorf("only the creator may edit item %d: %w", item.ID, ErrForbidden)
	}

	updates := map[string]interface{}{}
	fe := FieldErrors{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			fe.add("title", "is required")
		case len(title) > 255:
			fe.add("title", "must be 255 characters or less")
		}
		updates["title"] = title
	}
	if in.Description != nil {
		updates["description"] = strings.TrimSpace(*in.Description)
	}
	if in.AssignedTo != nil {
		if _, err := s.store.GetUser(ctx, *in.AssignedTo); err != nil {
			fe.add("assigned_to", "no such user")
		}
		updates["assigned_to"] = in.AssignedTo
	}
	if err := fe.err(); err != nil {
		return ItemView{}, err
	}

	var added []string
	if len(in.AddFiles) > 0 || len(in.RemoveAttachments) > 0 {
		added, err = s.saveUploads(in.AddFiles)
		if err != nil {
			return ItemView{}, err
		}
		updates["attachments"] = mergeAttachments(item.Attachments, added, in.RemoveAttachments)
	}
	if len(updates) == 0 {
		return view(item, actor), nil
	}
	if err := s.store.UpdateItem(ctx, item.ID, updates, actor.UserID); err != nil {
		s.removeUploads(added)
		return ItemView{}, s.internal(ctx, "update item", err, "item_id", item.ID)
	}
	s.removeUploads(removedOnly(item.Attachments, in.RemoveAttachments))
	return s.reload(ctx, actor, item.ID)
}

// UpdateItemStatus moves an item along its sequence. Dropping is a
// separate action and is rejected here.
func (s *Service) UpdateItemStatus(ctx context.Context, actor types.Actor, id int64, rawStatus string) (ItemView, error) {
	item, err := s.loadItem(ctx, actor, id)
	if err != nil {
		return ItemView{}, err
	}
	status, ok := lifecycle.ParseStatus(item.Type, rawStatus)
	if !ok {
		return ItemView{}, fmt.Errorf("%q for %s: %w", rawStatus, item.Type, ErrInvalidStatus)
	}
	if err := lifecycle.ValidateTransition(item, actor.Role, status); err != nil {
		return ItemView{}, forbidden(err)
	}
	if status == item.Status {
		return view(item, actor), nil
	}
	if err := s.store.UpdateItem(ctx, id, map[string]interface{}{"status": status}, actor.UserID); err != nil {
		return ItemView{}, s.internal(ctx, "update item status", err, "item_id", id)
	}
	s.logger.InfoContext(ctx, "item status changed", "item_id", id, "from", item.Status, "to", status, "actor", actor.UserID)
	return s.reload(ctx, actor, id)
}

// DropItem soft-removes an item. Dropped items become read-only.
func (s *Service) DropItem(ctx context.Context, actor types.Actor, id int64) (ItemView, error) {
	item, err := s.loadItem(ctx, actor, id)
	if err != nil {
		return ItemView{}, err
	}
	if err := lifecycle.ValidateDrop(item, actor.Role); err != nil {
		return ItemView{}, forbidden(err)
	}
	if err := s.store.UpdateItem(ctx, id, map[string]interface{}{"status": types.StatusDropped}, actor.UserID); err != nil {
		return ItemView{}, s.internal(ctx, "drop item", err, "item_id", id)
	}
	s.logger.InfoContext(ctx, "item dropped", "item_id", id, "actor", actor.UserID)
	return s.reload(ctx, actor, id)
}

// ProvideRequirement answers a Required item and moves it to Provided.
func (s *Service) ProvideRequirement(ctx context.Context, actor types.Actor, id int64, description string, files []Upload) (ItemView, error) {
	item, err := s.loadItem(ctx, actor, id)
	if err != nil {
		return ItemView{}, err
	}
	if err := lifecycle.ValidateProvide(item, actor.Role); err != nil {
		return ItemView{}, forbidden(err)
	}
	desc := strings.TrimSpace(description)
	if desc == "" && len(files) == 0 {
		return ItemView{}, FieldErrors{"provided_description": "a description or attachment is required"}
	}
	names, err := s.saveUploads(files)
	if err != nil {
		return ItemView{}, err
	}
	updates := map[string]interface{}{
		"status":               types.StatusProvided,
		"provided_description": &desc,
		"provided_attachments": append(slices.Clone(item.ProvidedAttachments), names...),
	}
	if err := s.store.UpdateItem(ctx, id, updates, actor.UserID); err != nil {
		s.removeUploads(names)
		return ItemView{}, s.internal(ctx, "provide requirement", err, "item_id", id)
	}
	return s.reload(ctx, actor, id)
}

// UpdateProvided edits the answer of an already provided Required item.
func (s *Service) UpdateProvided(ctx context.Context, actor types.Actor, id int64, description *string, files []Upload, remove []string) (ItemView, error) {
	item, err := s.loadItem(ctx, actor, id)
	if err != nil {
		return ItemView{}, err
	}
	if err := lifecycle.ValidateProvide(item, actor.Role); err != nil {
		return ItemView{}, forbidden(err)
	}
	if item.Status != types.StatusProvided {
		return ItemView{}, fmt.Errorf("item %d has not been provided yet: %w", id, ErrInvalidStatus)
	}
	names, err := s.saveUploads(files)
	if err != nil {
		return ItemView{}, err
	}
	updates := map[string]interface{}{
		"provided_attachments": mergeAttachments(item.ProvidedAttachments, names, remove),
	}
	if description != nil {
		desc := strings.TrimSpace(*description)
		updates["provided_description"] = &desc
	}
	if err := s.store.UpdateItem(ctx, id, updates, actor.UserID); err != nil {
		s.removeUploads(names)
		return ItemView{}, s.internal(ctx, "update provided", err, "item_id", id)
	}
	s.removeUploads(removedOnly(item.ProvidedAttachments, remove))
	return s.reload(ctx, actor, id)
}

// FilterOptions lists the values the item filters offer.
type FilterOptions struct {
	Types     []types.ItemType                      `json:"types"`
	Statuses  map[types.ItemType][]types.ItemStatus `json:"statuses"`
	Creators  []string                              `json:"creators"`
	Assignees []string                              `json:"assignees"`
}

// GetFilterOptions builds filter choices from the items actor can see.
func (s *Service) GetFilterOptions(ctx context.Context, actor types.Actor) (*FilterOptions, error) {
	items, err := s.store.SearchItems(ctx, types.ItemFilter{Visibility: &actor})
	if err != nil {
		return nil, s.internal(ctx, "filter options", err)
	}
	opts := &FilterOptions{
		Types:    []types.ItemType{types.ItemTask, types.ItemTicket, types.ItemRequired},
		Statuses: map[types.ItemType][]types.ItemStatus{},
	}
	for _, t := range opts.Types {
		opts.Statuses[t] = append(lifecycle.Sequence(t), types.StatusDropped)
	}
	creators := map[string]bool{}
	assignees := map[string]bool{}
	for _, it := range items {
		if it.CreatedByName != "" {
			creators[it.CreatedByName] = true
		}
		if it.AssignedToName != "" {
			assignees[it.AssignedToName] = true
		}
	}
	opts.Creators = sortedSet(creators)
	opts.Assignees = sortedSet(assignees)
	return opts, nil
}

// ClientAccounts lists client accounts. Clients only see their own.
func (s *Service) ClientAccounts(ctx context.Context, actor types.Actor) ([]*types.ClientAccount, error) {
	if actor.IsDoer() {
		return nil, fmt.Errorf("doers may not list client accounts: %w", ErrForbidden)
	}
	accts, err := s.store.ListClientAccounts(ctx)
	if err != nil {
		return nil, s.internal(ctx, "list client accounts", err)
	}
	if actor.IsClient() {
		var own []*types.ClientAccount
		for _, a := range accts {
			if actor.ClientAccountID != nil && a.ID == *actor.ClientAccountID {
				own = append(own, a)
			}
		}
		return own, nil
	}
	return accts, nil
}

// ClientUsers lists client users, optionally narrowed to one account.
// Clients are always narrowed to their own account.
func (s *Service) ClientUsers(ctx context.Context, actor types.Actor, accountID *int64) ([]*types.User, error) {
	if actor.IsDoer() {
		return nil, fmt.Errorf("doers may not list client users: %w", ErrForbidden)
	}
	if actor.IsClient() {
		if actor.ClientAccountID == nil {
			return nil, nil
		}
		accountID = actor.ClientAccountID
	}
	role := types.RoleClient
	users, err := s.store.ListUsers(ctx, types.UserFilter{Role: &role, ClientAccountID: accountID})
	if err != nil {
		return nil, s.internal(ctx, "list client users", err)
	}
	return users, nil
}

// DownloadAttachment opens a file attached to an item actor can see. The
// returned name is the original upload name.
func (s *Service) DownloadAttachment(ctx context.Context, actor types.Actor, itemID int64, stored string) (*os.File, string, error) {
	item, err := s.loadItem(ctx, actor, itemID)
	if err != nil {
		return nil, "", err
	}
	if !item.HasAttachment(stored) {
		return nil, "", fmt.Errorf("attachment %q on item %d: %w", stored, itemID, ErrNotFound)
	}
	if s.files == nil {
		return nil, "", fmt.Errorf("attachments are not configured: %w", ErrNotFound)
	}
	f, err := s.files.Open(stored)
	if err != nil {
		return nil, "", err
	}
	return f, DisplayName(stored), nil
}

func (s *Service) reload(ctx context.Context, actor types.Actor, id int64) (ItemView, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return ItemView{}, s.internal(ctx, "get item", err, "item_id", id)
	}
	return view(item, actor), nil
}

func (s *Service) saveUploads(files []Upload) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}
	if s.files == nil {
		return nil, fmt.Errorf("attachments are not configured: %w", ErrInvalidInput)
	}
	return s.files.SaveAll(files)
}

func (s *Service) removeUploads(names []string) {
	if s.files != nil && len(names) > 0 {
		s.files.Remove(names...)
	}
}

// mergeAttachments drops removed names from current and appends added.
func mergeAttachments(current, added, removed []string) []string {
	out := make([]string, 0, len(current)+len(added))
	for _, name := range current {
		if !slices.Contains(removed, name) {
			out = append(out, name)
		}
	}
	return append(out, added...)
}

// removedOnly returns the names in removed that current actually held.
func removedOnly(current, removed []string) []string {
	var out []string
	for _, name := range removed {
		if slices.Contains(current, name) {
			out = append(out, name)
		}
	}
	return out
}

func sortedSet(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
