package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Fooracles/SystemApp-sub000/internal/query"
	"github.com/Fooracles/SystemApp-sub000/internal/types"
)

const itemSelect = `
	SELECT i.id, i.item_type, i.title, i.description, i.status, i.created_by, i.assigned_to,
	       i.created_at, i.status_updated_at, i.attachments, i.provided_description, i.provided_attachments,
	       COALESCE(cu.name, ''), COALESCE(au.name, '')
	FROM work_items i
	LEFT JOIN users cu ON cu.id = i.created_by
	LEFT JOIN users au ON au.id = i.assigned_to`

// allowedItemFields lists the columns UpdateItem may set.
var allowedItemFields = map[string]bool{
	"title":                true,
	"description":          true,
	"status":               true,
	"assigned_to":          true,
	"attachments":          true,
	"provided_description": true,
	"provided_attachments": true,
}

// CreateItem inserts a work item and records a created event.
func (s *Store) CreateItem(ctx context.Context, item *types.WorkItem, actorID int64) error {
	return s.withTx(ctx, func(q *queries) error {
		return q.createItem(ctx, item, actorID)
	})
}

// GetItem retrieves a work item by ID.
func (s *Store) GetItem(ctx context.Context, id int64) (*types.WorkItem, error) {
	return s.queries(s.db).getItem(ctx, id)
}

// UpdateItem applies updates to a work item and records an event.
func (s *Store) UpdateItem(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	return s.withTx(ctx, func(q *queries) error {
		return q.updateItem(ctx, id, updates, actorID)
	})
}

// SearchItems returns work items matching filter, newest first.
func (s *Store) SearchItems(ctx context.Context, filter types.ItemFilter) ([]*types.WorkItem, error) {
	where, args := query.ItemWhere(filter)
	// #nosec G202 - where is built from parameterized predicates
	rows, err := s.db.QueryContext(ctx, itemSelect+" "+where+" ORDER BY i.id DESC", args...)
	if err != nil {
		return nil, wrapDBError("search items", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*types.WorkItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (q *queries) createItem(ctx context.Context, item *types.WorkItem, actorID int64) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	now := q.now().UTC().Truncate(time.Second)
	item.CreatedAt = now
	item.StatusUpdatedAt = now
	stamp := now.Format(timestampLayout)

	res, err := q.q.ExecContext(ctx, `
		INSERT INTO work_items (item_type, title, description, status, created_by, assigned_to,
			created_at, status_updated_at, attachments, provided_description, provided_attachments)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, string(item.Type), item.Title, item.Description, string(item.Status), item.CreatedBy, int64PtrArg(item.AssignedTo),
		stamp, stamp, encodeList(item.Attachments), stringPtrArg(item.ProvidedDescription), encodeList(item.ProvidedAttachments))
	if err != nil {
		return wrapDBError("insert item", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return wrapDBError("item id", err)
	}
	item.ID = id
	return q.recordEvent(ctx, types.EntityItem, id, types.EventCreated, actorID, nil, encodeEventValue(item))
}

func (q *queries) getItem(ctx context.Context, id int64) (*types.WorkItem, error) {
	row := q.q.QueryRowContext(ctx, itemSelect+" WHERE i.id = ?", id)
	item, err := scanItem(row)
	if err != nil {
		return nil, wrapDBErrorf(err, "get item %d", id)
	}
	return item, nil
}

func (q *queries) updateItem(ctx context.Context, id int64, updates map[string]interface{}, actorID int64) error {
	old, err := q.getItem(ctx, id)
	if err != nil {
		return err
	}

	setClauses := []string{}
	args := []interface{}{}
	for _, key := range sortedKeys(updates) {
		if !allowedItemFields[key] {
			return fmt.Errorf("invalid field for update: %s", key)
		}
		v, err := normalizeValue(updates[key])
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
		setClauses = append(setClauses, key+" = ?")
		args = append(args, v)
	}
	if len(setClauses) == 0 {
		return nil
	}
	if _, ok := updates["status"]; ok {
		setClauses = append(setClauses, "status_updated_at = ?")
		args = append(args, q.stamp())
	}
	args = append(args, id)

	// #nosec G202 - column names come from allowedItemFields
	if _, err := q.q.ExecContext(ctx, "UPDATE work_items SET "+strings.Join(setClauses, ", ")+" WHERE id = ?", args...); err != nil {
		return wrapDBErrorf(err, "update item %d", id)
	}
	return q.recordEvent(ctx, types.EntityItem, id, itemEventType(updates), actorID, encodeEventValue(old), encodeEventValue(updates))
}

func itemEventType(updates map[string]interface{}) types.EventType {
	if status, ok := updates["status"]; ok {
		if fmt.Sprint(status) == string(types.StatusDropped) {
			return types.EventDropped
		}
		if _, provided := updates["provided_description"]; provided {
			return types.EventProvided
		}
		return types.EventStatusChanged
	}
	if _, provided := updates["provided_description"]; provided {
		return types.EventProvided
	}
	return types.EventUpdated
}

func scanItem(row scanner) (*types.WorkItem, error) {
	var (
		item                types.WorkItem
		itemType, status    string
		assignedTo          sql.NullInt64
		createdAt, statusAt string
		attachments         string
		providedDescription sql.NullString
		providedAttachments string
	)
	if err := row.Scan(&item.ID, &itemType, &item.Title, &item.Description, &status, &item.CreatedBy, &assignedTo,
		&createdAt, &statusAt, &attachments, &providedDescription, &providedAttachments,
		&item.CreatedByName, &item.AssignedToName); err != nil {
		return nil, err
	}
	item.Type = types.ItemType(itemType)
	item.Status = types.ItemStatus(status)
	item.AssignedTo = nullInt64Ptr(assignedTo)
	item.CreatedAt = parseTimestamp(createdAt)
	item.StatusUpdatedAt = parseTimestamp(statusAt)
	item.Attachments = decodeList(attachments)
	item.ProvidedDescription = nullStringPtr(providedDescription)
	item.ProvidedAttachments = decodeList(providedAttachments)
	return &item, nil
}
