package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/Fooracles/SystemApp-sub000/internal/types"
	"github.com/Fooracles/SystemApp-sub000/internal/workflow"
)

// TicketService is the subset of workflow.Service the ticket endpoint uses.
type TicketService interface {
	GetItems(ctx context.Context, actor types.Actor, filter types.ItemFilter) ([]workflow.ItemView, error)
	CreateItem(ctx context.Context, actor types.Actor, in workflow.CreateItemInput) (workflow.ItemView, error)
	UpdateItem(ctx context.Context, actor types.Actor, in workflow.UpdateItemInput) (workflow.ItemView, error)
	UpdateItemStatus(ctx context.Context, actor types.Actor, id int64, status string) (workflow.ItemView, error)
	DropItem(ctx context.Context, actor types.Actor, id int64) (workflow.ItemView, error)
	ProvideRequirement(ctx context.Context, actor types.Actor, id int64, description string, files []workflow.Upload) (workflow.ItemView, error)
	UpdateProvided(ctx context.Context, actor types.Actor, id int64, description *string, files []workflow.Upload, remove []string) (workflow.ItemView, error)
	GetFilterOptions(ctx context.Context, actor types.Actor) (*workflow.FilterOptions, error)
	ClientAccounts(ctx context.Context, actor types.Actor) ([]*types.ClientAccount, error)
	ClientUsers(ctx context.Context, actor types.Actor, accountID *int64) ([]*types.User, error)
	DownloadAttachment(ctx context.Context, actor types.Actor, itemID int64, stored string) (*os.File, string, error)
}

// ticketAction handles one ?action= value. It returns the payload merged
// into the {success: true} response.
type ticketAction func(ctx context.Context, actor types.Actor, values url.Values, files []workflow.Upload) (map[string]any, error)

type ticketHandler struct {
	svc     TicketService
	logger  *slog.Logger
	actions map[string]ticketAction
	writes  map[string]bool
}

// NewTicketHandler returns the single dispatching endpoint behind the ticket
// page. The action query or form parameter selects the operation.
func NewTicketHandler(svc TicketService, logger *slog.Logger) http.Handler {
	h := &ticketHandler{svc: svc, logger: logger}
	h.actions = map[string]ticketAction{
		"get_items":           h.getItems,
		"create_item":         h.createItem,
		"update_item":         h.updateItem,
		"update_status":       h.updateStatus,
		"drop_item":           h.dropItem,
		"provide_requirement": h.provideRequirement,
		"update_provided":     h.updateProvided,
		"get_filter_options":  h.filterOptions,
		"get_client_accounts": h.clientAccounts,
		"get_client_users":    h.clientUsers,
	}
	h.writes = map[string]bool{
		"create_item":         true,
		"update_item":         true,
		"update_status":       true,
		"drop_item":           true,
		"provide_requirement": true,
		"update_provided":     true,
	}
	return h
}

func (h *ticketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	values, err := formValues(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, fmt.Sprintf("decode payload: %v", err), nil)
		return
	}
	action := strings.TrimSpace(values.Get("action"))

	if action == "download_attachment" {
		h.download(w, r, actor, values)
		return
	}
	fn, ok := h.actions[action]
	if !ok {
		h.fail(w, http.StatusBadRequest, "Unknown action", nil)
		return
	}
	if h.writes[action] && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	files, err := uploads(r)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer closeUploads(files)

	payload, err := fn(r.Context(), actor, values, files)
	if err != nil {
		var fe workflow.FieldErrors
		if errors.As(err, &fe) {
			h.fail(w, http.StatusUnprocessableEntity, "Please correct the highlighted fields", fe)
			return
		}
		code := statusForError(err)
		if code == http.StatusInternalServerError {
			h.logger.ErrorContext(r.Context(), "ticket action failed", "action", action, "err", err)
		}
		h.fail(w, code, errorMessage(err), nil)
		return
	}
	if payload == nil {
		payload = map[string]any{}
	}
	payload["success"] = true
	writeJSON(w, http.StatusOK, payload)
}

func (h *ticketHandler) fail(w http.ResponseWriter, code int, message string, fields workflow.FieldErrors) {
	payload := map[string]any{"success": false, "message": message}
	if len(fields) > 0 {
		payload["errors"] = fields
	}
	writeJSON(w, code, payload)
}

func itemID(values url.Values) (int64, error) {
	if id, ok := int64Value(values, "id"); ok {
		return id, nil
	}
	if id, ok := int64Value(values, "item_id"); ok {
		return id, nil
	}
	return 0, fmt.Errorf("id is required: %w", workflow.ErrInvalidInput)
}

func (h *ticketHandler) getItems(ctx context.Context, actor types.Actor, values url.Values, _ []workflow.Upload) (map[string]any, error) {
	var filter types.ItemFilter
	if raw := values.Get("type"); raw != "" {
		t, ok := types.ParseItemType(raw)
		if !ok {
			return nil, fmt.Errorf("unknown item type %q: %w", raw, workflow.ErrInvalidInput)
		}
		filter.Type = &t
	}
	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		st := types.ItemStatus(raw)
		filter.Status = &st
	}
	items, err := h.svc.GetItems(ctx, actor, filter)
	if err != nil {
		return nil, err
	}
	return map[string]any{"items": items}, nil
}

func (h *ticketHandler) createItem(ctx context.Context, actor types.Actor, values url.Values, files []workflow.Upload) (map[string]any, error) {
	in := workflow.CreateItemInput{
		Type:        values.Get("type"),
		Title:       values.Get("title"),
		Description: values.Get("description"),
		Files:       files,
	}
	if id, ok := int64Value(values, "assigned_to"); ok {
		in.AssignedTo = &id
	}
	item, err := h.svc.CreateItem(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	return map[string]any{"message": string(item.Type) + " created", "item": item}, nil
}

func (h *ticketHandler) updateItem(ctx context.Context, actor types.Actor, values url.Values, files []workflow.Upload) (map[string]any, error) {
	id, err := itemID(values)
	if err != nil {
		return nil, err
	}
	in := workflow.UpdateItemInput{
		ID:                id,
		Title:             optionalString(values, "title"),
		Description:       optionalString(values, "description"),
		AddFiles:          files,
		RemoveAttachments: listValue(values, "remove_attachments"),
	}
	if assignee, ok := int64Value(values, "assigned_to"); ok {
		in.AssignedTo = &assignee
	}
	item, err := h.svc.UpdateItem(ctx, actor, in)
	if err != nil {
		return nil, err
	}
	return map[string]any{"message": "Item updated", "item": item}, nil
}

func (h *ticketHandler) updateStatus(ctx context.Context, actor types.Actor, values url.Values, _ []workflow.Upload) (map[string]any, error) {
	id, err := itemID(values)
	if err != nil {
		return nil, err
	}
	item, err := h.svc.UpdateItemStatus(ctx, actor, id, values.Get("status"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"message": "Status updated to " + string(item.Status), "item": item}, nil
}

func (h *ticketHandler) dropItem(ctx context.Context, actor types.Actor, values url.Values, _ []workflow.Upload) (map[string]any, error) {
	id, err := itemID(values)
	if err != nil {
		return nil, err
	}
	item, err := h.svc.DropItem(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return map[string]any{"message": "Item dropped", "item": item}, nil
}

func (h *ticketHandler) provideRequirement(ctx context.Context, actor types.Actor, values url.Values, files []workflow.Upload) (map[string]any, error) {
	id, err := itemID(values)
	if err != nil {
		return nil, err
	}
	item, err := h.svc.ProvideRequirement(ctx, actor, id, values.Get("provided_description"), files)
	if err != nil {
		return nil, err
	}
	return map[string]any{"message": "Requirement provided", "item": item}, nil
}

func (h *ticketHandler) updateProvided(ctx context.Context, actor types.Actor, values url.Values, files []workflow.Upload) (map[string]any, error) {
	id, err := itemID(values)
	if err != nil {
		return nil, err
	}
	item, err := h.svc.UpdateProvided(ctx, actor, id, optionalString(values, "provided_description"), files,
		listValue(values, "remove_attachments"))
	if err != nil {
		return nil, err
	}
	return map[string]any{"message": "Provided details updated", "item": item}, nil
}

func (h *ticketHandler) filterOptions(ctx context.Context, actor types.Actor, _ url.Values, _ []workflow.Upload) (map[string]any, error) {
	opts, err := h.svc.GetFilterOptions(ctx, actor)
	if err != nil {
		return nil, err
	}
	return map[string]any{"options": opts}, nil
}

func (h *ticketHandler) clientAccounts(ctx context.Context, actor types.Actor, _ url.Values, _ []workflow.Upload) (map[string]any, error) {
	accts, err := h.svc.ClientAccounts(ctx, actor)
	if err != nil {
		return nil, err
	}
	if accts == nil {
		accts = []*types.ClientAccount{}
	}
	return map[string]any{"accounts": accts}, nil
}

func (h *ticketHandler) clientUsers(ctx context.Context, actor types.Actor, values url.Values, _ []workflow.Upload) (map[string]any, error) {
	var account *int64
	if id, ok := int64Value(values, "account_id"); ok {
		account = &id
	}
	users, err := h.svc.ClientUsers(ctx, actor, account)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*types.User{}
	}
	return map[string]any{"users": users}, nil
}

func (h *ticketHandler) download(w http.ResponseWriter, r *http.Request, actor types.Actor, values url.Values) {
	id, err := itemID(values)
	if err != nil {
		h.fail(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	f, name, err := h.svc.DownloadAttachment(r.Context(), actor, id, values.Get("file"))
	if err != nil {
		h.fail(w, statusForError(err), errorMessage(err), nil)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Cache-Control", "no-store")
	stat, err := f.Stat()
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}
	http.ServeContent(w, r, name, stat.ModTime(), f)
}

// uploads opens every file sent under "attachments" or "files".
func uploads(r *http.Request) ([]workflow.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	var headers []*multipart.FileHeader
	for _, key := range []string{"attachments", "attachments[]", "files", "files[]"} {
		headers = append(headers, r.MultipartForm.File[key]...)
	}
	out := make([]workflow.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeUploads(out)
			return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		out = append(out, workflow.Upload{Name: fh.Filename, Reader: f})
	}
	return out, nil
}

func closeUploads(files []workflow.Upload) {
	for _, f := range files {
		if c, ok := f.Reader.(io.Closer); ok {
			_ = c.Close()
		}
	}
}
