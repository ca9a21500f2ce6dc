package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/lookloom/media_vault/biz/model/api"
	"github.com/lookloom/media_vault/biz/service"
	"github.com/lookloom/media_vault/pkg/common"
)

// TrashHandler exposes the soft-delete lifecycle: trash, restore, list and
// purge.
type TrashHandler struct {
	service *service.Service
}

func NewTrashHandler(svc *service.Service) *TrashHandler {
	return &TrashHandler{service: svc}
}

// SoftDelete parks an object in the trash namespace.
func (h *TrashHandler) SoftDelete(ctx context.Context, c *app.RequestContext) {
	var req api.KeyRequest
	if err := c.BindAndValidate(&req); err != nil {
		WriteBadRequest(c, err)
		return
	}

	trashKey, deletedAt, err := h.service.SoftDelete(EnrichContext(ctx, c), req.GetKey())
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			WriteBadRequest(c, err)
			return
		}
		if errors.Is(err, service.ErrFileNotFound) {
			WriteNotFound(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}

	RespondData(c, &api.SoftDeleteResponse{TrashKey: trashKey, DeletedAt: deletedAt})
}

// Restore brings a trashed object back to its original key.
func (h *TrashHandler) Restore(ctx context.Context, c *app.RequestContext) {
	var req api.KeyRequest
	if err := c.BindAndValidate(&req); err != nil {
		WriteBadRequest(c, err)
		return
	}

	restoredAt, err := h.service.Restore(EnrichContext(ctx, c), req.GetKey())
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			WriteBadRequest(c, err)
			return
		}
		if errors.Is(err, service.ErrRecoveryExpired) {
			WriteGone(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}

	RespondData(c, &api.RestoreResponse{RestoredKey: req.GetKey(), RestoredAt: restoredAt})
}

// List returns one page of the caller's trash.
func (h *TrashHandler) List(ctx context.Context, c *app.RequestContext) {
	ctx = EnrichContext(ctx, c)
	userID, ok := common.GetUserID(ctx)
	if !ok {
		WriteBadRequest(c, fmt.Errorf("X-User-Id header is required"))
		return
	}

	entries, err := h.service.ListTrash(ctx, userID)
	if err != nil {
		WriteInternalError(c, err)
		return
	}

	RespondData(c, entries)
}

// Empty purges every trashed object of the caller.
func (h *TrashHandler) Empty(ctx context.Context, c *app.RequestContext) {
	ctx = EnrichContext(ctx, c)
	userID, ok := common.GetUserID(ctx)
	if !ok {
		WriteBadRequest(c, fmt.Errorf("X-User-Id header is required"))
		return
	}

	deleted, err := h.service.EmptyTrash(ctx, userID)
	if err != nil {
		WriteInternalError(c, err)
		return
	}

	RespondData(c, &api.EmptyTrashResponse{Deleted: deleted})
}
