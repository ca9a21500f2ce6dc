package handler

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/hertz/pkg/app"

	"github.com/lookloom/media_vault/biz/model/api"
	"github.com/lookloom/media_vault/biz/service"
)

// MediaHandler exposes the gateway operations: ingest, presign, delete and
// public URL computation.
type MediaHandler struct {
	service *service.Service
}

func NewMediaHandler(svc *service.Service) *MediaHandler {
	return &MediaHandler{service: svc}
}

// Ingest pulls an externally rendered asset into the store.
func (h *MediaHandler) Ingest(ctx context.Context, c *app.RequestContext) {
	var req api.IngestRequest
	if err := c.BindAndValidate(&req); err != nil {
		WriteBadRequest(c, err)
		return
	}

	result, err := h.service.Ingest(EnrichContext(ctx, c), &service.IngestInput{
		SourceURL:   req.GetSourceURL(),
		Key:         req.GetKey(),
		ContentType: req.GetContentType(),
		Metadata:    req.GetMetadata(),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			WriteBadRequest(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}

	RespondData(c, &api.IngestResponse{
		Key:  result.Key,
		Size: result.Size,
		ETag: result.ETag,
	})
}

// PresignUpload authorizes a direct client PUT.
func (h *MediaHandler) PresignUpload(ctx context.Context, c *app.RequestContext) {
	var req api.PresignUploadRequest
	if err := c.BindAndValidate(&req); err != nil {
		WriteBadRequest(c, err)
		return
	}

	expires := time.Duration(req.GetExpiresSeconds()) * time.Second
	signed, err := h.service.PresignUpload(EnrichContext(ctx, c), req.GetKey(), req.GetContentType(), expires)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			WriteBadRequest(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}

	RespondData(c, &api.PresignUploadResponse{URL: signed.URL, Key: signed.Key})
}

// PresignView authorizes a direct client GET.
func (h *MediaHandler) PresignView(ctx context.Context, c *app.RequestContext) {
	var req api.PresignViewRequest
	if err := c.BindAndValidate(&req); err != nil {
		WriteBadRequest(c, err)
		return
	}

	expires := time.Duration(req.GetExpiresSeconds()) * time.Second
	url, err := h.service.PresignView(EnrichContext(ctx, c), req.GetKey(), expires)
	if err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			WriteBadRequest(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}

	RespondData(c, &api.PresignViewResponse{URL: url})
}

// Delete removes an object outright. Absent objects delete successfully.
func (h *MediaHandler) Delete(ctx context.Context, c *app.RequestContext) {
	key := c.Query("key")
	if err := h.service.Delete(EnrichContext(ctx, c), key); err != nil {
		if errors.Is(err, service.ErrInvalidArgument) {
			WriteBadRequest(c, err)
			return
		}
		WriteInternalError(c, err)
		return
	}
	RespondData(c, nil)
}

// PublicURL computes the browser URL for a public asset.
func (h *MediaHandler) PublicURL(ctx context.Context, c *app.RequestContext) {
	key := c.Query("key")
	url, err := h.service.PublicURL(key)
	if err != nil {
		WriteBadRequest(c, err)
		return
	}
	RespondData(c, &api.PresignViewResponse{URL: url})
}
