package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"github.com/lookloom/media_vault/biz/handler"
)

// RegisterMediaRoutes configures HTTP routes for the lifecycle APIs.
func RegisterMediaRoutes(r *server.Hertz, media *handler.MediaHandler, trash *handler.TrashHandler) {
	v1 := r.Group("/api/v1")

	if media != nil {
		m := v1.Group("/media")
		m.POST("/ingest", media.Ingest)
		m.POST("/presign-upload", media.PresignUpload)
		m.POST("/presign-view", media.PresignView)
		m.DELETE("", media.Delete)
		m.GET("/public-url", media.PublicURL)
	}

	if trash != nil {
		t := v1.Group("/trash")
		t.POST("/soft-delete", trash.SoftDelete)
		t.POST("/restore", trash.Restore)
		t.GET("", trash.List)
		t.POST("/empty", trash.Empty)
	}

	r.GET("/ping", handler.Ping)
}
