package main

import (
	"context"
	"log"
	"time"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"

	"github.com/lookloom/media_vault/biz/handler"
	"github.com/lookloom/media_vault/biz/middleware"
	"github.com/lookloom/media_vault/biz/router"
	"github.com/lookloom/media_vault/biz/service"
	"github.com/lookloom/media_vault/pkg/config"
	"github.com/lookloom/media_vault/pkg/keys"
	"github.com/lookloom/media_vault/pkg/lock"
	"github.com/lookloom/media_vault/pkg/redis"
	"github.com/lookloom/media_vault/pkg/storage/factory"
	"github.com/lookloom/media_vault/pkg/storage/s3"
	"github.com/lookloom/media_vault/pkg/validator"
)

const (
	keyLeaseTTL     = 30 * time.Second
	keyLeaseTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := factory.New(cfg.Storage)
	if err != nil {
		log.Fatalf("init storage: %v", err)
	}
	hlog.Infof("storage backend: %s", store.Type())

	// The bucket lifecycle rule is the backstop for the explicit retention
	// check; store-side expiry works in whole days.
	if s3Store, ok := store.(*s3.Storage); ok {
		retentionDays := int32((cfg.Trash.RetentionHours + 23) / 24)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := s3Store.EnsureTrashLifecycle(ctx, keys.TrashPrefix, retentionDays); err != nil {
			hlog.Warnf("install trash lifecycle rule: %v", err)
		}
		cancel()
	}

	redisClient, err := redis.NewClient(cfg.Redis)
	if err != nil {
		log.Fatalf("init redis: %v", err)
	}
	var locker *lock.KeyLock
	if redisClient != nil {
		locker = lock.New(redisClient, "media_vault:key_lock:", keyLeaseTTL, keyLeaseTimeout)
		hlog.Infof("per-key leases enabled via redis")
	}

	svc := service.NewService(
		store,
		locker,
		validator.FromLists(cfg.Upload.MaxSize, cfg.Upload.AllowedTypes),
		service.Config{
			Retention:     time.Duration(cfg.Trash.RetentionHours) * time.Hour,
			ListLimit:     cfg.Trash.ListLimit,
			PurgePageSize: cfg.Trash.PurgePageSize,
		},
	)

	h := server.New(server.WithHostPorts(cfg.Server.Address))
	h.Use(
		middleware.Recovery(),
		middleware.Logging(),
		middleware.CORS(&cfg.CORS),
	)
	router.RegisterMediaRoutes(h, handler.NewMediaHandler(svc), handler.NewTrashHandler(svc))

	hlog.Infof("listening on %s", cfg.Server.Address)
	h.Spin()
}
