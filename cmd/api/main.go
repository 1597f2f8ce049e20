package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-contacts-api/internal/core/auth"
	"go-contacts-api/internal/core/cache"
	"go-contacts-api/internal/core/config"
	"go-contacts-api/internal/core/database"
	"go-contacts-api/internal/core/logger"
	"go-contacts-api/internal/core/mailer"
	"go-contacts-api/internal/core/server"
	"go-contacts-api/internal/core/storage"
	"go-contacts-api/internal/domain"
	"go-contacts-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := newLogger(cfg)
	defer cleanup()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Contact{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// Redis + 用户资料缓存
	rdb := cache.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		// 缓存不可用不拦启动，所有读写自动降级为查库
		log.Warn("redis unreachable, cache degraded", zap.Error(err))
	}
	profiles := cache.NewProfileCache(
		cache.New(rdb),
		time.Duration(cfg.Redis.ProfileTTLSec)*time.Second,
		log,
	)

	// SMTP 未配置时不发信
	var ml *mailer.Mailer
	if cfg.SMTP.Host != "" {
		ml = mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
		log.Info("mailer enabled", zap.String("host", cfg.SMTP.Host))
	}

	// 对象存储未配置时头像接口不可用
	var avatars *storage.AvatarStore
	if cfg.Storage.Endpoint != "" {
		var err error
		avatars, err = storage.NewAvatarStore(storage.Opts{
			Endpoint:      cfg.Storage.Endpoint,
			AccessKey:     cfg.Storage.AccessKey,
			SecretKey:     cfg.Storage.SecretKey,
			Bucket:        cfg.Storage.Bucket,
			Region:        cfg.Storage.Region,
			UseSSL:        cfg.Storage.UseSSL,
			PublicBaseURL: cfg.Storage.PublicBaseURL,
		})
		if err != nil {
			log.Fatal("avatar storage init", zap.Error(err))
		}
		if err := avatars.EnsureBucket(context.Background()); err != nil {
			log.Fatal("avatar storage bucket", zap.Error(err))
		}
		log.Info("avatar storage ready", zap.String("bucket", cfg.Storage.Bucket))
	}

	// JWT：三类令牌各自密钥与有效期
	jwter := &auth.JWTer{
		AccessSecret:  []byte(cfg.JWT.AccessSecret),
		RefreshSecret: []byte(cfg.JWT.RefreshSecret),
		ResetSecret:   []byte(cfg.JWT.ResetSecret),
		Issuer:        cfg.JWT.Issuer,
		AccessTTL:     time.Duration(cfg.JWT.AccessTokenTTLMin) * time.Minute,
		RefreshTTL:    time.Duration(cfg.JWT.RefreshTokenTTLHr) * time.Hour,
		ResetTTL:      time.Duration(cfg.JWT.ResetTokenTTLMin) * time.Minute,
	}

	// 路由
	r := router.NewAPIEngine(db, router.Deps{
		Log:      log,
		JWT:      jwter,
		Profiles: profiles,
		Mailer:   ml,
		Avatars:  avatars,
		TestMode: cfg.App.TestMode,
	})

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)

	// 启动日志
	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("contacts api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	// 异步启动
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("contacts api start FAILED", zap.Error(err))
		}
	}()
	log.Info("contacts api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	_ = rdb.Close()
	log.Info("contacts api stopped gracefully")
}

func newLogger(cfg *config.Config) (*zap.Logger, func()) {
	if cfg.Log.File == "" {
		return logger.New(cfg.Log.Level, cfg.Log.JSON)
	}
	return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON, logger.FileRotate{
		Enable:     true,
		Filename:   cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.OpenWithRetry(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		ConnAttempts:       cfg.DB.ConnAttempts,
		ConnBackoffSec:     cfg.DB.ConnBackoffSec,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
