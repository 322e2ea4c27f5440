package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/pkg/jwt"
	"github.com/xiebiao/bookhub/pkg/logger"
)

// App 组装完成的应用
type App struct {
	cfg    *config.Config
	engine *gin.Engine
	log    *zap.Logger
}

func newApp(cfg *config.Config, engine *gin.Engine, log *zap.Logger) *App {
	return &App{cfg: cfg, engine: engine, log: log}
}

// provideLogger 从配置创建zap.Logger并设为全局Logger（response.Error使用全局Logger）
func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	log, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, nil, err
	}
	logger.Set(log)
	return log, func() { _ = log.Sync() }, nil
}

// provideJWTManager jwt.NewManager只需要JWT相关的配置，Wire无法自动从Config提取
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}
