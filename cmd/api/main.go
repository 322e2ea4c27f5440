package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/xiebiao/bookhub/internal/infrastructure/config"
	"github.com/xiebiao/bookhub/pkg/metrics"
	"github.com/xiebiao/bookhub/pkg/tracing"
)

// @title           BookHub API
// @version         1.0
// @description     在线书店后端：图书目录、书评、购物车、结算与订单
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// main 服务入口
//
// 启动顺序：
// 1. 加载配置（.env → 环境变量 → config.yaml → 默认值）
// 2. 注册Prometheus指标、初始化链路追踪（按配置开关）
// 3. Wire组装依赖：日志 → MySQL → Redis → MQ → 仓储 → 用例 → Handler → 路由
// 4. 启动HTTP服务，收到SIGINT/SIGTERM后优雅关闭
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	if cfg.Metrics.Enabled {
		metrics.InitMetrics()
	}

	shutdownTracer := func(context.Context) error { return nil }
	if cfg.Tracing.Enabled {
		shutdownTracer, err = tracing.InitTracer(tracing.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
			Insecure:    cfg.Tracing.Insecure,
		})
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
	}

	app, cleanup, err := InitializeApp(cfg)
	if err != nil {
		log.Fatalf("初始化应用失败: %v", err)
	}

	if err := app.run(shutdownTracer); err != nil {
		app.log.Error("服务异常退出", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	cleanup()
}

// run 启动HTTP服务并阻塞到收到退出信号
func (a *App) run(shutdownTracer func(context.Context) error) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("HTTP服务启动",
			zap.String("addr", srv.Addr),
			zap.String("mode", a.cfg.Server.Mode),
			zap.Bool("metrics", a.cfg.Metrics.Enabled),
			zap.Bool("tracing", a.cfg.Tracing.Enabled),
			zap.Bool("mq", a.cfg.MQ.Enabled),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP服务启动失败: %w", err)
	case sig := <-quit:
		a.log.Info("收到退出信号，开始优雅关闭", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP服务强制关闭: %w", err)
	}
	if err := shutdownTracer(ctx); err != nil {
		a.log.Warn("关闭链路追踪失败", zap.Error(err))
	}

	a.log.Info("服务已完全关闭")
	return nil
}
