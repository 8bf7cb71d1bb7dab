package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pongarena/server"
	"pongarena/store"
)

// Pong Arena 入口：配置 → 日志 → 持久化后端 → 房间注册表 → HTTP + WebSocket 服务
func main() {
	var (
		addr    string
		cfgPath string
	)
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides config)")
	flag.StringVar(&cfgPath, "config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := server.LoadConfig(cfgPath)
	if err != nil {
		panic(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	if err := server.InitLogger(cfg.Log); err != nil {
		panic(err)
	}
	defer server.SyncLogger()

	ctx := context.Background()

	// 持久化后端均为可选：未配置时比赛记录直接丢弃，游戏本身不受影响
	var (
		matches     *store.MatchStore
		leaderboard *store.Leaderboard
		sink        store.Sink = store.NopSink{}
	)
	if dsn := cfg.Postgres.DSN; dsn != "" {
		matches, err = store.NewMatchStore(ctx, dsn)
		if err != nil {
			server.Log.Fatalf("postgres: %v", err)
		}
	}
	if cfg.Redis.Addr != "" {
		leaderboard, err = store.NewLeaderboard(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			server.Log.Fatalf("redis: %v", err)
		}
	}
	if matches != nil || leaderboard != nil {
		rec := store.NewRecorder(matches, leaderboard, server.Log)
		defer rec.Close()
		sink = rec
	}

	rm := server.NewRoomManager(sink, server.Log)
	defer rm.Shutdown()
	// 预创建默认房间，便于快速试跑
	_ = rm.GetOrCreateRoom(cfg.Game.DefaultRoom)

	gw := server.NewGateway(rm, server.Log)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.ServeWS)
	// 前后端分离：/ 映射到 web 目录的静态客户端
	mux.Handle("/", http.FileServer(http.Dir("web")))
	mux.HandleFunc("/admin/config", server.HandleAdminConfig(rm))
	mux.HandleFunc("/metrics", server.HandleMetrics(rm))
	mux.HandleFunc("/leaderboard", server.HandleLeaderboard(leaderboard))
	mux.HandleFunc("/matches", server.HandleRecentMatches(matches))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

	go func() {
		server.Log.Infof("pong arena listening on %s; open http://localhost%v/", cfg.Server.Addr, cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		server.Log.Errorf("server shutdown: %v", err)
	}
}
