package main

import (
	"context"
	"log"

	"github.com/virelio/ai-workspace/internal/config"
	"github.com/virelio/ai-workspace/internal/db"
	"github.com/virelio/ai-workspace/internal/httpapi"
	"github.com/virelio/ai-workspace/internal/inference"
	"github.com/virelio/ai-workspace/internal/store/rabbitmq"
	"github.com/virelio/ai-workspace/internal/store/redisstore"
	"github.com/virelio/ai-workspace/internal/workspace"
)

func main() {
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := rds.Ping(context.Background()); err != nil {
		log.Printf("redis ping: %v (continuing, cache degraded)", err)
	}

	reg := inference.NewRegistry()
	reg.Register("huggingface", func(ctx context.Context, model string) (inference.Provider, error) {
		_ = ctx
		m := model
		if m == "" {
			m = cfg.HFModel
		}
		return inference.NewHuggingFaceProvider(cfg.HFBaseURL, cfg.HFToken, m, cfg.HFMaxNewTokens, cfg.HFTemperature), nil
	})

	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbit publisher: %v", err)
	}
	defer pub.Close()

	ws := workspace.NewService(
		workspace.NewManager(),
		reg,
		workspace.NewRepo(gdb),
		pub,
		cfg.Provider,
		cfg.HFModel,
	)

	r := httpapi.NewRouter(gdb, cfg, rds, ws)

	log.Printf("server listening on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
