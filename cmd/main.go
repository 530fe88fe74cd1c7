package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/sentencekit/sentencekit/pkg/server"
	"github.com/sentencekit/sentencekit/pkg/trace"
)

func main() {
	godotenv.Load()

	ctx := context.Background()
	if err := trace.Initialize(ctx, trace.DefaultConfig()); err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer trace.Shutdown(ctx)

	cfg := server.DefaultServerConfig()
	if addr := os.Getenv("SEGMENT_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if lang := os.Getenv("SEGMENT_LANGUAGE"); lang != "" {
		cfg.Tokenizer.Language = lang
	}

	srv, err := server.NewSegmentServer(cfg)
	if err != nil {
		log.Fatal(err)
	}

	log.Printf("segment server starting on %s (language=%s)", cfg.Addr, cfg.Tokenizer.Language)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatal(err)
	}
}
