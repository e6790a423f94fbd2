// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command compass starts the Aleutian Compass API server.
//
// Aleutian Compass is a career-decision copilot built on a
// tool-using reasoning core:
//   - ReAct reasoning loop with a pluggable tool registry
//   - Meta-reasoning controller (circular reasoning and stall detection)
//   - Two-tier answer interpretation (deterministic extraction + model reasoning)
//   - Websocket onboarding conversations with event streaming
//
// Usage:
//
//	go run ./cmd/compass
//	go run ./cmd/compass -port 9090
//
// With Ollama:
//
//	OLLAMA_BASE_URL=http://localhost:11434 OLLAMA_MODEL=gpt-oss go run ./cmd/compass
//
// With OpenAI:
//
//	LLM_BACKEND=openai OPENAI_API_KEY=sk-... go run ./cmd/compass
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/compass/health
//
//	# List registered tools
//	curl http://localhost:8080/v1/compass/tools | jq
//
//	# Run a reasoning query
//	curl -X POST http://localhost:8080/v1/compass/reason \
//	  -H "Content-Type: application/json" \
//	  -d '{"query": "What is 15% of 80000?"}'
//
//	# Interpret an answer
//	curl -X POST http://localhost:8080/v1/compass/interpret \
//	  -H "Content-Type: application/json" \
//	  -d '{"variable": "min_salary", "answer": "around 45k"}'
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/AleutianCompass/pkg/logging"
	"github.com/AleutianAI/AleutianCompass/services/compass"
	"github.com/AleutianAI/AleutianCompass/services/llm"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	logDir := flag.String("log-dir", "", "Directory for JSON log files (disabled when empty)")
	flag.Parse()

	level := logging.LevelInfo
	if *debug {
		level = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  *logDir,
		Service: "compass",
	})
	defer logger.Close()
	slog.SetDefault(logger.Slog())

	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	client := buildLLMClient()

	svc := compass.NewService(client)

	router := gin.New()
	router.Use(gin.Recovery())
	if *debug {
		router.Use(gin.Logger())
	}
	compass.RegisterRoutes(router, svc)

	printBanner(*port)

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		slog.Info("Shutting down Aleutian Compass server")
		os.Exit(0)
	}()

	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting Aleutian Compass server", slog.String("address", addr))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildLLMClient selects the model backend from the environment and
// wraps it with retry and caching layers. A missing backend is fatal:
// every endpoint beyond tier-1 extraction needs a model.
func buildLLMClient() llm.LLMClient {
	var (
		client llm.LLMClient
		err    error
	)
	switch os.Getenv("LLM_BACKEND") {
	case "openai":
		client, err = llm.NewOpenAIClient()
	default:
		client, err = llm.NewOllamaClient()
	}
	if err != nil {
		slog.Error("Failed to initialize LLM backend", slog.String("error", err.Error()))
		slog.Info("Set OLLAMA_BASE_URL (and optionally OLLAMA_MODEL), or LLM_BACKEND=openai with OPENAI_API_KEY")
		os.Exit(1)
	}

	retried := llm.NewRetryClient(client, llm.DefaultRetryConfig())
	return llm.NewCachedClient(retried, llm.DefaultCachedClientConfig())
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                     ALEUTIAN COMPASS SERVER                       ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Career-decision copilot with a tool-using reasoning core.        ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/compass/health                │  ║
║  │                                                             │  ║
║  │ # List registered tools                                     │  ║
║  │ curl http://localhost:%d/v1/compass/tools | jq            │  ║
║  │                                                             │  ║
║  │ # Run a reasoning query                                     │  ║
║  │ curl -X POST http://localhost:%d/v1/compass/reason \      │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"query": "What is 15%% of 80000?"}'                  │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── REST: /reason, /interpret, /tools, /health                  ║
║  └── Websocket: /ws/conversation (onboarding sessions)           ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port, port)
}
