// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/AleutianReview/pkg/logging"
	"github.com/AleutianAI/AleutianReview/services/github"
	"github.com/AleutianAI/AleutianReview/services/llm"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/analysis"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/chat"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/middleware"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/observability"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/routes"
	"github.com/AleutianAI/AleutianReview/services/reviewagent/store"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
)

const serviceName = "review-agent"

// initTracer wires the OTLP trace exporter. When
// OTEL_EXPORTER_OTLP_ENDPOINT is unset tracing stays on the otel no-op
// provider and the returned cleanup is a no-op.
func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		slog.Info("OTEL_EXPORTER_OTLP_ENDPOINT not set, tracing disabled")
		return func(context.Context) {}, nil
	}

	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String(serviceName)))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// analysisDelayFromEnv reads ANALYSIS_DELAY as seconds (fractions
// allowed). Unset or invalid values fall back to the default.
func analysisDelayFromEnv() time.Duration {
	raw := os.Getenv("ANALYSIS_DELAY")
	if raw == "" {
		return analysis.DefaultProcessingDelay
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		slog.Warn("invalid ANALYSIS_DELAY, using default", "value", raw)
		return analysis.DefaultProcessingDelay
	}
	return time.Duration(seconds * float64(time.Second))
}

// storeOptionsFromEnv reads ANALYSIS_TTL as a Go duration string.
// Unset means analyses are kept for the life of the process.
func storeOptionsFromEnv() []store.Option {
	raw := os.Getenv("ANALYSIS_TTL")
	if raw == "" {
		return nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil || ttl <= 0 {
		slog.Warn("invalid ANALYSIS_TTL, retention disabled", "value", raw)
		return nil
	}
	return []store.Option{store.WithTTL(ttl)}
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	logging.Init(logging.FromEnv(serviceName))

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	observability.InitMetrics()

	analysisStore := store.New(storeOptionsFromEnv()...)
	defer analysisStore.Close()
	analyzer := analysis.NewAnalyzer(analysisDelayFromEnv())
	githubClient := github.NewClient()

	log.Println("Configuring the LLM Client")
	var llmClient llm.LLMClient
	switch backend := os.Getenv("LLM_BACKEND_TYPE"); backend {
	case "openai":
		if llmClient, err = llm.NewOpenAIClient(); err == nil {
			slog.Info("Using OpenAI LLM backend")
		}
	case "groq", "":
		if llmClient, err = llm.NewGroqClient(); err == nil {
			slog.Info("Using Groq LLM backend")
		}
	case "none":
		slog.Info("LLM backend disabled, chat uses canned responses")
	default:
		slog.Warn("LLM_BACKEND_TYPE not recognized, defaulting to groq", "value", backend)
		llmClient, err = llm.NewGroqClient()
	}
	if err != nil {
		// Chat degrades to canned responses rather than killing the service.
		slog.Warn("LLM client unavailable, chat uses canned responses", "error", err)
		llmClient = nil
	}

	chatService := chat.NewService(llmClient)
	chatService.OnFallback = observability.DefaultMetrics.ChatFallbacksTotal.Inc

	router := gin.Default()
	router.Use(otelgin.Middleware(serviceName))
	router.Use(middleware.CORS(middleware.AllowedOriginsFromEnv()))

	routes.SetupRoutes(router, routes.Dependencies{
		Analyzer: analyzer,
		Store:    analysisStore,
		GitHub:   githubClient,
		Chat:     chatService,
		Metrics:  observability.DefaultMetrics,
	})

	log.Println("Starting the review agent server on port ", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
