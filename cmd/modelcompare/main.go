// Command modelcompare runs one multi-model comparison from the command line.
// It loads the engine configuration, reads an inference context from a JSON
// file, fans the request out to every configured backend, and prints the
// ranked ComparisonResult as JSON.
//
// Provider API keys are read from environment variables (OPENAI_API_KEY,
// ANTHROPIC_API_KEY, GOOGLE_API_KEY).
//
// Usage:
//
//	modelcompare -config compare.yaml -context context.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/finadvisor/modelcompare/infrastructure/metrics"
	"github.com/finadvisor/modelcompare/internal/domain"
	"github.com/finadvisor/modelcompare/internal/engine"
)

func main() {
	var (
		configPath  = flag.String("config", "compare.yaml", "Path to the engine configuration file")
		contextPath = flag.String("context", "", "Path to the inference context JSON file")
		timeout     = flag.Duration("timeout", 2*time.Minute, "Overall run timeout")
	)
	flag.Parse()

	if *contextPath == "" {
		log.Fatal("missing required -context flag")
	}

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading configuration: %v", err)
	}

	infCtx, err := readInferenceContext(*contextPath)
	if err != nil {
		log.Fatalf("loading inference context: %v", err)
	}

	collector := metrics.NewPrometheusMetrics(nil)
	eng, err := cfg.BuildEngine(collector)
	if err != nil {
		log.Fatalf("building engine: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	result, err := eng.Compare(ctx, infCtx)
	if err != nil {
		log.Fatalf("comparison failed: %v", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encoding result: %v", err)
	}
	fmt.Println(string(out))

	if result.AllFailed() {
		// A winnerless run is a degraded outcome; signal it to callers.
		os.Exit(2)
	}
}

func readInferenceContext(path string) (*domain.InferenceContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var infCtx domain.InferenceContext
	if err := json.Unmarshal(data, &infCtx); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &infCtx, nil
}
