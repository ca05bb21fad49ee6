package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pagerag/internal/config"
	dbRedis "github.com/kailas-cloud/pagerag/internal/db/redis"
	"github.com/kailas-cloud/pagerag/internal/metrics"
	"github.com/kailas-cloud/pagerag/internal/readiness"
	"github.com/kailas-cloud/pagerag/internal/repository/pageindex"
	"github.com/kailas-cloud/pagerag/internal/transport/ollama"
	openaiEmb "github.com/kailas-cloud/pagerag/internal/transport/openai"
	answeruc "github.com/kailas-cloud/pagerag/internal/usecase/answer"
	embeddinguc "github.com/kailas-cloud/pagerag/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/pagerag/internal/usecase/health"
	indexuc "github.com/kailas-cloud/pagerag/internal/usecase/index"
)

// app is the composition root shared by index, ask and serve.
type app struct {
	store      *dbRedis.Store
	embedder   *embeddinguc.Gateway
	generation *ollama.Client
	index      *indexuc.Service
	answer     *answeruc.Service
	health     *healthuc.Service
}

// newApp connects to the store and wires every service. The store must become
// ready or the process exits; the model server is only waited for when
// needGeneration is set, and a slow model server is a warning.
func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, needGeneration bool) *app {
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()
	metrics.RegisterIndexMetrics()

	logger.Info("Connecting",
		zap.Strings("store_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Index.Name),
		zap.String("embed_model", cfg.Embedding.Model),
		zap.String("generation_url", cfg.Generation.BaseURL),
		zap.String("generation_model", cfg.Generation.Model),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
		Timeout:  time.Duration(cfg.Database.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create store client", zap.Error(err))
	}

	res := readiness.Wait(ctx, "store", readiness.Policy{
		Attempts: cfg.Database.Readiness.Attempts,
		Delay:    cfg.Database.Readiness.Delay(),
	}, store.Ping, logger)
	if !res.Ready {
		store.Close()
		logger.Fatal("Store not ready",
			zap.Int("attempts", res.Attempts),
			zap.Error(res.Err),
		)
	}

	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:   cfg.Embedding.APIKey,
		BaseURL:  cfg.Embedding.BaseURL,
		Model:    cfg.Embedding.Model,
		Provider: cfg.Embedding.Provider,
		Logger:   logger,
	})
	instrumented := embeddinguc.NewInstrumentedEmbedder(base, cfg.Embedding.Provider, cfg.Embedding.Model, logger)
	gateway := embeddinguc.NewGateway(instrumented, cfg.Embedding.DocumentPrefix, cfg.Embedding.QueryPrefix)

	repo := pageindex.New(store, pageindex.Config{
		Name:       cfg.Index.Name,
		KeyPrefix:  cfg.Database.KeyPrefix,
		Dimensions: cfg.Index.Dimensions,
		HNSW: pageindex.HNSWConfig{
			M:           cfg.Index.HNSWM,
			EFConstruct: cfg.Index.HNSWEFConstruct,
		},
	})
	indexSvc := indexuc.New(repo, gateway, indexuc.Config{
		DefaultTopK:     cfg.Retrieval.TopK,
		RefreshAttempts: cfg.Index.RefreshAttempts,
		RefreshDelay:    cfg.Index.RefreshDelay(),
	}, logger)

	gen := ollama.NewClient(&ollama.Config{
		BaseURL: cfg.Generation.BaseURL,
		Model:   cfg.Generation.Model,
		Timeout: cfg.Generation.Timeout(),
		Logger:  logger,
	})
	if needGeneration {
		res := readiness.Wait(ctx, "generation", readiness.Policy{
			Attempts: cfg.Generation.Readiness.Attempts,
			Delay:    cfg.Generation.Readiness.Delay(),
		}, gen.Ping, logger)
		if !res.Ready {
			logger.Warn("Model server not ready, continuing",
				zap.Int("attempts", res.Attempts),
				zap.Error(res.Err),
			)
		}
	}

	answerSvc := answeruc.New(gen, answeruc.Config{
		Temperature: cfg.Generation.AnswerTemperature,
		MaxTokens:   cfg.Generation.AnswerMaxTokens,
	}, logger)

	return &app{
		store:      store,
		embedder:   gateway,
		generation: gen,
		index:      indexSvc,
		answer:     answerSvc,
		health:     healthuc.New(store, gateway, gen, logger),
	}
}

func (a *app) Close() {
	a.store.Close()
}

// ask runs retrieval and answering for one question.
func (a *app) ask(ctx context.Context, question string, topK int) (answerResult, error) {
	hits, err := a.index.Retrieve(ctx, question, topK)
	if err != nil {
		return answerResult{}, fmt.Errorf("retrieve: %w", err)
	}
	ans, err := a.answer.Answer(ctx, question, hits)
	if err != nil {
		return answerResult{}, err
	}
	return answerResult{hits: hits, answer: ans}, nil
}
