package main

// @title           NET-EST Core API
// @version         1.0
// @description     Analyzes Portuguese intralingual translation pairs and classifies the 14 canonical simplification strategies found between source and target.

// @contact.name   NET-EST
// @contact.url    https://github.com/netest/netest-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/netest/netest-core/internal/adapters/driven/embedding"
	"github.com/netest/netest-core/internal/adapters/driven/export"
	redisadapter "github.com/netest/netest-core/internal/adapters/driven/redis"
	"github.com/netest/netest-core/internal/adapters/driven/storage/filesystem"
	postgresstorage "github.com/netest/netest-core/internal/adapters/driven/storage/postgres"
	"github.com/netest/netest-core/internal/adapters/driven/storage/sqlite"
	postgresqueue "github.com/netest/netest-core/internal/adapters/driven/queue/postgres"
	redisqueue "github.com/netest/netest-core/internal/adapters/driven/queue/redis"
	nethttp "github.com/netest/netest-core/internal/adapters/driving/http"
	"github.com/netest/netest-core/internal/config"
	"github.com/netest/netest-core/internal/core/domain"
	"github.com/netest/netest-core/internal/core/ports/driven"
	"github.com/netest/netest-core/internal/core/services"
	"github.com/netest/netest-core/internal/runtime"
	"github.com/netest/netest-core/internal/segmenters"
	"github.com/netest/netest-core/internal/worker"
)

var version = "dev"

func main() {
	mode := "all"
	if len(os.Args) > 1 {
		mode = os.Args[1]
	}
	if envMode := os.Getenv("RUN_MODE"); envMode != "" {
		mode = envMode
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	logger.Info("netestcore starting", "version", version, "mode", mode)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	store, storePinger, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize annotation store: %v", err)
	}
	defer store.Close()

	runtimeConfig := domain.NewRuntimeConfig(cfg.Persistence.Backend)
	runtimeServices := runtime.NewServices(runtimeConfig)
	defer runtimeServices.Close()

	factory := &embedding.Factory{}
	embedder, err := factory.CreateEmbedder(&driven.EmbedderSettings{
		Provider:          cfg.Embedder.Provider,
		ModelPath:         cfg.Embedder.ModelPath,
		TokenizerPath:     cfg.Embedder.TokenizerPath,
		MaxSequenceLength: cfg.Embedder.MaxSeqLength,
		CacheSize:         cfg.Embedder.CacheCapacity,
	})
	if err != nil {
		logger.Warn("embedder unavailable, entering degraded lexical-alignment mode", "error", err)
	}
	runtimeServices.SetEmbedder(embedder)

	linguisticPipeline, err := factory.CreateLinguisticPipeline(&driven.LinguisticSettings{
		Provider:       cfg.Linguistic.Provider,
		Endpoint:       cfg.Linguistic.Endpoint,
		Annotators:     cfg.Linguistic.Annotators,
		TimeoutSeconds: cfg.Linguistic.TimeoutSeconds,
	})
	if err != nil {
		logger.Warn("linguistic pipeline unavailable, skipping linguistic features", "error", err)
	}
	runtimeServices.SetLinguisticPipeline(linguisticPipeline)

	segRegistry := segmenters.NewRegistry()
	segRegistry.Register(&segmenters.PortugueseSegmenter{})
	segRegistry.Register(&segmenters.PunctuationSegmenter{})

	preprocessor := services.NewPreprocessor(segRegistry, cfg.MaxWords)
	aligner := services.NewAligner(runtimeServices.Embedder(), runtimeConfig, services.AlignerConfig{
		Threshold: cfg.Aligner.Threshold,
		TopK:      cfg.Aligner.TopK,
	})
	spanPipeline := services.DefaultSpanPipeline()
	extractor := services.NewExtractor(runtimeServices.LinguisticPipeline(), runtimeConfig, spanPipeline)
	classifier := services.NewClassifier(services.ClassifierConfig{
		MinConfidence: cfg.Classifier.MinConfidence,
		EnableOM:      cfg.Classifier.EnableOM,
		Weights:       cfg.RuleWeights(),
		CustomRuleLua: cfg.Classifier.CustomRuleLua,
	})

	var lock driven.DistributedLock
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to parse redis url: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		lock = redisadapter.NewLock(redisClient)
	}

	annotationService := services.NewAnnotationService(store, services.AnnotationServiceConfig{
		Lock:    lock,
		LockTTL: 0,
	}, logger)

	pipeline := services.NewPipeline(preprocessor, aligner, extractor, classifier, store, services.PipelineConfig{
		StageTimeout: cfg.StageTimeout(),
	}, logger)

	taskQueue, err := buildQueue(ctx, cfg, redisClient)
	if err != nil {
		logger.Warn("task queue unavailable, background processing disabled", "error", err)
	}

	exportSigner := export.NewSigner(cfg.ExportSecret)

	runServer := mode == "server" || mode == "all"
	runWorker := mode == "worker" || mode == "all"

	var w *worker.Worker
	if runWorker && taskQueue != nil {
		w = worker.NewWorker(worker.WorkerConfig{
			TaskQueue:   taskQueue,
			Pipeline:    pipeline,
			Logger:      logger,
			Concurrency: cfg.WorkerPoolSize,
		})
		go func() {
			if err := w.Start(ctx); err != nil {
				logger.Error("worker stopped", "error", err)
			}
		}()
	}

	var httpServer *nethttp.Server
	if runServer {
		httpServer = nethttp.NewServer(nethttp.Config{
			Host:    "0.0.0.0",
			Port:    cfg.Port,
			Version: version,
		}, pipeline, annotationService, exportSigner, taskQueue, storePinger)

		go func() {
			logger.Info("http server listening", "port", cfg.Port)
			if err := httpServer.Start(); err != nil {
				logger.Error("http server stopped", "error", err)
			}
		}()
	}

	<-ctx.Done()

	if w != nil {
		w.Stop()
	}
	if httpServer != nil {
		_ = httpServer.Shutdown(context.Background())
	}
	logger.Info("netestcore stopped")
}

func buildStore(ctx context.Context, cfg *config.Config) (driven.AnnotationStore, nethttp.Pinger, error) {
	switch cfg.Persistence.Backend {
	case "sqlite":
		db, err := sqlite.Connect(ctx, cfg.Persistence.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("connect sqlite: %w", err)
		}
		st := sqlite.NewStore(db)
		return st, st, nil
	case "postgres":
		db, err := postgresstorage.Connect(ctx, postgresstorage.DefaultConfig(cfg.Persistence.Path))
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		st := postgresstorage.NewStore(db)
		return st, st, nil
	default:
		st, err := filesystem.NewStore(cfg.Persistence.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open filesystem store: %w", err)
		}
		return st, st, nil
	}
}

func buildQueue(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (driven.TaskQueue, error) {
	switch cfg.QueueKind {
	case "redis":
		if redisClient == nil {
			return nil, fmt.Errorf("queue_kind=redis requires redis_url")
		}
		return redisqueue.NewQueue(redisClient, "netestcore")
	case "postgres":
		db, err := postgresstorage.Connect(ctx, postgresstorage.DefaultConfig(cfg.Persistence.Path))
		if err != nil {
			return nil, fmt.Errorf("connect postgres for queue: %w", err)
		}
		if _, err := db.ExecContext(ctx, postgresqueue.CreateTasksTableSQL); err != nil {
			return nil, fmt.Errorf("create postgres tasks table: %w", err)
		}
		return postgresqueue.NewQueue(db.DB), nil
	default:
		return nil, nil
	}
}
