package main

import (
	"context"
	"fmt"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/auth"
	"github.com/abduss/photocat/internal/bucket"
	"github.com/abduss/photocat/internal/catalog"
	"github.com/abduss/photocat/internal/config"
	"github.com/abduss/photocat/internal/file"
	"github.com/abduss/photocat/internal/ingest"
	"github.com/abduss/photocat/internal/metrics"
	"github.com/abduss/photocat/internal/photo"
	"github.com/abduss/photocat/internal/presigned"
	"github.com/abduss/photocat/internal/server"
	"github.com/abduss/photocat/internal/storage"
)

type metadataStore interface {
	photo.Repository
	Ping(ctx context.Context) error
}

// app holds the explicitly constructed adapters shared by every subcommand.
type app struct {
	cfg         config.Config
	log         *zap.Logger
	minio       *minio.Client
	records     metadataStore
	buckets     *bucket.Service
	files       *file.Service
	pipeline    *ingest.Pipeline
	coordinator *catalog.Coordinator
	closers     []func()
}

func newApp(ctx context.Context, cfg config.Config, log *zap.Logger) (*app, error) {
	metrics.InitMetrics()

	a := &app{cfg: cfg, log: log}

	minioClient, err := storage.NewMinIOClient(cfg.MinIO)
	if err != nil {
		return nil, err
	}
	a.minio = minioClient

	records, err := a.openMetadata(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.records = records

	a.buckets = bucket.NewService(minioClient, cfg.MinIO.Region, log)
	a.files = file.NewService(file.NewMinIOStore(minioClient), log)
	a.pipeline = ingest.NewPipeline(records, log)
	a.coordinator = catalog.New(a.buckets, a.files, records, a.pipeline, cfg.Metadata.DescriptionFile, log)
	return a, nil
}

func (a *app) openMetadata(ctx context.Context) (metadataStore, error) {
	switch a.cfg.Metadata.Backend {
	case config.BackendPostgres:
		pool, err := storage.NewPostgresPool(ctx, a.cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)

		repo := photo.NewPostgresRepository(pool, a.log)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure metadata schema: %w", err)
		}
		return repo, nil
	default:
		client, err := storage.NewDynamoClient(ctx, a.cfg.Dynamo)
		if err != nil {
			return nil, err
		}

		repo := photo.NewDynamoRepository(client, a.cfg.Dynamo.Table, a.log)
		if a.cfg.Dynamo.CreateTable {
			if err := repo.EnsureTable(ctx); err != nil {
				return nil, fmt.Errorf("ensure metadata table: %w", err)
			}
		}
		return repo, nil
	}
}

func (a *app) serverDependencies() server.Dependencies {
	return server.Dependencies{
		Config: a.cfg,
		ReadyChecks: []server.ReadyCheck{
			{Component: "blob store", Check: func(ctx context.Context) error {
				_, err := a.minio.ListBuckets(ctx)
				return err
			}},
			{Component: a.cfg.Metadata.Backend, Check: a.records.Ping},
		},
		AuthService:   auth.NewService(a.cfg.Auth),
		BucketService: a.buckets,
		FileService:   a.files,
		Presigned:     presigned.NewService(a.minio, a.cfg.MinIO.PresignTTL, a.log),
		Catalog:       a.coordinator,
	}
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func descriptionPath(args []string, cfg config.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.Metadata.DescriptionFile
}
