package app

import (
	"context"
	"log"
	"time"

	"resume-pathways/internal/config"
	"resume-pathways/internal/database"
	"resume-pathways/internal/database/migration"
	dbpostgres "resume-pathways/internal/database/postgres"
	"resume-pathways/internal/embedding"
	"resume-pathways/internal/infrastructure/cache"
	"resume-pathways/internal/infrastructure/gemini"
	"resume-pathways/internal/infrastructure/hackernews"
	"resume-pathways/internal/infrastructure/pagefetch"
	"resume-pathways/internal/pipeline"
	"resume-pathways/internal/repository"
	"resume-pathways/internal/usecase"
	"resume-pathways/internal/ws"
)

// Container wires infrastructure, repositories and usecases. Construction
// is tolerant of missing optional dependencies: no Gemini key degrades the
// AI-backed endpoints, no Redis bypasses caching.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB     database.DB
	Cache  *cache.Redis
	Gemini *gemini.Client
	HN     *hackernews.Client
	Hub    *ws.Hub

	Postings  repository.JobPostingRepository
	Resumes   repository.ResumeRepository
	Decisions repository.JobDecisionRepository

	Embedder *embedding.Generator

	Jobs       usecase.JobUsecase
	Pathways   usecase.PathwaysUsecase
	Similarity usecase.SimilarityUsecase
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	runner := migration.Runner{Dir: "migrations"}
	if err := runner.Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger),
		HN:     hackernews.NewClient(cfg.HackerNews.BaseURL),
		Hub:    ws.NewHub(logger),
	}

	if gem, err := gemini.New(ctx, cfg.Gemini); err == nil {
		c.Gemini = gem
		c.Embedder = embedding.NewGenerator(gem)
	} else {
		logger.Printf("app=container gemini=disabled reason=%v", err)
	}

	c.Postings = repository.NewPostgresJobPostingRepository(db)
	c.Resumes = repository.NewPostgresResumeRepository(db)
	c.Decisions = repository.NewPostgresJobDecisionRepository(db)

	c.Jobs = usecase.NewJobUsecase(c.Postings, c.Decisions, usecaseCache(c.Cache), logger)
	c.Pathways = usecase.NewPathwaysUsecase(c.Resumes, c.Postings, contentGenerator(c.Gemini), c.Embedder, logger)
	c.Similarity = usecase.NewSimilarityUsecase(c.Resumes, c.Postings, usecaseCache(c.Cache), logger)

	return c, nil
}

// Pipeline stage constructors. The CLI and the scheduled runner share
// these so both paths run the identical stages.

func (c *Container) Ingestion(progress pipeline.ProgressNotifier) *pipeline.Ingestion {
	return pipeline.NewIngestion(c.HN, c.Postings, c.Logger, c.Config.Pipeline.IngestWorkers, progress)
}

func (c *Container) Enrichment(progress pipeline.ProgressNotifier) *pipeline.Enrichment {
	return pipeline.NewEnrichment(
		contentGenerator(c.Gemini),
		pagefetch.NewFetcher(c.Logger),
		c.Postings,
		c.Logger,
		c.Config.Pipeline.EnrichWorkers,
		c.Config.Pipeline.EnrichMaxRetries,
		progress,
	)
}

func (c *Container) EmbeddingBackfill(progress pipeline.ProgressNotifier) *pipeline.EmbeddingBackfill {
	return pipeline.NewEmbeddingBackfill(c.Embedder, c.Postings, c.Resumes, c.Logger, c.Config.Pipeline.EmbedWorkers, progress)
}

// PipelineRunner assembles the full batch pipeline. Progress flows through
// the websocket hub.
func (c *Container) PipelineRunner() *pipeline.Runner {
	progress := ws.NewProgressBroadcaster(c.Hub)
	return pipeline.NewRunner(
		c.Ingestion(progress),
		c.Enrichment(progress),
		c.EmbeddingBackfill(progress),
		c.Cache,
		c.Logger,
	)
}

func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

// usecaseCache converts a possibly-nil concrete cache into the usecase
// interface without wrapping nil in a non-nil interface value.
func usecaseCache(r *cache.Redis) usecase.Cache {
	if r == nil {
		return nil
	}
	return r
}

func contentGenerator(g *gemini.Client) usecase.ContentGenerator {
	if g == nil {
		return nil
	}
	return g
}
