package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caselex/internal/adapters/driven/ai"
	"github.com/custodia-labs/caselex/internal/adapters/driven/config/file"
	indexmem "github.com/custodia-labs/caselex/internal/adapters/driven/index/memory"
	"github.com/custodia-labs/caselex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/caselex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/caselex/internal/core/domain"
	"github.com/custodia-labs/caselex/internal/core/ports/driven"
	"github.com/custodia-labs/caselex/internal/core/ports/driving"
	"github.com/custodia-labs/caselex/internal/core/services"
	"github.com/custodia-labs/caselex/internal/normalisers/legal"
	"github.com/custodia-labs/caselex/internal/postprocessors/chunker"
)

// App holds the services wired for one command run.
type App struct {
	Settings  domain.Settings
	Ingest    driving.IngestService
	Retrieval driving.RetrievalService
	Reindex   driving.ReindexService
	Verify    driving.VerifyService
	Catalog   driving.CatalogService

	closers []func() error
}

// Close releases the embedder, the index and the database, in that order.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Build wires the pipeline described by settings.
func Build(ctx context.Context, settings domain.Settings) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	app := &App{Settings: settings}

	embedder, err := ai.CreateEmbedder(&settings.Embedding)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, embedder.Close)

	docs, index, err := app.openStorage(ctx, settings.Index, embedder.ModelVersion())
	if err != nil {
		app.Close()
		return nil, err
	}

	ch, err := chunker.New(
		chunker.WithChunkSize(settings.Chunking.MaxSize),
		chunker.WithOverlap(settings.Chunking.Overlap),
	)
	if err != nil {
		app.Close()
		return nil, err
	}

	batch := settings.Embedding.BatchSize
	ingester, err := services.NewIngester(legal.New(), ch, embedder, index, docs, settings.Ingest, batch)
	if err != nil {
		app.Close()
		return nil, err
	}
	retriever, err := services.NewRetriever(embedder, index, docs, settings.Retrieval)
	if err != nil {
		app.Close()
		return nil, err
	}
	reindexer, err := services.NewReindexer(embedder, index, docs, batch)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Ingest = ingester
	app.Retrieval = retriever
	app.Reindex = reindexer
	app.Verify = services.NewVerifier(docs, index, legal.ExtractCaseNumber)
	app.Catalog = services.NewCatalog(docs, index)
	return app, nil
}

// openStorage returns the document store and index. The index is hydrated
// from SQLite unless the path is domain.IndexInMemory.
func (a *App) openStorage(
	ctx context.Context, settings domain.IndexSettings, modelVersion string,
) (driven.DocumentStore, driven.VectorIndex, error) {
	if settings.Path == domain.IndexInMemory {
		index := indexmem.New(modelVersion)
		a.closers = append(a.closers, index.Close)
		return memory.NewDocumentStore(), index, nil
	}

	store, err := sqlite.NewStore(settings.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	index, err := indexmem.Open(ctx, store.IndexStore(), modelVersion)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	a.closers = append(a.closers, index.Close, store.Close)
	return store.DocumentStore(), index, nil
}

// openApp loads the configuration named by --config, lets adjust override
// it and wires the services.
func openApp(cmd *cobra.Command, adjust func(*domain.Settings)) (*App, error) {
	path := configPath
	if path == "" {
		var err error
		if path, err = file.DefaultPath(); err != nil {
			return nil, err
		}
	}
	settings, err := file.Load(path)
	if err != nil {
		return nil, err
	}
	if adjust != nil {
		adjust(settings)
	}
	return Build(cmd.Context(), *settings)
}
