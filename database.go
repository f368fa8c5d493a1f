// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package callsight

import (
	"io"
	"log/slog"

	"github.com/callvista/callsight/ai"
	"github.com/callvista/callsight/ai/openai"
	"github.com/callvista/callsight/chat"
	"github.com/callvista/callsight/ingestion"
	"github.com/callvista/callsight/reembed"
	"github.com/callvista/callsight/report"
	"github.com/callvista/callsight/search"
	"github.com/callvista/callsight/storage"
	"github.com/callvista/callsight/storage/badger"
)

// Database bundles the storage backend, the three corpus repositories, and
// the AI provider behind one handle.
type Database struct {
	backend     *badger.Backend
	callRepo    storage.CallRepository
	segmentRepo storage.SegmentRepository
	featureRepo storage.FeatureRepository
	provider    ai.AIProvider
	logger      *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithAIProvider injects a pre-built AI provider, bypassing config-based
// construction. Used by tests with the mock provider.
func WithAIProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// NewDatabase opens the storage backend at filePath and wires up the corpus
// repositories and AI provider.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	callRepo, err := badger.NewCallRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	segmentRepo, err := badger.NewSegmentRepository(backend)
	if err != nil {
		callRepo.Close()
		backend.Close()
		return nil, err
	}

	featureRepo, err := badger.NewFeatureRepository(backend)
	if err != nil {
		segmentRepo.Close()
		callRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			featureRepo.Close()
			segmentRepo.Close()
			callRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:     backend,
		callRepo:    callRepo,
		segmentRepo: segmentRepo,
		featureRepo: featureRepo,
		provider:    provider,
		logger:      slog.Default(),
	}, nil
}

// Close releases the AI provider, the repositories, and the backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.featureRepo.Close(); err != nil {
		db.logger.Error("error closing feature repository", "err", err)
		return err
	}
	if err := db.segmentRepo.Close(); err != nil {
		db.logger.Error("error closing segment repository", "err", err)
		return err
	}
	if err := db.callRepo.Close(); err != nil {
		db.logger.Error("error closing call repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (db *Database) CallRepository() storage.CallRepository {
	return db.callRepo
}

func (db *Database) SegmentRepository() storage.SegmentRepository {
	return db.segmentRepo
}

func (db *Database) FeatureRepository() storage.FeatureRepository {
	return db.featureRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// NewIngestionPipeline builds an ingestion pipeline over this database.
func (db *Database) NewIngestionPipeline(source ingestion.CallSource, opts ...ingestion.PipelineOption) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(source, db.callRepo, db.segmentRepo, db.featureRepo, db.provider, opts...)
}

// NewSearcher builds a searcher over this database.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.callRepo, db.segmentRepo, db.featureRepo, db.provider, opts...)
}

// NewChatSession builds a conversation session over this database.
func (db *Database) NewChatSession(opts ...chat.SessionOption) (*chat.Session, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return chat.NewSession(searcher, db.provider.Chat(), opts...), nil
}

// NewReembedder builds a reembedder over this database.
// progress: where to write progress output (typically os.Stderr)
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.callRepo, db.segmentRepo, db.featureRepo, db.provider.Embedder(), config, progress)
}

// NewExcelExporter builds a spreadsheet exporter over this database.
func (db *Database) NewExcelExporter() *report.ExcelExporter {
	return report.NewExcelExporter(db.callRepo, db.featureRepo)
}
