package gateway

import (
	"context"
	"log"
	"mime/multipart"

	"github.com/google/uuid"
)

// Engine is the opaque prediction boundary. One call per batch: it either
// returns a complete result set, one record per submitted instance, or an
// error that fails the whole batch. Per-image faults come back inline as
// records carrying failures, not as a call error.
type Engine interface {
	Predict(ctx context.Context, instances []Instance) ([]Result, error)
}

// Pipeline runs one request through normalize → predict → assemble with a
// deferred resource release on every exit path. It holds no per-request
// state; concurrent requests share only the engine and the store.
type Pipeline struct {
	engine      Engine
	store       *TempStore
	extraFields []string
	maxImageDim int
}

type PipelineConfig struct {
	ExtraFields []string
	MaxImageDim int
}

func NewPipeline(engine Engine, store *TempStore, cfg PipelineConfig) *Pipeline {
	return &Pipeline{
		engine:      engine,
		store:       store,
		extraFields: cfg.ExtraFields,
		maxImageDim: cfg.MaxImageDim,
	}
}

// PredictPaths serves filepath-based batches.
func (p *Pipeline) PredictPaths(ctx context.Context, req *PredictRequest) ([]Result, error) {
	return p.run(ctx, PathBatch{Request: req})
}

// PredictUploads serves multipart upload batches with batch-wide metadata.
func (p *Pipeline) PredictUploads(ctx context.Context, files []*multipart.FileHeader, meta UploadMeta) ([]Result, error) {
	return p.run(ctx, UploadBatch{Files: files, Meta: meta})
}

// PredictBase64 serves base64 batches with per-record metadata.
func (p *Pipeline) PredictBase64(ctx context.Context, req *PredictRequest) ([]Result, error) {
	return p.run(ctx, Base64Batch{Request: req, MaxImageDim: p.maxImageDim})
}

func (p *Pipeline) run(ctx context.Context, normalizer Normalizer) ([]Result, error) {
	requestID := uuid.NewString()
	scope := p.store.NewScope()
	defer scope.ReleaseAll()

	instances, err := normalizer.Normalize(scope)
	if err != nil {
		return nil, err
	}
	log.Printf("Request %s: normalized %d instances", requestID, len(instances))

	results, err := p.engine.Predict(ctx, instances)
	if err != nil {
		log.Printf("Request %s: engine call failed: %v", requestID, err)
		return nil, engineErr(err)
	}

	merged := assembleResponse(instances, results, p.extraFields)
	log.Printf("Request %s: assembled %d results", requestID, len(merged))
	return merged, nil
}
