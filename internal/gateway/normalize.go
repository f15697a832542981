package gateway

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"
)

// Normalizer converts one wire-level request shape into canonical
// instances. Implementations must emit instances in input order and
// materialize any backing bytes through the supplied scope, never outside
// it.
type Normalizer interface {
	Normalize(scope *Scope) ([]Instance, error)
}

// instance record keys consumed by the adapters; everything else on a
// record is an opaque extra field.
var coreRecordFields = map[string]struct{}{
	"filepath":      {},
	"image_data":    {},
	"country":       {},
	"admin1_region": {},
	"latitude":      {},
	"longitude":     {},
}

func metadataFromRecord(rec map[string]any) (inst Instance) {
	if v, ok := rec["country"].(string); ok {
		inst.Country = v
	}
	if v, ok := rec["admin1_region"].(string); ok {
		inst.Admin1Region = v
	}
	if v, ok := rec["latitude"].(float64); ok {
		lat := v
		inst.Latitude = &lat
	}
	if v, ok := rec["longitude"].(float64); ok {
		lon := v
		inst.Longitude = &lon
	}
	for k, v := range rec {
		if _, core := coreRecordFields[k]; core {
			continue
		}
		if inst.Extra == nil {
			inst.Extra = make(map[string]any)
		}
		inst.Extra[k] = v
	}
	return inst
}

// PathBatch normalizes filepath-based records. Paths are passed through
// verbatim for the engine to resolve; no temporary resources are created.
// A batch carrying duplicate paths is rejected because the response merge
// is keyed by path.
type PathBatch struct {
	Request *PredictRequest
}

func (b PathBatch) Normalize(_ *Scope) ([]Instance, error) {
	if b.Request == nil || b.Request.Instances == nil {
		return nil, validationErr("missing 'instances' field in request")
	}
	instances := make([]Instance, 0, len(b.Request.Instances))
	seen := make(map[string]struct{}, len(b.Request.Instances))
	for i, rec := range b.Request.Instances {
		path, ok := rec["filepath"].(string)
		if !ok || path == "" {
			return nil, validationErr("missing 'filepath' field in instance %d", i)
		}
		if _, dup := seen[path]; dup {
			return nil, validationErr("duplicate filepath %q in batch", path)
		}
		seen[path] = struct{}{}
		inst := metadataFromRecord(rec)
		inst.FilePath = path
		instances = append(instances, inst)
	}
	return instances, nil
}

// UploadBatch normalizes multipart file parts. The location metadata is
// batch-wide: every file in the batch gets the same country, region and
// coordinates. Raw bytes are written verbatim to a temporary resource.
type UploadBatch struct {
	Files []*multipart.FileHeader
	Meta  UploadMeta
}

func (b UploadBatch) Normalize(scope *Scope) ([]Instance, error) {
	instances := make([]Instance, 0, len(b.Files))
	for i, fh := range b.Files {
		contentType := fh.Header.Get("Content-Type")
		if !strings.HasPrefix(contentType, "image/") {
			return nil, unsupportedMediaErr("file %s is not an image", fh.Filename)
		}
		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded file %s: %w", fh.Filename, err)
		}
		tmp, err := scope.Acquire(fmt.Sprintf("_%d.jpg", i))
		if err != nil {
			src.Close()
			return nil, err
		}
		_, copyErr := io.Copy(tmp, src)
		src.Close()
		if closeErr := tmp.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			return nil, fmt.Errorf("failed to materialize uploaded file %s: %w", fh.Filename, copyErr)
		}
		instances = append(instances, Instance{
			FilePath:     tmp.Name(),
			Country:      b.Meta.Country,
			Admin1Region: b.Meta.Admin1Region,
			Latitude:     b.Meta.Latitude,
			Longitude:    b.Meta.Longitude,
		})
	}
	return instances, nil
}

// Base64Batch normalizes records carrying base64 image payloads with
// per-record metadata. Decoded images are re-encoded as single-frame JPEG
// before being written to a temporary resource.
type Base64Batch struct {
	Request     *PredictRequest
	MaxImageDim int
}

func (b Base64Batch) Normalize(scope *Scope) ([]Instance, error) {
	if b.Request == nil || b.Request.Instances == nil {
		return nil, validationErr("missing 'instances' field in request")
	}
	instances := make([]Instance, 0, len(b.Request.Instances))
	for i, rec := range b.Request.Instances {
		payload, ok := rec["image_data"].(string)
		if !ok || payload == "" {
			return nil, validationErr("missing 'image_data' field in instance %d", i)
		}
		img, err := decodeBase64Image(payload, b.MaxImageDim)
		if err != nil {
			return nil, decodeErr(fmt.Sprintf("invalid image data in instance %d", i), err)
		}
		tmp, err := scope.Acquire(fmt.Sprintf("_%d.jpg", i))
		if err != nil {
			return nil, err
		}
		encErr := encodeJPEG(tmp, img)
		if closeErr := tmp.Close(); encErr == nil {
			encErr = closeErr
		}
		if encErr != nil {
			return nil, fmt.Errorf("failed to materialize instance %d: %w", i, encErr)
		}
		inst := metadataFromRecord(rec)
		inst.FilePath = tmp.Name()
		instances = append(instances, inst)
	}
	return instances, nil
}
