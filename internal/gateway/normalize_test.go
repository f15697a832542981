package gateway

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(96 + x*4), G: uint8(96 + y*4), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type filePart struct {
	name        string
	contentType string
	data        []byte
}

func uploadHeaders(t *testing.T, parts []filePart) []*multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, p.name))
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files"]
}

func TestPathBatch_Normalize(t *testing.T) {
	req := &PredictRequest{Instances: []map[string]any{
		{"filepath": "a.jpg", "country": "USA", "latitude": 37.7749, "longitude": -122.4194, "camera_id": "cam-1"},
		{"filepath": "b.jpg", "admin1_region": "CA"},
	}}

	instances, err := PathBatch{Request: req}.Normalize(nil)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	assert.Equal(t, "a.jpg", instances[0].FilePath)
	assert.Equal(t, "USA", instances[0].Country)
	require.NotNil(t, instances[0].Latitude)
	assert.Equal(t, 37.7749, *instances[0].Latitude)
	require.NotNil(t, instances[0].Longitude)
	assert.Equal(t, -122.4194, *instances[0].Longitude)
	assert.Equal(t, "cam-1", instances[0].Extra["camera_id"])

	assert.Equal(t, "b.jpg", instances[1].FilePath)
	assert.Equal(t, "CA", instances[1].Admin1Region)
	assert.Nil(t, instances[1].Latitude)
}

func TestPathBatch_MissingFilepath(t *testing.T) {
	req := &PredictRequest{Instances: []map[string]any{
		{"filepath": "a.jpg"},
		{"country": "USA"},
	}}

	_, err := PathBatch{Request: req}.Normalize(nil)
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, CategoryOf(err))
	assert.Contains(t, err.Error(), "filepath")
}

func TestPathBatch_MissingInstances(t *testing.T) {
	_, err := PathBatch{Request: &PredictRequest{}}.Normalize(nil)
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, CategoryOf(err))
}

func TestPathBatch_RejectsDuplicatePaths(t *testing.T) {
	req := &PredictRequest{Instances: []map[string]any{
		{"filepath": "dup.jpg"},
		{"filepath": "dup.jpg"},
	}}

	_, err := PathBatch{Request: req}.Normalize(nil)
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, CategoryOf(err))
	assert.Contains(t, err.Error(), "dup.jpg")
}

func TestUploadBatch_Normalize(t *testing.T) {
	store := NewTempStore(t.TempDir())
	scope := store.NewScope()
	defer scope.ReleaseAll()

	raw := pngBytes(t, 3, 3)
	lat, lon := 37.7749, -122.4194
	files := uploadHeaders(t, []filePart{
		{name: "one.png", contentType: "image/png", data: raw},
		{name: "two.png", contentType: "image/png", data: raw},
	})

	instances, err := UploadBatch{
		Files: files,
		Meta:  UploadMeta{Country: "USA", Latitude: &lat, Longitude: &lon},
	}.Normalize(scope)
	require.NoError(t, err)
	require.Len(t, instances, 2)

	assert.NotEqual(t, instances[0].FilePath, instances[1].FilePath)
	for _, inst := range instances {
		assert.Equal(t, "USA", inst.Country)
		require.NotNil(t, inst.Latitude)
		assert.Equal(t, lat, *inst.Latitude)
		require.NotNil(t, inst.Longitude)
		assert.Equal(t, lon, *inst.Longitude)

		// Upload bytes are written verbatim, no re-encoding.
		got, err := os.ReadFile(inst.FilePath)
		require.NoError(t, err)
		assert.Equal(t, raw, got)
	}
}

func TestUploadBatch_RejectsNonImage(t *testing.T) {
	store := NewTempStore(t.TempDir())
	scope := store.NewScope()
	defer scope.ReleaseAll()

	files := uploadHeaders(t, []filePart{
		{name: "notes.txt", contentType: "text/plain", data: []byte("not an image")},
	})

	_, err := UploadBatch{Files: files}.Normalize(scope)
	require.Error(t, err)
	assert.Equal(t, CategoryUnsupportedMedia, CategoryOf(err))
	assert.Contains(t, err.Error(), "notes.txt")
}

func TestBase64Batch_Normalize(t *testing.T) {
	store := NewTempStore(t.TempDir())
	scope := store.NewScope()
	defer scope.ReleaseAll()

	raw := pngBytes(t, 4, 4)
	req := &PredictRequest{Instances: []map[string]any{
		{"image_data": base64.StdEncoding.EncodeToString(raw), "country": "KEN", "sequence_id": "seq-9"},
	}}

	instances, err := Base64Batch{Request: req}.Normalize(scope)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "KEN", instances[0].Country)
	assert.Equal(t, "seq-9", instances[0].Extra["sequence_id"])

	// Materialized file is a decodable JPEG with the original dimensions.
	f, err := os.Open(instances[0].FilePath)
	require.NoError(t, err)
	defer f.Close()
	img, format, err := image.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 4, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
}

func TestBase64Batch_MissingPayload(t *testing.T) {
	store := NewTempStore(t.TempDir())
	scope := store.NewScope()
	defer scope.ReleaseAll()

	req := &PredictRequest{Instances: []map[string]any{{"country": "USA"}}}

	_, err := Base64Batch{Request: req}.Normalize(scope)
	require.Error(t, err)
	assert.Equal(t, CategoryValidation, CategoryOf(err))
}

func TestBase64Batch_InvalidPayload(t *testing.T) {
	store := NewTempStore(t.TempDir())
	scope := store.NewScope()
	defer scope.ReleaseAll()

	cases := map[string]string{
		"not base64":   "!!!not-base64!!!",
		"not an image": base64.StdEncoding.EncodeToString([]byte("plain text")),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			req := &PredictRequest{Instances: []map[string]any{{"image_data": payload}}}
			_, err := Base64Batch{Request: req}.Normalize(scope)
			require.Error(t, err)
			assert.Equal(t, CategoryDecode, CategoryOf(err))
		})
	}
}

func TestBase64Batch_PreservesOrder(t *testing.T) {
	store := NewTempStore(t.TempDir())
	scope := store.NewScope()
	defer scope.ReleaseAll()

	payload := base64.StdEncoding.EncodeToString(pngBytes(t, 2, 2))
	req := &PredictRequest{Instances: []map[string]any{
		{"image_data": payload, "country": "USA"},
		{"image_data": payload, "country": "KEN"},
		{"image_data": payload, "country": "BRA"},
	}}

	instances, err := Base64Batch{Request: req}.Normalize(scope)
	require.NoError(t, err)
	require.Len(t, instances, 3)
	assert.Equal(t, "USA", instances[0].Country)
	assert.Equal(t, "KEN", instances[1].Country)
	assert.Equal(t, "BRA", instances[2].Country)
}
