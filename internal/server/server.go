package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wildlens/gateway/internal/config"
	"github.com/wildlens/gateway/internal/gateway"
)

type Server struct {
	Pipeline *gateway.Pipeline

	cfg *config.Config
}

// NewServer wires the request pipeline against the supplied engine. The
// config is read once here; handlers only see their injected references.
func NewServer(cfg *config.Config, eng gateway.Engine) *Server {
	store := gateway.NewTempStore(cfg.Pipeline.TempDir)
	pipeline := gateway.NewPipeline(eng, store, gateway.PipelineConfig{
		ExtraFields: cfg.Pipeline.ExtraFields,
		MaxImageDim: cfg.Pipeline.MaxImageDim,
	})

	return &Server{
		Pipeline: pipeline,
		cfg:      cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = s.cfg.Pipeline.MaxUploadBytes

	r.POST("/predict", s.Predict)
	r.POST("/predict_upload", s.PredictUpload)
	r.POST("/predict_base64", s.PredictBase64)
	r.GET("/health", s.Health)

	return r
}

func (s *Server) Predict(c *gin.Context) {
	var req gateway.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "category": gateway.CategoryValidation})
		return
	}

	results, err := s.Pipeline.PredictPaths(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": results})
}

func (s *Server) PredictUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "category": gateway.CategoryValidation})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing 'files' field in form", "category": gateway.CategoryValidation})
		return
	}

	meta := gateway.UploadMeta{
		Country:      c.PostForm("country"),
		Admin1Region: c.PostForm("admin1_region"),
	}
	var ok bool
	if meta.Latitude, ok = parseCoordinate(c.PostForm("latitude")); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'latitude' form field", "category": gateway.CategoryValidation})
		return
	}
	if meta.Longitude, ok = parseCoordinate(c.PostForm("longitude")); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'longitude' form field", "category": gateway.CategoryValidation})
		return
	}

	results, err := s.Pipeline.PredictUploads(c.Request.Context(), files, meta)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": results})
}

func (s *Server) PredictBase64(c *gin.Context) {
	var req gateway.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "category": gateway.CategoryValidation})
		return
	}

	results, err := s.Pipeline.PredictBase64(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": results})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"model":  s.cfg.Engine.Model,
	})
}

func parseCoordinate(raw string) (*float64, bool) {
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, false
	}
	return &v, true
}

func respondError(c *gin.Context, err error) {
	category := gateway.CategoryOf(err)
	switch category {
	case gateway.CategoryValidation, gateway.CategoryUnsupportedMedia, gateway.CategoryDecode:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "category": category})
	case gateway.CategoryEngine:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "category": category})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "category": "internal_error"})
	}
}
