package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"EssayRC/internal/domain"
	"EssayRC/internal/ports"
	"EssayRC/internal/usecase"
)

// Server exposes the ingestion and generation workflows over HTTP. It is
// thin plumbing: all decisions live in the usecase layer.
type Server struct {
	essays    ports.EssayRepository
	rcs       ports.RCRepository
	ingestor  *usecase.Ingestor
	generator *usecase.Generator
	maxPages  int
	logger    *slog.Logger
}

// NewServer wires repositories and usecases into the HTTP surface.
func NewServer(essays ports.EssayRepository, rcs ports.RCRepository, ingestor *usecase.Ingestor, generator *usecase.Generator, maxPages int, logger *slog.Logger) *Server {
	return &Server{
		essays:    essays,
		rcs:       rcs,
		ingestor:  ingestor,
		generator: generator,
		maxPages:  maxPages,
		logger:    logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.POST("/essays", s.createEssay)
	api.POST("/scrape", s.startScrape)
	api.POST("/rc/generate/:essayId", s.generateRC)
	api.GET("/rc", s.listRC)
	api.GET("/rc/:id", s.getRC)

	return r
}

type essayRequest struct {
	Title         string `json:"title" binding:"required"`
	URL           string `json:"url" binding:"required"`
	Category      string `json:"category"`
	Content       string `json:"content"`
	PublishedDate string `json:"publishedDate"`
}

func (s *Server) createEssay(c *gin.Context) {
	var body essayRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	essay := domain.Essay{
		Title:            body.Title,
		URL:              body.URL,
		Category:         body.Category,
		Content:          body.Content,
		PublishedDate:    body.PublishedDate,
		ScrapedDate:      time.Now().UTC(),
		WordCount:        domain.CountWords(body.Content),
		ProcessingStatus: domain.StatusUnprocessed,
	}

	exists, err := s.essays.ExistsByTitleOrURL(c.Request.Context(), essay.Title, essay.URL)
	if err != nil {
		s.fail(c, err)
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "essay already exists with this title or url"})
		return
	}

	id, err := s.essays.Insert(c.Request.Context(), essay)
	if err != nil {
		var dup *domain.DuplicateError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, gin.H{"error": dup.Error()})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "essay added"})
}

type scrapeRequest struct {
	MaxPages int `json:"maxPages"`
}

// startScrape acknowledges immediately and runs crawl+ingest in the
// background; the HTTP request context would die with the response, so
// the job gets its own.
func (s *Server) startScrape(c *gin.Context) {
	var body scrapeRequest
	_ = c.ShouldBindJSON(&body)
	if body.MaxPages <= 0 {
		body.MaxPages = s.maxPages
	}

	jobID := uuid.NewString()
	go func() {
		report, err := s.ingestor.CrawlAndIngest(context.Background(), body.MaxPages)
		if err != nil {
			s.warn("background scrape failed", "job", jobID, "error", err)
			return
		}
		s.info("background scrape finished", "job", jobID, "added", report.Added, "skipped", report.Skipped)
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "scraping started", "jobId": jobID})
}

func (s *Server) generateRC(c *gin.Context) {
	essayID, err := strconv.ParseInt(c.Param("essayId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid essay id"})
		return
	}

	rc, created, err := s.generator.Generate(c.Request.Context(), essayID)
	switch {
	case errors.Is(err, usecase.ErrEssayNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "essay not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	case !created:
		c.JSON(http.StatusConflict, gin.H{"message": "rc content already exists for this essay", "data": rc})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "rc content generated", "data": rc})
	}
}

func (s *Server) listRC(c *gin.Context) {
	artifacts, err := s.rcs.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": artifacts})
}

func (s *Server) getRC(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid rc id"})
		return
	}

	rc, err := s.rcs.GetByID(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	if rc == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "rc content not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rc})
}

func (s *Server) fail(c *gin.Context, err error) {
	s.warn("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

func (s *Server) info(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *Server) warn(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
