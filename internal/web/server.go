package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"contractqa/config"
	"contractqa/internal/domain"
)

//go:embed templates/*.html
var pageTemplates embed.FS

const requestIDHeader = "X-Request-ID"

// Asker answers questions against a shared, lazily built index.
type Asker interface {
	Ask(ctx context.Context, question string, k int) domain.Answer
	Ready() bool
	TopK() int
}

// Server serves the question form and a small JSON API.
type Server struct {
	router *gin.Engine
	asker  Asker
	addr   string
}

// NewServer builds the gin router around asker.
func NewServer(asker Asker, cfg config.ServerConfig) (*Server, error) {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(pageTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestID())
	router.Use(requestLogger())
	router.SetHTMLTemplate(tmpl)

	s := &Server{
		router: router,
		asker:  asker,
		addr:   cfg.Addr,
	}

	router.GET("/", s.handleIndex)
	router.POST("/ask", s.handleAskForm)
	router.POST("/api/ask", s.handleAskAPI)
	router.GET("/healthz", s.handleHealth)

	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

type pageData struct {
	Question string
	Asked    bool
	Answer   string
	Error    string
	Sources  []domain.ScoredChunk
}

func (s *Server) handleIndex(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{})
}

func (s *Server) handleAskForm(c *gin.Context) {
	question := c.PostForm("question")
	answer := s.asker.Ask(c.Request.Context(), question, 0)
	logAnswer(c, answer)

	data := pageData{
		Question: question,
		Asked:    true,
		Answer:   answer.Text,
		Sources:  answer.Sources,
	}
	if answer.Err != nil {
		data.Error = answer.String()
	}
	c.HTML(http.StatusOK, "index.html", data)
}

type askRequest struct {
	Question string `json:"question"`
	K        int    `json:"k"`
}

type askResponse struct {
	Answer  string               `json:"answer"`
	Error   string               `json:"error,omitempty"`
	Sources []domain.ScoredChunk `json:"sources"`
}

func (s *Server) handleAskAPI(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.K < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidTopK.Error()})
		return
	}

	answer := s.asker.Ask(c.Request.Context(), req.Question, req.K)
	logAnswer(c, answer)

	resp := askResponse{
		Answer:  answer.Text,
		Sources: answer.Sources,
	}
	if resp.Sources == nil {
		resp.Sources = []domain.ScoredChunk{}
	}

	status := http.StatusOK
	if answer.Err != nil {
		resp.Error = answer.Err.Error()
		switch {
		case errors.Is(answer.Err, domain.ErrIndexNotReady):
			status = http.StatusServiceUnavailable
		case errors.Is(answer.Err, domain.ErrProvider):
			status = http.StatusBadGateway
		default:
			status = http.StatusInternalServerError
		}
	}
	c.JSON(status, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"ready":  s.asker.Ready(),
		"top_k":  s.asker.TopK(),
	})
}

// requestID tags every request with an ID, reusing the caller's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("request",
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	}
}

func logAnswer(c *gin.Context, answer domain.Answer) {
	if answer.Err != nil {
		slog.Warn("answer failed", "request_id", getRequestID(c), "error", answer.Err)
		return
	}
	slog.Debug("answered", "request_id", getRequestID(c), "sources", len(answer.Sources), "prompt_tokens", answer.PromptTokens)
}
