package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/elsanchez/media-fetch/internal/downloader"
)

// Server es el servidor HTTP del daemon
type Server struct {
	addr    string
	svc     *downloader.Service
	timeout time.Duration
	engine  *gin.Engine
	server  *http.Server
}

// NewServer crea un nuevo servidor HTTP sobre el servicio de descargas.
// timeout limita cada operación de extracción; cero deshabilita el límite.
func NewServer(addr string, svc *downloader.Service, timeout time.Duration) *Server {
	s := &Server{
		addr:    addr,
		svc:     svc,
		timeout: timeout,
	}

	s.engine = gin.New()
	s.engine.Use(gin.Recovery())
	s.engine.Use(s.loggingMiddleware())

	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/preview", s.handlePreview)
	api.GET("/download", s.handleDownload)
	api.POST("/download-url", s.handleDownloadURL)
	api.POST("/download-zip", s.handleDownloadZip)

	return s
}

// Start inicia el servidor. Bloquea hasta que el listener falla o se
// llama a Stop.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // las descargas pueden tardar lo que necesiten
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on %s", s.addr)

	err := s.server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop apaga el servidor drenando las conexiones activas
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler expone el router para tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// requestContext deriva el contexto de la request con el timeout del
// servidor. Cancelar la conexión cancela la extracción en curso.
func (s *Server) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	ctx := c.Request.Context()
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
