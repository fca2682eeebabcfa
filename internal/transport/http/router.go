// Package http exposes the console over HTTP: a server-rendered page driven
// by form posts, and a JSON API under /api/v1.
package http

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pyconsole/internal/app/console"
	domain "pyconsole/internal/domain/console"
	"pyconsole/internal/domain/execution"
	"pyconsole/internal/observability"
)

//go:embed templates/*.html
var templateFS embed.FS

// Console is the application surface served over HTTP.
type Console interface {
	Sessions() *console.SessionStore
	Run(ctx context.Context, sess *domain.Session, req console.RunRequest) (execution.Result, error)
	Clear(ctx context.Context, sess *domain.Session) error
	RunScript(ctx context.Context, script execution.Script) (*execution.ScriptResult, error)
	Install(ctx context.Context, sessionID, requirement string) (*execution.InstallResult, error)
}

var _ Console = (*console.Service)(nil)

// Config configures the router.
type Config struct {
	Console Console
	Logger  *slog.Logger
	// Backend is reported by /healthz.
	Backend string
	// MetricsPath mounts the Prometheus handler when non-empty.
	MetricsPath string
	// MaxUploadBytes bounds uploaded scripts. Defaults to execution.MaxScriptBytes.
	MaxUploadBytes int64
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

type handler struct {
	console        Console
	logger         *slog.Logger
	backend        string
	maxUploadBytes int64
	secureCookies  bool
	now            func() time.Time
}

// NewRouter builds the gin engine serving the page, the JSON API, health
// and metrics.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxUpload := cfg.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = execution.MaxScriptBytes
	}

	h := &handler{
		console:        cfg.Console,
		logger:         logger,
		backend:        cfg.Backend,
		maxUploadBytes: maxUpload,
		secureCookies:  cfg.SecureCookies,
		now:            time.Now,
	}

	router := gin.New()
	router.Use(gin.Recovery(), observability.Middleware(), requestLogger(logger))
	router.SetHTMLTemplate(template.Must(template.New("").ParseFS(templateFS, "templates/*.html")))
	// Multipart parsing keeps uploads in memory up to this size.
	router.MaxMultipartMemory = maxUpload + 1<<16

	router.GET("/", h.showPage)
	router.POST("/run", h.pageRun)
	router.POST("/clear", h.pageClear)
	router.POST("/scripts", h.pageScript)
	router.POST("/packages", h.pageInstall)

	api := router.Group("/api/v1")
	{
		api.POST("/sessions", h.createSession)
		api.GET("/sessions/:id", h.getSession)
		api.DELETE("/sessions/:id", h.deleteSession)
		api.POST("/sessions/:id/run", h.runSession)
		api.POST("/sessions/:id/clear", h.clearSession)
		api.POST("/scripts", h.runScript)
		api.POST("/packages", h.installPackage)
	}

	router.GET("/healthz", h.health)
	if cfg.MetricsPath != "" {
		router.GET(cfg.MetricsPath, gin.WrapH(promhttp.Handler()))
	}

	return router
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, healthView{
		Status:   "ok",
		Backend:  h.backend,
		Sessions: h.console.Sessions().Len(),
		Time:     h.now().UTC(),
	})
}
