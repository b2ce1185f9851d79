package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"mahfaza/internal/auth"
	"mahfaza/internal/docs"
	"mahfaza/internal/utils"
	"mahfaza/pkg/types"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger      *logrus.Logger
	config      *types.Config
	credentials *auth.Credentials
	documents   *docs.Service
	templates   *template.Template

	cookie   *securecookie.SecureCookie
	registry *prometheus.Registry
	requests *prometheus.CounterVec

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	credentials *auth.Credentials,
	documents *docs.Service,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "path", "status"},
	)
	if err := registry.Register(requests); err != nil {
		return nil, fmt.Errorf("register request counter: %w", err)
	}

	s := &Service{
		logger:      logger,
		config:      config,
		credentials: credentials,
		documents:   documents,
		cookie:      securecookie.New(hashKey, blockKey),
		registry:    registry,
		requests:    requests,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.MetricsMiddleware)

	r.NotFound = http.HandlerFunc(s.handleNotFound)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodGet)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/", s.handleDashboard, http.MethodGet)
		r.HandleFunc("/dashboard", s.handleDashboard, http.MethodGet)

		r.HandleFunc("/add_document", s.handleGetAddDocument, http.MethodGet)
		r.HandleFunc("/add_document", s.handlePostAddDocument, http.MethodPost)
		r.HandleFunc("/document/:id", s.handleViewDocument, http.MethodGet)
		r.HandleFunc("/edit_document/:id", s.handleGetEditDocument, http.MethodGet)
		r.HandleFunc("/edit_document/:id", s.handlePostEditDocument, http.MethodPost)
		r.HandleFunc("/delete_document/:id", s.handleDeleteDocument, http.MethodPost)

		r.HandleFunc("/download/:filename", s.handleDownload, http.MethodGet)
		r.HandleFunc("/uploads/:filename", s.handleInlineView, http.MethodGet)

		r.HandleFunc("/profile", s.handleProfile, http.MethodGet)
	})

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}), http.MethodGet)

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": utils.PtrString,
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil {
				return defaultVal
			}
			return *s
		},
		"formatDate": func(t *time.Time) string {
			if t == nil {
				return ""
			}
			return t.Format("2006-01-02")
		},
		"formatTimestamp": func(t time.Time) string {
			return t.Format("2006-01-02 15:04")
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}
