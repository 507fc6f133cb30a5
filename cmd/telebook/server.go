package main

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"telebook/internal/constants"
	"telebook/internal/metrics"
	"telebook/internal/middleware"
	"telebook/internal/models"
	"telebook/internal/service"
	"telebook/pkg/telegram"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router        *mux.Router
	logger        *logrus.Logger
	ingestor      *service.Ingestor
	status        *service.StatusReporter
	registry      *metrics.Registry
	webhookSecret string
	port          int
	server        *http.Server
}

func NewServer(cfg *models.Config, ingestor *service.Ingestor, status *service.StatusReporter, registry *metrics.Registry, logger *logrus.Logger) *Server {
	s := &Server{
		router:        mux.NewRouter(),
		logger:        logger,
		ingestor:      ingestor,
		status:        status,
		registry:      registry,
		webhookSecret: cfg.Telegram.WebhookSecret,
		port:          cfg.Server.Port,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger, s.registry))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	webhook := s.router.PathPrefix("/webhook/telegram").Subrouter()
	webhook.HandleFunc("", s.handleTelegramWebhook()).Methods(http.MethodPost)
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  constants.DefaultServerReadTimeoutSec * time.Second,
		WriteTimeout: constants.DefaultServerWriteTimeoutSec * time.Second,
		IdleTimeout:  constants.DefaultServerIdleTimeoutSec * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

func (s *Server) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.status.Current())
	}
}

func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, s.registry.GetAllMetrics())
	}
}

// handleTelegramWebhook receives Bot API updates. The response is 200 for
// anything the queue has dealt with, including rejections: a non-2xx makes
// the Bot API redeliver the update, which would never succeed for content we
// rejected on purpose.
func (s *Server) handleTelegramWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.authorizeWebhook(r) {
			s.logger.WithField("remoteIp", middleware.ClientIP(r)).Warn("Rejected webhook call with bad secret token")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxWebhookBodyBytes))
		if err != nil {
			s.logger.WithError(err).Warn("Failed to read webhook body")
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}

		content, err := telegram.ParseUpdate(body)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to decode webhook update")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if content == nil {
			// Edits, callbacks and other update kinds are acknowledged
			// and dropped.
			w.WriteHeader(http.StatusOK)
			return
		}

		result, err := s.ingestor.AddToQueue(r.Context(), &models.IngestRequest{
			Source:         fmt.Sprintf("telegram:%d", content.ChatID),
			Text:           content.Text,
			MediaType:      models.MediaType(content.MediaType),
			MediaReference: content.FileID,
		})
		if err != nil {
			s.logger.WithError(err).Error("Failed to persist ingested item")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		s.writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) authorizeWebhook(r *http.Request) bool {
	if s.webhookSecret == "" {
		return true
	}
	got := r.Header.Get("X-Telegram-Bot-Api-Secret-Token")
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.webhookSecret)) == 1
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Warn("Failed to encode response")
	}
}
