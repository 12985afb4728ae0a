// Package httpapi exposes the question-answering service over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/ansera/internal/core/ports/driven"
	"github.com/custodia-labs/ansera/internal/core/ports/driving"
	"github.com/custodia-labs/ansera/internal/journal"
	"github.com/custodia-labs/ansera/internal/logger"
)

// Default timeouts for the HTTP server.
const (
	readTimeout = 30 * time.Second
	// Answering can fetch from several upstream APIs and run
	// extraction, so writes get generous room.
	writeTimeout    = 5 * time.Minute
	shutdownTimeout = 10 * time.Second
)

// Config wires a Server.
type Config struct {
	Host string
	Port int

	// ChatThreshold is the confidence floor for chat replies.
	ChatThreshold float64

	// FetchNewData lets low-confidence chat replies refetch from
	// external sources before giving up.
	FetchNewData bool

	// TrackUnanswered records questions that fell through to small
	// talk.
	TrackUnanswered bool

	// SaveConversations appends every exchange to the conversation
	// log.
	SaveConversations bool
}

// Server is the HTTP façade over the QA and knowledge services.
type Server struct {
	qa            driving.AnswerService
	knowledge     driving.KnowledgeService
	index         driven.DocumentIndex
	training      *journal.TrainingLog
	unanswered    *journal.UnansweredLog
	conversations *journal.ConversationLog

	cfg  Config
	now  func() time.Time
	http *http.Server
}

// New creates a Server. The index is only consulted for statistics.
func New(
	cfg Config,
	qa driving.AnswerService,
	knowledge driving.KnowledgeService,
	index driven.DocumentIndex,
	training *journal.TrainingLog,
	unanswered *journal.UnansweredLog,
	conversations *journal.ConversationLog,
) *Server {
	s := &Server{
		qa:            qa,
		knowledge:     knowledge,
		index:         index,
		training:      training,
		unanswered:    unanswered,
		conversations: conversations,
		cfg:           cfg,
		now:           time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /train", s.handleTrain)
	mux.HandleFunc("POST /admin/add", s.handleAdminAdd)
	mux.HandleFunc("POST /admin/delete", s.handleAdminDelete)
	mux.HandleFunc("GET /admin/unanswered", s.handleUnanswered)
	mux.HandleFunc("POST /admin/fetch", s.handleAdminFetch)
	mux.HandleFunc("GET /training_data", s.handleTrainingData)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /{$}", s.handleRoot)

	s.http = &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      mux,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}
	return s
}

// Handler returns the route table, for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP API listening on %s", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Encoding response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
