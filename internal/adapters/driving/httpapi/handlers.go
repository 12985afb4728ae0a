package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/logger"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string  `json:"reply"`
	Score float64 `json:"score"`
}

// handleChat answers one chat message. Confident answers come from
// the QA service; everything else falls through to small talk, and
// the question is recorded as unanswered so an operator can supply
// an answer later.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	message := strings.ToLower(strings.TrimSpace(req.Message))
	if message == "" {
		writeJSON(w, http.StatusOK, map[string]string{"reply": "I didn't receive anything 🤖"})
		return
	}

	reply, score, _, err := s.qa.Reply(r.Context(), message, s.cfg.FetchNewData, s.cfg.ChatThreshold)
	if err != nil {
		logger.Warn("Chat reply failed: %v", err)
		score = 0
	}

	if err == nil && score >= s.cfg.ChatThreshold {
		s.remember(message, reply)
		writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Score: score})
		return
	}

	if s.cfg.TrackUnanswered {
		if err := s.unanswered.Add(message); err != nil {
			logger.Warn("Recording unanswered question failed: %v", err)
		}
	}

	reply = s.smallTalk(message)
	s.remember(message, reply)
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Score: 0})
}

func (s *Server) remember(input, output string) {
	if !s.cfg.SaveConversations {
		return
	}
	if err := s.conversations.Append(input, output); err != nil {
		logger.Warn("Saving conversation failed: %v", err)
	}
}

// handleTrain rebuilds the knowledge base synchronously.
func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	stats, err := s.knowledge.Train(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrRetrainInProgress) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "trained",
		"n_docs": stats.DocumentCount,
		"metric": float64(stats.EmbeddingDimension),
	})
}

type adminAddRequest struct {
	Input    string `json:"input"`
	Question string `json:"question"`
	Output   string `json:"output"`
	Answer   string `json:"answer"`
}

// handleAdminAdd stores a curated Q&A pair, clears the matching
// unanswered entries, and kicks off a background retrain.
func (s *Server) handleAdminAdd(w http.ResponseWriter, r *http.Request) {
	var req adminAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	question := req.Input
	if question == "" {
		question = req.Question
	}
	answer := req.Output
	if answer == "" {
		answer = req.Answer
	}
	if question == "" || answer == "" {
		writeError(w, http.StatusBadRequest, "Provide 'input' and 'output' in body")
		return
	}

	if err := s.training.Add(domain.TrainingPair{Input: question, Output: answer}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.unanswered.RemoveMatching(question); err != nil {
		logger.Warn("Clearing unanswered entries failed: %v", err)
	}

	s.knowledge.RetrainInBackground()

	writeJSON(w, http.StatusCreated, map[string]string{
		"status":   "added and training started",
		"question": question,
		"answer":   answer,
	})
}

type adminDeleteRequest struct {
	Index *int `json:"index"`
}

// handleAdminDelete removes a training pair by position and retrains.
func (s *Server) handleAdminDelete(w http.ResponseWriter, r *http.Request) {
	var req adminDeleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Index == nil {
		writeError(w, http.StatusBadRequest, "Provide index")
		return
	}

	if err := s.training.Remove(*req.Index); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid index")
		return
	}

	s.knowledge.RetrainInBackground()
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleUnanswered(w http.ResponseWriter, _ *http.Request) {
	items := s.unanswered.List()
	if items == nil {
		items = []domain.UnansweredQuestion{}
	}
	writeJSON(w, http.StatusOK, items)
}

type adminFetchRequest struct {
	Topics  []string `json:"topics"`
	Sources []string `json:"sources"`
}

// handleAdminFetch pulls the given topics from external sources into
// the index.
func (s *Server) handleAdminFetch(w http.ResponseWriter, r *http.Request) {
	var req adminFetchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Topics) == 0 {
		writeError(w, http.StatusBadRequest, "Provide 'topics' in body")
		return
	}

	sources := domain.ParseSourceNames(req.Sources)
	if err := s.knowledge.BuildFromSources(r.Context(), req.Topics, sources); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "fetched",
		"n_docs": s.index.Stats().DocumentCount,
	})
}

func (s *Server) handleTrainingData(w http.ResponseWriter, _ *http.Request) {
	data := s.training.List()
	if data == nil {
		data = []domain.TrainingPair{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data})
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.index.Stats())
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("Hello! API is live."))
}
