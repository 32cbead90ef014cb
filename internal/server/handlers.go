package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/spigell/lead-scorer/internal/leads"
	"github.com/spigell/lead-scorer/internal/scoring"
)

const uploadField = "file"

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding json response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Warn("request rejected", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, newErrorBody(err))
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, "Lead Scoring Api is live!") //nolint:errcheck
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	var offer leads.Offer
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil {
		s.errorResponse(w, &leads.ValidationError{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	if err := offer.Validate(); err != nil {
		s.errorResponse(w, err)
		return
	}

	s.store.SetOffer(offer)
	s.logger.Info("offer stored", zap.String("offer", offer.Name))

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Offer received successfully",
		"offer":   offer,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		msg := "No file uploaded"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			msg = "file is too large"
		}
		s.errorResponse(w, &leads.ValidationError{Field: uploadField, Message: msg})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, &leads.ValidationError{Field: uploadField, Message: "cannot read upload: " + err.Error()})
		return
	}

	parsed, err := leads.Parse(header.Filename, data)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.store.SetLeads(parsed)
	s.logger.Info("leads stored", zap.String("filename", header.Filename), zap.Int("count", len(parsed)))

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "File uploaded successfully",
		"count":   len(parsed),
	})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	results, err := s.store.Score(r.Context(), s.runner)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"message": "Scoring completed. Use GET /api/results to fetch results.",
		"count":   len(results),
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	results, ok := s.store.Results()
	if !ok {
		s.jsonResponse(w, http.StatusOK, map[string]string{
			"message": "Please provide the offer, leads and run the score api first.",
		})
		return
	}

	if r.URL.Query().Get("sort") == "score" {
		results = scoring.Rank(results)
	}

	s.jsonResponse(w, http.StatusOK, results)
}
