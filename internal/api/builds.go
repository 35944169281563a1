package api

import (
	"errors"
	"net/http"

	"github.com/meur/buildforge/internal/build"
	"github.com/meur/buildforge/internal/metrics"
	"github.com/meur/buildforge/internal/models"
	"github.com/meur/buildforge/internal/sharecode"
	"github.com/meur/buildforge/internal/validation"
)

// handleNewBuild returns a fresh document laid out from the default blocks
func (s *Server) handleNewBuild(w http.ResponseWriter, r *http.Request) {
	doc := build.FromTemplate(r.URL.Query().Get("title"), models.DefaultBlocks())
	respondJSON(w, http.StatusOK, doc.Snapshot())
}

// handleEncodeBuild validates a build and returns its share code
func (s *Server) handleEncodeBuild(w http.ResponseWriter, r *http.Request) {
	var b models.Build
	if err := decodeJSON(w, r, &b); err != nil {
		metrics.ShareCodes.WithLabelValues(metrics.DirectionEncode, metrics.ResultInvalid).Inc()
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	code, err := s.codec.Encode(b)
	if err != nil {
		s.respondCodecError(w, r, metrics.DirectionEncode, err)
		return
	}

	metrics.ShareCodes.WithLabelValues(metrics.DirectionEncode, metrics.ResultOK).Inc()
	respondJSON(w, http.StatusOK, models.EncodeResponse{Code: code})
}

// handleDecodeBuild returns the exact JSON carried by a share code
func (s *Server) handleDecodeBuild(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		respondError(w, http.StatusBadRequest, "Missing code")
		return
	}
	if s.maxCodeLength > 0 && len(code) > s.maxCodeLength {
		metrics.ShareCodes.WithLabelValues(metrics.DirectionDecode, metrics.ResultInvalid).Inc()
		respondError(w, http.StatusRequestEntityTooLarge, "Share code too long")
		return
	}

	data, _, err := s.codec.Decode(code)
	if err != nil {
		s.respondCodecError(w, r, metrics.DirectionDecode, err)
		return
	}

	metrics.ShareCodes.WithLabelValues(metrics.DirectionDecode, metrics.ResultOK).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleExportBuild converts a build into a League client item set
func (s *Server) handleExportBuild(w http.ResponseWriter, r *http.Request) {
	var b models.Build
	if err := decodeJSON(w, r, &b); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := validation.Build(&b); len(errs) > 0 {
		respondValidation(w, errs)
		return
	}

	respondJSON(w, http.StatusOK, build.ToItemSet(b))
}

func (s *Server) respondCodecError(w http.ResponseWriter, r *http.Request, direction string, err error) {
	var fieldErrs validation.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		metrics.ShareCodes.WithLabelValues(direction, metrics.ResultInvalid).Inc()
		respondValidation(w, fieldErrs)
	case errors.Is(err, sharecode.ErrPayloadTooLarge):
		metrics.ShareCodes.WithLabelValues(direction, metrics.ResultInvalid).Inc()
		respondError(w, http.StatusRequestEntityTooLarge, "Build too large")
	case errors.Is(err, sharecode.ErrMalformedCode):
		metrics.ShareCodes.WithLabelValues(direction, metrics.ResultInvalid).Inc()
		respondError(w, http.StatusBadRequest, "Malformed share code")
	default:
		metrics.ShareCodes.WithLabelValues(direction, metrics.ResultError).Inc()
		logFor(r.Context()).Error("Share code failed", "direction", direction, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to process share code")
	}
}
