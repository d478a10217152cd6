package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/netest/netest-core/internal/core/domain"
)

// ErrorResponse represents an API error response.
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response.
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response.
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// HealthResponse reports overall and per-component health.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth is one dependency's health.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// handleHealth godoc
// @Summary      Health check
// @Description  Returns 200 with per-dependency status
// @Tags         Health
// @Produce      json
// @Success      200  {object}  HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components := make(map[string]ComponentHealth)
	allHealthy := true

	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			components["annotation_store"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			allHealthy = false
		} else {
			components["annotation_store"] = ComponentHealth{Status: "healthy"}
		}
	}

	if s.taskQueue != nil {
		if err := s.taskQueue.Ping(r.Context()); err != nil {
			components["task_queue"] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			allHealthy = false
		} else {
			components["task_queue"] = ComponentHealth{Status: "healthy"}
		}
	}

	components["server"] = ComponentHealth{Status: "healthy"}

	resp := HealthResponse{Status: "healthy", Components: components}
	if !allHealthy {
		resp.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReady godoc
// @Summary      Readiness check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{Status: "ready"})
}

// handleVersion godoc
// @Summary      API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, VersionResponse{Version: s.version})
}

type analyzeRequest struct {
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
}

// handleAnalyze godoc
// @Summary      Run the pipeline synchronously
// @Description  Runs preprocess/align/extract/classify over one pair and returns the report without persisting a session.
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Param        request  body      analyzeRequest  true  "Source/target pair"
// @Success      200      {object}  domain.AnalysisReport
// @Failure      400      {object}  ErrorResponse
// @Failure      422      {object}  ErrorResponse  "Input exceeds max_words"
// @Router       /analyze [post]
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceText == "" || req.TargetText == "" {
		writeError(w, http.StatusBadRequest, "source_text and target_text are required")
		return
	}

	report, err := s.analysisService.Analyze(r.Context(), req.SourceText, req.TargetText)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type submitResponse struct {
	SessionID string `json:"session_id"`
}

// handleSubmit godoc
// @Summary      Submit a pair for asynchronous analysis
// @Tags         Analysis
// @Accept       json
// @Produce      json
// @Param        request  body      analyzeRequest  true  "Source/target pair"
// @Success      202      {object}  submitResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /sessions [post]
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SourceText == "" || req.TargetText == "" {
		writeError(w, http.StatusBadRequest, "source_text and target_text are required")
		return
	}

	sessionID, err := s.analysisService.Submit(r.Context(), req.SourceText, req.TargetText)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, submitResponse{SessionID: sessionID})
}

// handleGetReport godoc
// @Summary      Fetch a session's analysis report
// @Tags         Analysis
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  domain.AnalysisReport
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id}/report [get]
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	report, err := s.analysisService.GetReport(r.Context(), sessionID)
	if err != nil {
		writeAnalysisError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleListAnnotations godoc
// @Summary      List visible annotations for a session
// @Tags         Annotations
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {array}   domain.StrategyPrediction
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id}/annotations [get]
func (s *Server) handleListAnnotations(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	preds, err := s.annotationService.ListVisible(r.Context(), sessionID)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, preds)
}

type createAnnotationRequest struct {
	Code          domain.StrategyCode `json:"code"`
	TargetOffsets []domain.Offset     `json:"target_offsets"`
	Comment       string              `json:"comment"`
}

// handleCreateAnnotation godoc
// @Summary      Create a human annotation
// @Tags         Annotations
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Session ID"
// @Param        request  body      createAnnotationRequest  true  "New annotation"
// @Success      201      {object}  domain.StrategyPrediction
// @Failure      400      {object}  ErrorResponse
// @Router       /sessions/{id}/annotations [post]
func (s *Server) handleCreateAnnotation(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	var req createAnnotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pred, err := s.annotationService.Create(r.Context(), sessionID, req.Code, req.TargetOffsets, req.Comment)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pred)
}

// handleAccept godoc
// @Summary      Accept a pending annotation
// @Tags         Annotations
// @Produce      json
// @Param        id          path      string  true  "Session ID"
// @Param        strategyId  path      string  true  "Strategy ID"
// @Success      200         {object}  domain.StrategyPrediction
// @Failure      404         {object}  ErrorResponse
// @Failure      409         {object}  ErrorResponse  "Illegal status transition"
// @Router       /sessions/{id}/annotations/{strategyId}/accept [post]
func (s *Server) handleAccept(w http.ResponseWriter, r *http.Request) {
	sessionID, strategyID := r.PathValue("id"), r.PathValue("strategyId")
	pred, err := s.annotationService.Accept(r.Context(), sessionID, strategyID)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// handleReject godoc
// @Summary      Reject an annotation
// @Tags         Annotations
// @Produce      json
// @Param        id          path      string  true  "Session ID"
// @Param        strategyId  path      string  true  "Strategy ID"
// @Success      200         {object}  domain.StrategyPrediction
// @Failure      404         {object}  ErrorResponse
// @Failure      409         {object}  ErrorResponse
// @Router       /sessions/{id}/annotations/{strategyId}/reject [post]
func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	sessionID, strategyID := r.PathValue("id"), r.PathValue("strategyId")
	pred, err := s.annotationService.Reject(r.Context(), sessionID, strategyID)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

type modifyCodeRequest struct {
	Code domain.StrategyCode `json:"code"`
}

// handleModifyCode godoc
// @Summary      Change an annotation's strategy code
// @Tags         Annotations
// @Accept       json
// @Produce      json
// @Param        id          path      string             true  "Session ID"
// @Param        strategyId  path      string             true  "Strategy ID"
// @Param        request     body      modifyCodeRequest  true  "New code"
// @Success      200         {object}  domain.StrategyPrediction
// @Failure      400         {object}  ErrorResponse
// @Router       /sessions/{id}/annotations/{strategyId}/code [patch]
func (s *Server) handleModifyCode(w http.ResponseWriter, r *http.Request) {
	sessionID, strategyID := r.PathValue("id"), r.PathValue("strategyId")
	var req modifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pred, err := s.annotationService.ModifyCode(r.Context(), sessionID, strategyID, req.Code)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

type modifySpanRequest struct {
	TargetOffsets []domain.Offset `json:"target_offsets"`
}

// handleModifySpan godoc
// @Summary      Replace an annotation's target offsets
// @Tags         Annotations
// @Accept       json
// @Produce      json
// @Param        id          path      string             true  "Session ID"
// @Param        strategyId  path      string             true  "Strategy ID"
// @Param        request     body      modifySpanRequest  true  "New span"
// @Success      200         {object}  domain.StrategyPrediction
// @Failure      400         {object}  ErrorResponse
// @Router       /sessions/{id}/annotations/{strategyId}/span [patch]
func (s *Server) handleModifySpan(w http.ResponseWriter, r *http.Request) {
	sessionID, strategyID := r.PathValue("id"), r.PathValue("strategyId")
	var req modifySpanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pred, err := s.annotationService.ModifySpan(r.Context(), sessionID, strategyID, req.TargetOffsets)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pred)
}

// handleAudit godoc
// @Summary      Fetch an annotation's audit trail
// @Tags         Annotations
// @Produce      json
// @Param        id          path      string  true  "Session ID"
// @Param        strategyId  path      string  true  "Strategy ID"
// @Success      200         {array}   domain.AuditEntry
// @Failure      404         {object}  ErrorResponse
// @Router       /sessions/{id}/annotations/{strategyId}/audit [get]
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	sessionID, strategyID := r.PathValue("id"), r.PathValue("strategyId")
	entries, err := s.annotationService.Audit(r.Context(), sessionID, strategyID)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleExport godoc
// @Summary      Export a session's reviewed annotations
// @Description  Returns a jsonl or csv dump of accepted/modified/created annotations, signed in the X-Export-Manifest response header.
// @Tags         Annotations
// @Produce      application/octet-stream
// @Param        id      path   string  true  "Session ID"
// @Param        format  query  string  false  "jsonl (default) or csv"
// @Success      200
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{id}/export [get]
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "jsonl"
	}

	data, err := s.annotationService.Export(r.Context(), sessionID, format)
	if err != nil {
		writeAnnotationError(w, err)
		return
	}

	if s.exportSigner != nil {
		preds, err := s.annotationService.ListVisible(r.Context(), sessionID)
		count := 0
		if err == nil {
			for _, p := range preds {
				if domain.ExportableStatuses[p.Status] {
					count++
				}
			}
		}
		if manifest, err := s.exportSigner.Sign(sessionID, count, data); err == nil {
			w.Header().Set("X-Export-Manifest", manifest)
		}
	}

	contentType := "application/x-ndjson"
	if format == "csv" {
		contentType = "text/csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeJSON encodes data as status-coded JSON.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError encodes a single-field error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeAnalysisError maps AnalysisService errors to status codes.
func writeAnalysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInputTooLong):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrServiceUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "analysis failed")
	}
}

// writeAnnotationError maps AnnotationService errors to status codes.
func writeAnnotationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrAnnotationNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidOffsets), errors.Is(err, domain.ErrUnknownStrategyCode):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}
