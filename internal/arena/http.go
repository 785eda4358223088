package arena

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	httperrors "github.com/modelarena/arena-platform/pkg/http/errors"
)

// HTTPHandlers provides the REST surface for arena operations.
type HTTPHandlers struct {
	service *Service
	roster  RosterProvider
	logger  zerolog.Logger
}

// NewHTTPHandlers creates HTTP handlers for arena endpoints.
func NewHTTPHandlers(service *Service, roster RosterProvider, logger zerolog.Logger) *HTTPHandlers {
	return &HTTPHandlers{
		service: service,
		roster:  roster,
		logger:  logger.With().Str("component", "arena_http").Logger(),
	}
}

// ParseQuestions handles POST /v1/arena/questions/parse.
// Parsing never fails; the worst case is a single-question fallback
// the client can show for confirmation.
func (h *HTTPHandlers) ParseQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	h.respondJSON(w, http.StatusOK, ParseQuestionsAndAnswers(req.Text))
}

// MigrateQuestions handles POST /v1/arena/questions/migrate, converting
// the legacy separate question/answer boxes into the combined format.
func (h *HTTPHandlers) MigrateQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Questions string `json:"questions"`
		Answers   string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"combined": MigrateQuestionsAndAnswers(req.Questions, req.Answers),
	})
}

// RunRound handles POST /v1/arena/rounds: one question through the
// full contestant/judge cycle.
func (h *HTTPHandlers) RunRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req RoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	if req.RunID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "run_id is required", "run_id")
		return
	}
	if req.QuestionText == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "question_text is required", "question_text")
		return
	}
	result, err := h.service.RunRound(r.Context(), req)
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", req.RunID).Msg("round failed")
		httperrors.RespondError(w, http.StatusInternalServerError, httperrors.ErrCodeRoundFailed, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// GenerateQuestions handles POST /v1/arena/questions/generate (the
// Builder phase). A parse failure maps to 502 so clients retry.
func (h *HTTPHandlers) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Config     RunConfig         `json:"config"`
		Generation GenerationRequest `json:"generation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	questions, err := h.service.GenerateQuestions(r.Context(), req.Config, req.Generation)
	if err != nil {
		if errors.Is(err, ErrGenerationFailed) {
			httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeGenerationFailed, err.Error())
			return
		}
		// Anything else here is a roster or judge transport failure.
		h.logger.Error().Err(err).Msg("question generation failed")
		httperrors.RespondError(w, http.StatusBadGateway, httperrors.ErrCodeUpstreamError, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

// Standings handles GET /v1/arena/runs/{id}/standings via query param
// run_id, plus optional slot model assignments for active-slot
// filtering.
func (h *HTTPHandlers) Standings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, "run_id is required", "run_id")
		return
	}
	cfg := RunConfig{SlotModels: map[string]string{}}
	for _, slot := range AllSlots {
		if id := r.URL.Query().Get("slot_" + slot); id != "" {
			cfg.SlotModels[slot] = id
		}
	}
	totals, standings, err := h.service.Standings(r.Context(), runID, cfg)
	if err != nil {
		h.logger.Error().Err(err).Str("run_id", runID).Msg("standings failed")
		httperrors.RespondInternalError(w, err.Error())
		return
	}
	history, err := h.service.History(r.Context(), runID)
	if err != nil {
		httperrors.RespondInternalError(w, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"totals":    totals,
		"standings": standings,
		"history":   history,
	})
}

// ResetRun handles POST /v1/arena/runs/reset.
func (h *HTTPHandlers) ResetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		RunID string `json:"run_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RunID == "" {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "run_id is required")
		return
	}
	if err := h.service.ResetRun(r.Context(), req.RunID); err != nil {
		httperrors.RespondInternalError(w, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]bool{"reset": true})
}

// Models handles GET /v1/models: the merged local + cloud roster.
func (h *HTTPHandlers) Models(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	models, err := h.roster.ListModels(r.Context())
	if err != nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeNoModels, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"data": models})
}

// PickJudge handles POST /v1/arena/judge/pick: preview which judge the
// current configuration would get. A "no judge available" outcome is a
// 200 with the remediation message, not an error status.
func (h *HTTPHandlers) PickJudge(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		UserChoice    string   `json:"user_choice"`
		ContestantIDs []string `json:"contestant_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperrors.RespondBadRequest(w, httperrors.ErrCodeInvalidRequest, "Invalid JSON payload")
		return
	}
	models, err := h.roster.ListModels(r.Context())
	if err != nil {
		httperrors.RespondServiceUnavailable(w, httperrors.ErrCodeNoModels, err.Error())
		return
	}
	h.respondJSON(w, http.StatusOK, PickJudgeModel(req.UserChoice, req.ContestantIDs, models))
}

func (h *HTTPHandlers) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn().Err(err).Msg("encode response failed")
	}
}
