package arena

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/modelarena/arena-platform/internal/llm"
)

// ErrGenerationFailed signals that the judge's question-bank reply
// could not be parsed; callers should retry generation rather than
// treat the run as broken.
var ErrGenerationFailed = errors.New("question generation failed")

var (
	roundsScored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_rounds_scored_total",
		Help: "Rounds for which the judge reply produced at least one score.",
	})
	judgeParseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_judge_parse_failures_total",
		Help: "Judge replies that yielded zero parseable score lines.",
	})
	loopDetections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arena_loop_detections_total",
		Help: "Contestant generations flagged as runaway repetition.",
	})
)

// RosterProvider lists the models a judge can be picked from.
type RosterProvider interface {
	ListModels(ctx context.Context) ([]llm.ModelInfo, error)
}

// WebSearcher supplies preformatted web context for the judge when no
// answer key exists. Optional.
type WebSearcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Event is one arena lifecycle notification pushed to subscribed
// clients.
type Event struct {
	Type    string `json:"type"`
	RunID   string `json:"run_id"`
	Payload any    `json:"payload,omitempty"`
}

// Event types emitted during a round.
const (
	EventRoundStarted      = "round_started"
	EventContestantAnswer  = "contestant_answer"
	EventLoopDetected      = "loop_detected"
	EventJudgeSelected     = "judge_selected"
	EventScores            = "scores"
	EventStandings         = "standings"
	EventJudgeUnavailable  = "judge_unavailable"
	EventJudgeReplyIgnored = "judge_reply_ignored"
)

// EventSink receives run events; the WebSocket hub implements it.
type EventSink interface {
	Publish(runID string, event Event)
}

// Service orchestrates one arena round end to end: contestant turns,
// sanitization, judge selection, prompt construction, score parsing,
// and history accumulation.
type Service struct {
	llm      llm.Client
	roster   RosterProvider
	history  HistoryStore
	selCache *SelectionCache
	search   WebSearcher
	sink     EventSink
	logger   zerolog.Logger
}

// ServiceOptions carries the optional collaborators.
type ServiceOptions struct {
	SelectionCache *SelectionCache
	Search         WebSearcher
	Sink           EventSink
}

func NewService(client llm.Client, roster RosterProvider, history HistoryStore, opts ServiceOptions, logger zerolog.Logger) *Service {
	return &Service{
		llm:      client,
		roster:   roster,
		history:  history,
		selCache: opts.SelectionCache,
		search:   opts.Search,
		sink:     opts.Sink,
		logger:   logger.With().Str("component", "arena").Logger(),
	}
}

// RoundRequest describes one question to run through the full
// contestant/judge cycle.
type RoundRequest struct {
	RunID          string    `json:"run_id"`
	QuestionIndex  int       `json:"question_index"`
	QuestionText   string    `json:"question_text"`
	AnswerKey      string    `json:"answer_key"`
	UserCorrection string    `json:"user_correction"`
	Config         RunConfig `json:"config"`
}

// RoundResult is everything the client needs to render a finished
// round. Scores may be empty when the judge reply was unusable; the
// round is then recorded nowhere and the client may retry.
type RoundResult struct {
	Judge         JudgeSelection    `json:"judge"`
	Answers       map[string]string `json:"answers"`
	LoopsDetected []string          `json:"loops_detected,omitempty"`
	ResponseOrder []string          `json:"response_order,omitempty"`
	Scores        map[string]int    `json:"scores"`
	Explanations  map[string]string `json:"explanations"`
	Round         *ScoreRound       `json:"round,omitempty"`
	Totals        map[string]int    `json:"totals,omitempty"`
	Standings     map[string]string `json:"standings,omitempty"`
}

func (s *Service) publish(runID string, eventType string, payload any) {
	if s.sink != nil {
		s.sink.Publish(runID, Event{Type: eventType, RunID: runID, Payload: payload})
	}
}

// RunRound executes one full round. Only configuration mistakes (no
// contestants) and infrastructure failures (history store, judge
// transport) surface as errors; malformed model output degrades to an
// unscored result.
func (s *Service) RunRound(ctx context.Context, req RoundRequest) (RoundResult, error) {
	contestantIDs := req.Config.ContestantIDs()
	if len(contestantIDs) == 0 {
		return RoundResult{}, fmt.Errorf("no contestant slots configured")
	}
	s.publish(req.RunID, EventRoundStarted, map[string]any{
		"question_index": req.QuestionIndex,
		"question_text":  req.QuestionText,
	})

	result := RoundResult{
		Answers:      map[string]string{},
		Scores:       map[string]int{},
		Explanations: map[string]string{},
	}

	responses := s.collectResponses(ctx, req, &result)

	selection, err := s.selectJudge(ctx, req.Config, contestantIDs)
	if err != nil {
		return result, err
	}
	result.Judge = selection
	if selection.ID == "" {
		s.publish(req.RunID, EventJudgeUnavailable, selection.Error)
		return result, nil
	}
	s.publish(req.RunID, EventJudgeSelected, selection)

	spec := JudgePromptSpec{
		Responses:          responses,
		AnswerKey:          NormalizeText(req.AnswerKey),
		QuestionText:       req.QuestionText,
		UserCorrection:     req.UserCorrection,
		CustomInstructions: req.Config.JudgeInstructions,
		NumericPrecision:   req.Config.NumericPrecisionValue(),
	}
	if spec.AnswerKey == "" && req.Config.WebSearch && s.search != nil {
		webContext, searchErr := s.search.Search(ctx, req.QuestionText)
		if searchErr != nil {
			s.logger.Warn().Err(searchErr).Msg("web context unavailable, judge relies on own knowledge")
		} else {
			spec.WebContext = webContext
		}
	}

	var prompt JudgePrompt
	if req.Config.Blind {
		// Round-scoped seed: repeated judge calls for the same round
		// reuse the order, a new round gets a new one.
		seed := fmt.Sprintf("%s:%d", req.RunID, req.QuestionIndex)
		prompt = BuildBlindJudgePrompt(spec, NewSeededRand(seed).Next)
		result.ResponseOrder = prompt.ResponseOrder
	} else {
		prompt = BuildJudgePrompt(spec)
	}

	reply, err := s.llm.Complete(ctx, selection.ID, prompt.Messages, llm.Options{})
	if err != nil {
		return result, fmt.Errorf("judge call: %w", err)
	}

	if req.Config.Blind {
		result.Scores, result.Explanations = ParseBlindJudgeScores(reply.Content, prompt.ResponseOrder)
	} else {
		result.Scores, result.Explanations = ParseJudgeScoresAndExplanations(reply.Content)
	}
	if len(result.Scores) == 0 {
		judgeParseFailures.Inc()
		s.logger.Warn().Str("judge", selection.ID).Msg("judge reply had no parseable score lines")
		s.publish(req.RunID, EventJudgeReplyIgnored, nil)
		return result, nil
	}
	roundsScored.Inc()
	s.publish(req.RunID, EventScores, result.Scores)

	round := NewScoreRound(req.QuestionIndex, req.QuestionText, result.Scores)
	history, err := s.history.Load(ctx, req.RunID)
	if err != nil {
		return result, fmt.Errorf("load score history: %w", err)
	}
	history = append(history, round)
	if err := s.history.Save(ctx, req.RunID, history); err != nil {
		return result, fmt.Errorf("save score history: %w", err)
	}

	result.Round = &round
	result.Totals = ComputeTotals(history)
	result.Standings = standingsFor(result.Totals, req.Config)
	s.publish(req.RunID, EventStandings, result.Standings)
	return result, nil
}

// collectResponses runs every configured contestant against the
// question. A failed contestant call becomes an empty response (the
// judge is instructed to score it 0), never a round failure.
func (s *Service) collectResponses(ctx context.Context, req RoundRequest, result *RoundResult) []SlotResponse {
	var responses []SlotResponse
	for _, slot := range AllSlots {
		modelID := req.Config.SlotModels[slot]
		if modelID == "" {
			continue
		}
		messages := []llm.Message{
			{Role: llm.RoleSystem, Content: ContestantSystemPrompt},
			{Role: llm.RoleUser, Content: req.QuestionText},
		}
		completion, err := s.llm.Complete(ctx, modelID, messages, llm.Options{})
		text := ""
		if err != nil {
			s.logger.Warn().Err(err).Str("slot", slot).Str("model", modelID).Msg("contestant call failed")
		} else {
			if DetectLoop(completion.Content) {
				loopDetections.Inc()
				result.LoopsDetected = append(result.LoopsDetected, slot)
				s.publish(req.RunID, EventLoopDetected, slot)
			}
			text = SanitizeContestantResponse(completion.Content)
		}
		result.Answers[slot] = text
		responses = append(responses, SlotResponse{Slot: slot, Text: text})
		s.publish(req.RunID, EventContestantAnswer, map[string]string{"slot": slot, "text": text})
	}
	return responses
}

func (s *Service) selectJudge(ctx context.Context, cfg RunConfig, contestantIDs []string) (JudgeSelection, error) {
	// User choice is re-validated every round; only auto-picks are
	// cached.
	if cfg.JudgeModel == "" {
		if id, ok := s.selCache.Lookup(ctx, contestantIDs); ok {
			return JudgeSelection{ID: id, Fallback: true}, nil
		}
	}
	models, err := s.roster.ListModels(ctx)
	if err != nil {
		return JudgeSelection{}, fmt.Errorf("list models: %w", err)
	}
	selection := PickJudgeModel(cfg.JudgeModel, contestantIDs, models)
	if selection.ID != "" && selection.Fallback {
		s.selCache.Store(ctx, contestantIDs, selection.ID)
	}
	return selection, nil
}

func standingsFor(totals map[string]int, cfg RunConfig) map[string]string {
	// Only configured slots get a standing; unconfigured ones never
	// scored and would otherwise read as tied at zero.
	active := make(map[string]int, len(totals))
	for slot := range cfg.SlotModels {
		if total, ok := totals[slot]; ok && cfg.SlotModels[slot] != "" {
			active[slot] = total
		}
	}
	standings := make(map[string]string, len(AllSlots))
	for _, slot := range AllSlots {
		standings[slot] = StandingLabel(slot, active)
	}
	return standings
}

// Standings recomputes totals and labels from persisted history.
func (s *Service) Standings(ctx context.Context, runID string, cfg RunConfig) (map[string]int, map[string]string, error) {
	history, err := s.history.Load(ctx, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("load score history: %w", err)
	}
	totals := ComputeTotals(history)
	return totals, standingsFor(totals, cfg), nil
}

// History returns the persisted round sequence for a run.
func (s *Service) History(ctx context.Context, runID string) ([]ScoreRound, error) {
	return s.history.Load(ctx, runID)
}

// ResetRun clears a run's persisted history.
func (s *Service) ResetRun(ctx context.Context, runID string) error {
	return s.history.Clear(ctx, runID)
}

// GenerateQuestions asks the judge model to build a question bank
// (the Builder phase). A reply that does not contain a usable JSON
// array returns ErrGenerationFailed.
func (s *Service) GenerateQuestions(ctx context.Context, cfg RunConfig, req GenerationRequest) ([]GeneratedQuestion, error) {
	contestantIDs := cfg.ContestantIDs()
	selection, err := s.selectJudge(ctx, cfg, contestantIDs)
	if err != nil {
		return nil, err
	}
	if selection.ID == "" {
		return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, selection.Error)
	}

	if req.WebContext == "" && cfg.WebSearch && s.search != nil && len(req.Categories) > 0 {
		if webContext, searchErr := s.search.Search(ctx, req.Categories[0]); searchErr == nil {
			req.WebContext = webContext
		}
	}

	reply, err := s.llm.Complete(ctx, selection.ID, BuildQuestionGenerationPrompt(req), llm.Options{})
	if err != nil {
		return nil, fmt.Errorf("question generation call: %w", err)
	}
	set := ParseGeneratedQuestionSet(StripThinkBlocks(reply.Content))
	if set == nil {
		return nil, ErrGenerationFailed
	}
	return NormalizeGeneratedQuestionSet(set), nil
}
