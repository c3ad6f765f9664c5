package quiz

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/lernquiz/backend/internal/metrics"
	"github.com/lernquiz/backend/internal/question"
)

// Evaluator grades free-text answers (implemented by the OpenAI client).
type Evaluator interface {
	EvaluateAnswer(ctx context.Context, questionText, modelAnswer, submitted string) (bool, error)
}

// GradeResult is the outcome of one submission.
type GradeResult struct {
	Correct bool
	Skipped bool
}

// Grader evaluates submitted answers against a question snapshot.
type Grader struct {
	evaluator Evaluator
	logger    zerolog.Logger
}

// NewGrader creates a grader. evaluator may be nil; open questions then rely
// on the heuristic alone.
func NewGrader(evaluator Evaluator, logger zerolog.Logger) *Grader {
	return &Grader{
		evaluator: evaluator,
		logger:    logger.With().Str("component", "grader").Logger(),
	}
}

// Grade evaluates answer for snap. An empty submission is a skip: never
// correct but still an attempt.
func (g *Grader) Grade(ctx context.Context, snap question.Snapshot, answer []string) GradeResult {
	submitted := normalize(answer)
	if len(submitted) == 0 {
		return GradeResult{Skipped: true}
	}

	if snap.Type == question.TypeOpen {
		return GradeResult{Correct: g.gradeOpen(ctx, snap, strings.Join(submitted, " "))}
	}
	return GradeResult{Correct: sameSet(submitted, snap.CorrectOptionIDs())}
}

func (g *Grader) gradeOpen(ctx context.Context, snap question.Snapshot, submitted string) bool {
	if g.evaluator != nil {
		correct, err := g.evaluator.EvaluateAnswer(ctx, snap.Text, snap.CorrectAnswer, submitted)
		if err == nil {
			return correct
		}
		g.logger.Warn().Err(err).Str("question_id", snap.ID).Msg("evaluator failed, using heuristic")
	}
	metrics.GradingFallbacks.Inc()
	return heuristicOpenGrade(snap.CorrectAnswer, submitted)
}

// heuristicOpenGrade is the lenient fallback when the evaluator is
// unavailable: containment in either direction, or any substantial answer.
func heuristicOpenGrade(modelAnswer, submitted string) bool {
	model := strings.ToLower(strings.TrimSpace(modelAnswer))
	given := strings.ToLower(strings.TrimSpace(submitted))
	if model == "" || given == "" {
		return false
	}
	if strings.Contains(given, model) || strings.Contains(model, given) {
		return true
	}
	return len(given) >= 20
}

// normalize trims entries and drops blanks so that [""] counts as a skip.
func normalize(answer []string) []string {
	var out []string
	for _, a := range answer {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// sameSet reports exact set equality between the submitted option ids and
// the correct option ids, supporting single- and multi-answer questions
// uniformly.
func sameSet(submitted, correct []string) bool {
	if len(correct) == 0 {
		return false
	}
	want := make(map[string]bool, len(correct))
	for _, id := range correct {
		want[id] = true
	}
	got := make(map[string]bool, len(submitted))
	for _, id := range submitted {
		got[id] = true
	}
	if len(got) != len(want) {
		return false
	}
	for id := range want {
		if !got[id] {
			return false
		}
	}
	return true
}
