package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrQuestionNotFound is returned when a submitted question id is not part
// of the session.
var ErrQuestionNotFound = errors.New("question not found in session")

// GetSession returns the session document. The caller decides whether to
// expose summaryText.
func (s *Service) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// Status reports background-fill progress for a session.
func (s *Service) Status(ctx context.Context, sessionID string) (StatusResponse, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return StatusResponse{}, err
	}
	review, fresh := session.QuestionCounts()
	return StatusResponse{
		IsLoading:       session.Status == StatusPending,
		TotalQuestions:  len(session.Questions),
		ReviewQuestions: review,
		NewQuestions:    fresh,
	}, nil
}

// SubmitAnswer grades a submission, updates session stats and, for stored
// questions, appends to the usage ledger.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, questionID string, answer []string) (AnswerResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}

	snap := session.FindQuestion(questionID)
	if snap == nil {
		return AnswerResult{}, ErrQuestionNotFound
	}

	grade := s.grader.Grade(ctx, *snap, answer)

	// Grading open questions blocks on the evaluator; the background fill may
	// have replaced the question set in the meantime. Re-read the latest
	// document and apply only the stats update to it.
	latest, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	firstAttempt, attempts := recordAttempt(latest, questionID, grade.Correct)
	latest.UpdatedAt = time.Now().UTC()

	if err := s.sessions.Put(ctx, latest); err != nil {
		return AnswerResult{}, fmt.Errorf("persist session stats: %w", err)
	}

	if snap.StoredQuestionID != "" {
		if err := s.bank.RecordUsage(ctx, sessionID, snap.StoredQuestionID, grade.Correct && firstAttempt, attempts); err != nil {
			// The answer itself succeeded; a ledger failure must not fail
			// the submission.
			s.logger.Error().Err(err).
				Str("session_id", sessionID).
				Str("question_id", questionID).
				Msg("recording usage failed")
		}
	}

	return AnswerResult{
		Correct:        grade.Correct,
		Skipped:        grade.Skipped,
		Explanation:    snap.Explanation,
		CorrectAnswer:  snap.CorrectAnswer,
		CorrectOptions: snap.CorrectOptionIDs(),
		SourceFile:     snap.SourceFile,
		Topic:          snap.Topic,
	}, nil
}

// ProgressUpdate carries optional progress fields; nil fields are unchanged.
type ProgressUpdate struct {
	CurrentQuestionIndex *int
	Completed            *bool
}

// UpdateProgress moves the session cursor and completion flag.
func (s *Service) UpdateProgress(ctx context.Context, sessionID string, update ProgressUpdate) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if update.CurrentQuestionIndex != nil {
		session.CurrentQuestionIndex = *update.CurrentQuestionIndex
	}
	if update.Completed != nil {
		session.Completed = *update.Completed
	}
	session.UpdatedAt = time.Now().UTC()

	return s.sessions.Put(ctx, session)
}

// ReviewPoolStats counts stored questions currently eligible for review.
func (s *Service) ReviewPoolStats(ctx context.Context) (int64, error) {
	return s.bank.ReviewPoolSize(ctx)
}
