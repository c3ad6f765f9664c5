package quiz

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/lernquiz/backend/internal/db/repository"
	"github.com/lernquiz/backend/internal/metrics"
	"github.com/lernquiz/backend/internal/question"
	"github.com/lernquiz/backend/internal/question/ai"
	"github.com/lernquiz/backend/pkg/http/ws"
)

// sessionStore is the persisted session document store.
type sessionStore interface {
	Put(ctx context.Context, session *Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// questionBank is the stored-question side of the question service.
type questionBank interface {
	SelectReviewQuestions(ctx context.Context, limit int) ([]question.Snapshot, error)
	StoreGenerated(ctx context.Context, sd question.StoredDraft) (question.Snapshot, error)
	RecordUsage(ctx context.Context, sessionID, storedQuestionID string, wasCorrectFirstTry bool, attempts int) error
	ReviewPoolSize(ctx context.Context) (int64, error)
}

// generator produces question drafts from source text.
type generator interface {
	GenerateQuestions(ctx context.Context, req ai.GenerateRequest) ([]question.Draft, error)
}

// topicExtractor names the subject of a document.
type topicExtractor interface {
	ExtractTopic(ctx context.Context, text, filename string) (ai.TopicResult, error)
}

// notifier pushes session status updates to websocket subscribers.
type notifier interface {
	BroadcastToSession(sessionID string, msg ws.Message) error
}

// Service composes quiz sessions: the fast review-only path, the background
// fill with freshly generated questions, answer grading and progress updates.
type Service struct {
	sessions  sessionStore
	bank      questionBank
	grader    *Grader
	documents *repository.DocumentRepository
	topics    *repository.TopicRepository
	generator generator
	extractor topicExtractor
	hub       notifier
	logger    zerolog.Logger
}

// NewService creates the session composer.
func NewService(
	sessions sessionStore,
	bank questionBank,
	grader *Grader,
	documents *repository.DocumentRepository,
	topics *repository.TopicRepository,
	gen generator,
	extractor topicExtractor,
	hub notifier,
	logger zerolog.Logger,
) *Service {
	return &Service{
		sessions:  sessions,
		bank:      bank,
		grader:    grader,
		documents: documents,
		topics:    topics,
		generator: gen,
		extractor: extractor,
		hub:       hub,
		logger:    logger.With().Str("component", "session_composer").Logger(),
	}
}

// StartSession creates a session containing only review questions and returns
// immediately; fresh questions are generated and merged in the background so
// the caller can start answering right away.
func (s *Service) StartSession(ctx context.Context, req StartRequest) (sessionID, message string, err error) {
	if err := validateStartRequest(req); err != nil {
		return "", "", err
	}

	reviewTarget := req.TotalQuestions / 2
	review, err := s.bank.SelectReviewQuestions(ctx, reviewTarget)
	if err != nil {
		return "", "", fmt.Errorf("select review questions: %w", err)
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Questions: review,
		Stats:     Stats{QuestionAttempts: make(map[string]int)},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Put(ctx, session); err != nil {
		return "", "", fmt.Errorf("create session: %w", err)
	}

	metrics.SessionsStarted.Inc()
	metrics.ReviewQuestionsServed.Add(float64(len(review)))

	// Detached from the request context: the fill outlives the response and
	// is never cancelled.
	go s.backgroundFill(context.Background(), session.ID, req, len(review))

	message = fmt.Sprintf("quiz started with %d review questions, new questions are being generated", len(review))
	return session.ID, message, nil
}

// backgroundFill generates questions per uploaded file, then replaces the
// session's questions and summary in one read-modify-write that preserves
// stats and progress written by concurrent answer submissions. A generation
// failure leaves the session in its review-only state.
func (s *Service) backgroundFill(ctx context.Context, sessionID string, req StartRequest, reviewCount int) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Interface("panic", r).Str("session_id", sessionID).Msg("background fill panicked")
		}
	}()

	perFile := (req.TotalQuestions + len(req.Files) - 1) / len(req.Files)

	var (
		fresh    []question.Snapshot
		summary  strings.Builder
		failures int
	)
	for _, file := range req.Files {
		snaps, err := s.processFile(ctx, req, file, perFile)
		if err != nil {
			failures++
			metrics.GenerationFailures.Inc()
			s.logger.Error().Err(err).
				Str("session_id", sessionID).
				Str("filename", file.Filename).
				Msg("file processing failed")
			continue
		}
		fresh = append(fresh, snaps...)
		summary.WriteString(file.Content)
		summary.WriteString("\n\n")
	}

	if len(fresh) == 0 && failures > 0 {
		s.logger.Warn().Str("session_id", sessionID).Msg("no questions generated, session stays review-only")
		return
	}

	// Never exceed the requested total.
	if budget := req.TotalQuestions - reviewCount; len(fresh) > budget {
		fresh = fresh[:budget]
	}
	metrics.QuestionsGenerated.Add(float64(len(fresh)))

	// Re-read the latest session state so concurrent answer submissions keep
	// their stats and progress; only questions, summary and status are
	// replaced here.
	latest, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("reload session for merge failed")
		return
	}

	combined := make([]question.Snapshot, 0, len(latest.Questions)+len(fresh))
	combined = append(combined, latest.Questions...)
	combined = append(combined, fresh...)
	rand.Shuffle(len(combined), func(i, j int) {
		combined[i], combined[j] = combined[j], combined[i]
	})

	latest.Questions = combined
	latest.SummaryText = summary.String()
	latest.Status = StatusReady
	latest.UpdatedAt = time.Now().UTC()

	if err := s.sessions.Put(ctx, latest); err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("persist filled session failed")
		return
	}

	s.logger.Info().
		Str("session_id", sessionID).
		Int("review", reviewCount).
		Int("fresh", len(fresh)).
		Msg("background fill complete")

	s.notifyStatus(sessionID, latest)
}

// processFile stores the document, resolves its topic and generates questions
// for it.
func (s *Service) processFile(ctx context.Context, req StartRequest, file UploadedFile, count int) ([]question.Snapshot, error) {
	doc, err := s.documents.Upsert(ctx, file.Filename, file.Content)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	topicName, topicID := s.resolveTopic(ctx, file)
	difficulty := resolveDifficulty(req.Difficulty)

	drafts, err := s.generator.GenerateQuestions(ctx, ai.GenerateRequest{
		SourceText: file.Content,
		Types:      req.QuestionTypes,
		Count:      count,
		Difficulty: difficulty,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}

	accepted := question.FilterDrafts(drafts, req.QuestionTypes)
	snapshots := make([]question.Snapshot, 0, len(accepted))
	for _, draft := range accepted {
		snap, err := s.bank.StoreGenerated(ctx, question.StoredDraft{
			Draft:      draft,
			DocumentID: doc.DocumentID,
			TopicID:    topicID,
			TopicName:  topicName,
			SourceFile: file.Filename,
			Difficulty: difficulty,
		})
		if err != nil {
			// Still serve the question this once; it just never enters the
			// review pool.
			s.logger.Warn().Err(err).Str("filename", file.Filename).Msg("storing question failed, serving ephemeral copy")
			snap = question.EphemeralSnapshot(draft, difficulty, topicName, file.Filename)
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// resolveTopic extracts a topic via the AI collaborator with a
// filename-derived fallback, then get-or-creates the topic record.
func (s *Service) resolveTopic(ctx context.Context, file UploadedFile) (string, pgtype.UUID) {
	name := topicNameFromFilename(file.Filename)
	description := ""
	if s.extractor != nil {
		if extracted, err := s.extractor.ExtractTopic(ctx, file.Content, file.Filename); err == nil {
			name = extracted.Name
			description = extracted.Description
		} else {
			s.logger.Warn().Err(err).Str("filename", file.Filename).Msg("topic extraction failed, using filename")
		}
	}

	topic, err := s.topics.GetOrCreate(ctx, name, description)
	if err != nil {
		s.logger.Warn().Err(err).Str("topic", name).Msg("topic lookup failed")
		return name, pgtype.UUID{}
	}
	return topic.Name, topic.TopicID
}

func (s *Service) notifyStatus(sessionID string, session *Session) {
	if s.hub == nil {
		return
	}
	review, fresh := session.QuestionCounts()
	err := s.hub.BroadcastToSession(sessionID, ws.Message{
		Type: ws.TypeSessionStatus,
		Data: StatusResponse{
			IsLoading:       session.Status == StatusPending,
			TotalQuestions:  len(session.Questions),
			ReviewQuestions: review,
			NewQuestions:    fresh,
		},
	})
	if err != nil {
		s.logger.Debug().Err(err).Str("session_id", sessionID).Msg("status broadcast failed")
	}
}

func validateStartRequest(req StartRequest) error {
	if len(req.Files) == 0 {
		return fmt.Errorf("no files uploaded")
	}
	if len(req.QuestionTypes) == 0 {
		return fmt.Errorf("no question types selected")
	}
	for _, t := range req.QuestionTypes {
		if !question.IsValidType(t) {
			return fmt.Errorf("unknown question type %q", t)
		}
	}
	if !allowedTotals[req.TotalQuestions] {
		return fmt.Errorf("unsupported total question count %d", req.TotalQuestions)
	}
	switch req.Difficulty {
	case question.DifficultyBasic, question.DifficultyProfi, question.DifficultyRandom:
	default:
		return fmt.Errorf("unknown difficulty %q", req.Difficulty)
	}
	return nil
}

func resolveDifficulty(difficulty string) string {
	if difficulty != question.DifficultyRandom {
		return difficulty
	}
	if rand.Intn(2) == 0 {
		return question.DifficultyBasic
	}
	return question.DifficultyProfi
}

func topicNameFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	if base = strings.TrimSpace(base); base != "" {
		return base
	}
	return filename
}
