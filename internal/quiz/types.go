package quiz

import (
	"time"

	"github.com/lernquiz/backend/internal/question"
)

// Session status. A session is created in StatusPending with review questions
// only and flips to StatusReady when the background fill has merged the
// freshly generated questions.
const (
	StatusPending = "pending"
	StatusReady   = "ready"
)

// Allowed values for the requested total question count.
var allowedTotals = map[int]bool{25: true, 50: true, 75: true, 100: true}

// Stats holds per-session answer counters. QuestionAttempts counts
// submissions per question id; a question counts as seen once its entry is
// positive.
type Stats struct {
	Asked            int            `json:"asked"`
	CorrectFirstTry  int            `json:"correctFirstTry"`
	Retries          int            `json:"retries"`
	QuestionAttempts map[string]int `json:"questionAttempts"`
}

// Session is the persisted quiz session document. Questions are immutable
// snapshots, not references to stored questions.
type Session struct {
	ID                   string              `json:"id"`
	Status               string              `json:"status"`
	SummaryText          string              `json:"summaryText,omitempty"`
	Questions            []question.Snapshot `json:"questions"`
	CurrentQuestionIndex int                 `json:"currentQuestionIndex"`
	Stats                Stats               `json:"stats"`
	Completed            bool                `json:"completed"`
	CreatedAt            time.Time           `json:"createdAt"`
	UpdatedAt            time.Time           `json:"updatedAt"`
}

// FindQuestion returns the embedded snapshot with the given id, or nil.
func (s *Session) FindQuestion(id string) *question.Snapshot {
	for i := range s.Questions {
		if s.Questions[i].ID == id {
			return &s.Questions[i]
		}
	}
	return nil
}

// QuestionCounts tallies review vs freshly generated snapshots.
func (s *Session) QuestionCounts() (review, fresh int) {
	for _, q := range s.Questions {
		if q.IsReviewQuestion {
			review++
		} else {
			fresh++
		}
	}
	return review, fresh
}

// UploadedFile is one validated upload.
type UploadedFile struct {
	Filename string
	Content  string
}

// StartRequest carries the validated parameters of a session start.
type StartRequest struct {
	Files          []UploadedFile
	QuestionTypes  []string
	TotalQuestions int
	Difficulty     string
}

// StatusResponse is the background-fill progress view of a session.
type StatusResponse struct {
	IsLoading       bool `json:"isLoading"`
	TotalQuestions  int  `json:"totalQuestions"`
	ReviewQuestions int  `json:"reviewQuestions"`
	NewQuestions    int  `json:"newQuestions"`
}

// AnswerResult is returned for every answer submission.
type AnswerResult struct {
	Correct        bool     `json:"correct"`
	Skipped        bool     `json:"skipped"`
	Explanation    string   `json:"explanation"`
	CorrectAnswer  string   `json:"correctAnswer,omitempty"`
	CorrectOptions []string `json:"correctOptions,omitempty"`
	SourceFile     string   `json:"sourceFile"`
	Topic          string   `json:"topic,omitempty"`
}
