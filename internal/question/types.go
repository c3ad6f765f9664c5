package question

import (
	"fmt"
)

// Question type constants.
const (
	TypeDefinition = "definition"
	TypeCase       = "case"
	TypeAssignment = "assignment"
	TypeOpen       = "open"
)

// Difficulty constants. DifficultyRandom is a request-level value only and is
// resolved to basic or profi before generation.
const (
	DifficultyBasic  = "basic"
	DifficultyProfi  = "profi"
	DifficultyRandom = "random"
)

// ReviewSourceName replaces the original filename on snapshots served from
// the review pool.
const ReviewSourceName = "Wiederholung"

// IsValidType reports whether t is a known question type.
func IsValidType(t string) bool {
	switch t {
	case TypeDefinition, TypeCase, TypeAssignment, TypeOpen:
		return true
	}
	return false
}

// Option is one answer choice of a non-open question.
type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// Snapshot is a denormalized copy of a question embedded in a quiz session.
// Mutating the stored original never changes snapshots in existing sessions.
type Snapshot struct {
	ID               string   `json:"id"`
	StoredQuestionID string   `json:"storedQuestionId,omitempty"`
	Type             string   `json:"type"`
	Text             string   `json:"questionText"`
	Options          []Option `json:"options,omitempty"`
	CorrectAnswer    string   `json:"correctAnswer,omitempty"`
	Explanation      string   `json:"explanation"`
	Difficulty       string   `json:"difficulty"`
	Topic            string   `json:"topic,omitempty"`
	SourceFile       string   `json:"sourceFile"`
	IsReviewQuestion bool     `json:"isReviewQuestion"`

	// Review pool metadata, set only on review snapshots.
	TimesAsked       int  `json:"timesAsked,omitempty"`
	LastCorrect      bool `json:"lastCorrect,omitempty"`
	CorrectRemaining int  `json:"correctRemaining,omitempty"`
}

// CorrectOptionIDs returns the ids of all options marked correct.
func (s Snapshot) CorrectOptionIDs() []string {
	var ids []string
	for _, opt := range s.Options {
		if opt.IsCorrect {
			ids = append(ids, opt.ID)
		}
	}
	return ids
}

// Draft is an untrusted question candidate returned by the generator.
type Draft struct {
	Type          string
	Text          string
	Options       []Option
	CorrectAnswer string
	Explanation   string
}

// FilterDrafts drops drafts the generator was not asked for or that violate
// the question invariants: open drafts need a model answer, all others need
// at least two options with at least one marked correct. Surviving drafts get
// stable option ids assigned.
func FilterDrafts(drafts []Draft, requestedTypes []string) []Draft {
	requested := make(map[string]bool, len(requestedTypes))
	for _, t := range requestedTypes {
		requested[t] = true
	}

	var kept []Draft
	for _, d := range drafts {
		if !requested[d.Type] || d.Text == "" {
			continue
		}
		if d.Type == TypeOpen {
			if d.CorrectAnswer == "" {
				continue
			}
			d.Options = nil
		} else {
			if len(d.Options) < 2 || !hasCorrectOption(d.Options) {
				continue
			}
			d.CorrectAnswer = ""
			for i := range d.Options {
				d.Options[i].ID = optionID(i)
			}
		}
		kept = append(kept, d)
	}
	return kept
}

func hasCorrectOption(opts []Option) bool {
	for _, o := range opts {
		if o.IsCorrect {
			return true
		}
	}
	return false
}

func optionID(i int) string {
	if i < 26 {
		return string(rune('a' + i))
	}
	return fmt.Sprintf("opt%d", i+1)
}
