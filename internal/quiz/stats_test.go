package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordAttemptFirstTry(t *testing.T) {
	s := &Session{}

	first, attempts := recordAttempt(s, "q1", true)
	assert.True(t, first)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, s.Stats.Asked)
	assert.Equal(t, 1, s.Stats.CorrectFirstTry)
	assert.Zero(t, s.Stats.Retries)
}

func TestRecordAttemptWrongThenRight(t *testing.T) {
	s := &Session{}

	recordAttempt(s, "q1", false)
	assert.Equal(t, 1, s.Stats.Asked)
	assert.Zero(t, s.Stats.CorrectFirstTry)

	first, attempts := recordAttempt(s, "q1", true)
	assert.False(t, first)
	assert.Equal(t, 2, attempts)

	// the correct retry counts as a retry but never as first-try
	assert.Equal(t, 1, s.Stats.Asked)
	assert.Zero(t, s.Stats.CorrectFirstTry)
	assert.Equal(t, 1, s.Stats.Retries)
}

func TestRecordAttemptRetriesAccumulate(t *testing.T) {
	s := &Session{}

	recordAttempt(s, "q1", false)
	recordAttempt(s, "q1", false)
	recordAttempt(s, "q1", false)

	assert.Equal(t, 1, s.Stats.Asked)
	assert.Equal(t, 2, s.Stats.Retries)
	assert.Equal(t, 3, s.Stats.QuestionAttempts["q1"])
}

func TestRecordAttemptAskedCountsDistinctQuestions(t *testing.T) {
	s := &Session{}

	recordAttempt(s, "q1", false)
	recordAttempt(s, "q2", true)
	recordAttempt(s, "q1", true)
	recordAttempt(s, "q3", false)

	assert.Equal(t, 3, s.Stats.Asked)
	assert.Equal(t, 1, s.Stats.CorrectFirstTry)
}
