package quiz

// recordAttempt applies one submission to the session counters and returns
// whether this was the first attempt at the question plus the attempt
// ordinal. First attempts increment asked (and correctFirstTry when correct);
// every later attempt counts as a retry, and a correct retry never increments
// correctFirstTry.
func recordAttempt(s *Session, questionID string, correct bool) (firstAttempt bool, attempts int) {
	if s.Stats.QuestionAttempts == nil {
		s.Stats.QuestionAttempts = make(map[string]int)
	}

	attempts = s.Stats.QuestionAttempts[questionID] + 1
	s.Stats.QuestionAttempts[questionID] = attempts
	firstAttempt = attempts == 1

	if firstAttempt {
		s.Stats.Asked++
		if correct {
			s.Stats.CorrectFirstTry++
		}
	} else {
		s.Stats.Retries++
	}
	return firstAttempt, attempts
}
