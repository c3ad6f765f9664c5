// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernquiz_sessions_started_total",
		Help: "Quiz sessions created.",
	})

	ReviewQuestionsServed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernquiz_review_questions_served_total",
		Help: "Review pool questions placed into new sessions.",
	})

	QuestionsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernquiz_questions_generated_total",
		Help: "Accepted AI-generated questions.",
	})

	GenerationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernquiz_generation_failures_total",
		Help: "Failed question generation calls.",
	})

	GradingFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lernquiz_grading_fallbacks_total",
		Help: "Open-answer gradings that fell back to the heuristic.",
	})
)
