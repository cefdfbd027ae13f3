package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var JudgeRequestCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "oasis_judge_requests_total",
	Help: "The total number of requests sent to the judge service",
})

var JudgeErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "oasis_judge_errors_total",
	Help: "Number of failed judge service calls",
})

var JudgeRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "oasis_judge_request_duration_seconds",
	Help: "Duration of requests to the judge service",
})

var SubmissionsGradedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "oasis_submissions_graded_total",
	Help: "Number of graded submissions by outcome",
}, []string{"status"})

var ChallengesAwardedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "oasis_challenges_awarded_total",
	Help: "Number of award transitions that granted points",
})

var SubmissionEventsPublished = promauto.NewCounter(prometheus.CounterOpts{
	Name: "oasis_submission_events_published_total",
	Help: "Number of submission events written to kafka",
})
