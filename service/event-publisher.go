package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"oasis/config"
	"oasis/metrics"
	"oasis/repository"

	"github.com/segmentio/kafka-go"
)

type SubmissionEvent struct {
	SubmissionId int       `json:"submission_id"`
	TeamId       int       `json:"team_id"`
	ChallengeId  int       `json:"challenge_id"`
	Type         string    `json:"type"`
	Status       string    `json:"status"`
	Points       int       `json:"points"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// SubmissionPublisher streams submission events to kafka for downstream
// analytics. Publishing is best effort: with no broker configured the
// publisher is inert, and write failures are logged, never surfaced to the
// competitor request.
type SubmissionPublisher struct {
	writer *kafka.Writer
}

func NewSubmissionPublisher() *SubmissionPublisher {
	writer, err := config.GetSubmissionWriter()
	if err != nil {
		log.Printf("submission events disabled: %v", err)
		return &SubmissionPublisher{}
	}
	return &SubmissionPublisher{writer: writer}
}

func (p *SubmissionPublisher) Publish(submission *repository.Submission) {
	if p == nil || p.writer == nil {
		return
	}
	event := SubmissionEvent{
		SubmissionId: submission.Id,
		TeamId:       submission.TeamId,
		ChallengeId:  submission.ChallengeId,
		Type:         submission.Type,
		Status:       submission.Status,
		Points:       submission.Points,
		SubmittedAt:  submission.SubmittedAt,
	}
	value, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to serialize submission event: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(fmt.Sprintf("%d", submission.TeamId)),
		Value: value,
	})
	if err != nil {
		log.Printf("failed to publish submission event: %v", err)
		return
	}
	metrics.SubmissionEventsPublished.Inc()
}
