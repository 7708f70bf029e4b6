package services

import (
	"context"
	"encoding/json"
	"time"

	"embeddingsqna/session"

	amqp "github.com/rabbitmq/amqp091-go"
)

type AnsweredEvent struct {
	SessionID         string    `json:"session_id"`
	Question          string    `json:"question"`
	Sources           string    `json:"sources"`
	FollowupQuestions []string  `json:"followup_questions"`
	AnsweredAt        time.Time `json:"answered_at"`
}

// AnswerPublisher puts an AnsweredEvent on a RabbitMQ queue for every answer.
type AnswerPublisher struct {
	ch    *amqp.Channel
	queue string
}

func NewAnswerPublisher(ch *amqp.Channel, queue string) *AnswerPublisher {
	return &AnswerPublisher{ch: ch, queue: queue}
}

func (p *AnswerPublisher) RecordAnswer(ctx context.Context, st *session.State) error {
	body, err := json.Marshal(AnsweredEvent{
		SessionID:         st.ID,
		Question:          st.Question,
		Sources:           st.Sources,
		FollowupQuestions: st.FollowupQuestions,
		AnsweredAt:        time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
