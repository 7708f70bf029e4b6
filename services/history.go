package services

import (
	"context"

	"embeddingsqna/models"
	"embeddingsqna/session"

	"gorm.io/gorm"
)

// AnswerHistory writes one models.AnswerRecord per answered question.
type AnswerHistory struct {
	db *gorm.DB
}

func NewAnswerHistory(db *gorm.DB) *AnswerHistory {
	return &AnswerHistory{db: db}
}

func (h *AnswerHistory) RecordAnswer(ctx context.Context, st *session.State) error {
	record := models.AnswerRecord{
		SessionID:     st.ID,
		Question:      st.Question,
		Response:      st.Response,
		Sources:       st.Sources,
		FollowupCount: len(st.FollowupQuestions),
	}
	return h.db.WithContext(ctx).Create(&record).Error
}
