package services

import (
	"context"

	"embeddingsqna/session"

	"go.uber.org/zap"
)

// AnswerRecorder is told about every answered question. Failures are logged
// and never reach the visitor.
type AnswerRecorder interface {
	RecordAnswer(ctx context.Context, st *session.State) error
}

// QAService drives one ask/answer cycle against a session's state.
type QAService struct {
	recorders []AnswerRecorder
	logger    *zap.Logger
}

func NewQAService(logger *zap.Logger, recorders ...AnswerRecorder) *QAService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QAService{recorders: recorders, logger: logger}
}

// Process answers st.AskedQuestion if there is one and reports whether the
// helper was called. On error AskedQuestion is already cleared and the
// previous answer, context, sources and follow-ups are left as they were.
func (s *QAService) Process(ctx context.Context, h Helper, st *session.State) (bool, error) {
	if st.Phase() == session.Idle {
		return false, nil
	}
	*st = session.Transition(*st, session.Consume{})

	ans, err := h.GetSemanticAnswer(ctx, st.Question, nil)
	if err != nil {
		s.logger.Error("semantic answer failed", zap.String("session", st.ID), zap.String("question", st.Question), zap.Error(err))
		return true, err
	}

	response, followups := h.ExtractFollowupQuestions(ans.Response)
	st.Question = ans.Question
	st.Response = response
	st.Context = ans.Context
	st.Sources = ans.Sources
	st.FollowupQuestions = followups

	for _, r := range s.recorders {
		if err := r.RecordAnswer(ctx, st); err != nil {
			s.logger.Warn("record answer failed", zap.String("session", st.ID), zap.Error(err))
		}
	}
	return true, nil
}

// AnswerQuestion runs a stateless cycle for the JSON API.
func (s *QAService) AnswerQuestion(ctx context.Context, h Helper, question string) (*session.State, error) {
	st := session.New("", 0)
	*st = session.Transition(*st, session.SubmitQuestion{Text: question})
	if _, err := s.Process(ctx, h, st); err != nil {
		return nil, err
	}
	return st, nil
}
