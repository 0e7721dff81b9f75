package telegram

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Hard ceiling for one evaluation round trip, including the orchestrator's
// internal retries.
const evaluateTimeout = 90 * time.Second

func (r *Router) handleCallback(cid, uid int64, s *session, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, "")) // ack

	switch cb.Data {
	case cbConfirmAnswerYes:
		r.onAnswerConfirmed(cid, uid, s, cb.Message.MessageID)
	case cbConfirmAnswerNo:
		r.onAnswerRejected(cid, s, cb.Message.MessageID)
	}
}

func (r *Router) onAnswerConfirmed(cid, uid int64, s *session, msgID int) {
	if s.stage != StageConfirmAnswer {
		r.send(cid, "Confirmation context not found. Choose a task to start over.")
		return
	}

	edit := tgbotapi.NewEditMessageText(cid, msgID, "⏳ Evaluating your writing...")
	if _, err := r.Bot.Send(edit); err != nil {
		r.Log.Warn("edit failed", zap.Int64("chat_id", cid), zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), evaluateTimeout)
	defer cancel()

	result, err := r.Evaluator.Evaluate(ctx, s.task, s.question, s.answer)
	if err == nil {
		// Quota is consumed only on a real evaluation; the apology path
		// leaves today's attempt available.
		if merr := r.Quota.MarkSubmitted(context.Background(), uid, s.task); merr != nil {
			r.Log.Error("mark submitted failed",
				zap.Int64("chat_id", cid),
				zap.String("task", s.task.Label()),
				zap.Error(merr),
			)
		}
	}
	r.send(cid, "🎓 Evaluation Result:\n\n"+result)
	s.reset()
}

func (r *Router) onAnswerRejected(cid int64, s *session, msgID int) {
	if s.stage != StageConfirmAnswer {
		r.send(cid, "Confirmation context not found. Choose a task to start over.")
		return
	}
	edit := tgbotapi.NewEditMessageText(cid, msgID,
		"❌ Please resend your answer or correct it manually:\n\n"+s.answer)
	if _, err := r.Bot.Send(edit); err != nil {
		r.Log.Warn("edit failed", zap.Int64("chat_id", cid), zap.Error(err))
	}
	s.answer = ""
	s.stage = StageAwaitAnswer
}
