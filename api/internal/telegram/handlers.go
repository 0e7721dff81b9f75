package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ielts-bot/api/internal/quota"
	"ielts-bot/api/internal/resolve"
)

func (r *Router) handleCommand(cid, uid int64, s *session, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		r.startRegistration(cid, uid, s)
	case "cancel":
		s.reset()
		r.sendWithMarkup(cid, "❌ Cancelled.", tgbotapi.NewRemoveKeyboard(false))
	case "health":
		r.send(cid, "✅ OK")
	default:
		r.send(cid, "Unknown command. Use /start to register or /cancel to stop.")
	}
}

// startRegistration is the entry point for any first contact. Creating the
// row here is idempotent, so /start on an already-registered user keeps the
// stored fields and simply walks the flow again.
func (r *Router) startRegistration(cid, uid int64, s *session) {
	if err := r.Users.CreateIfAbsent(context.Background(), uid); err != nil {
		r.fail(cid, s, err)
		return
	}
	s.reset()
	s.stage = StageAwaitName
	r.send(cid, msgWelcome)
}

func (r *Router) handleName(cid, uid int64, s *session, msg *tgbotapi.Message) {
	name := strings.TrimSpace(msg.Text)
	if name == "" {
		r.send(cid, "Please send your full name as text.")
		return
	}
	if err := r.Users.SetField(context.Background(), uid, "full_name", name); err != nil {
		r.fail(cid, s, err)
		return
	}
	s.stage = StageAwaitPhone
	r.sendWithMarkup(cid, "📞 Please share your phone number:", contactKeyboard())
}

func (r *Router) handlePhone(cid, uid int64, s *session, msg *tgbotapi.Message) {
	var phone string
	if msg.Contact != nil {
		phone = msg.Contact.PhoneNumber
	} else {
		phone = strings.TrimSpace(msg.Text)
	}
	if len(phone) < 6 {
		r.send(cid, "⚠️ Phone number seems invalid. Please try again.")
		return
	}
	if err := r.Users.SetField(context.Background(), uid, "phone_number", phone); err != nil {
		r.fail(cid, s, err)
		return
	}
	s.stage = StageAwaitRegion
	r.sendWithMarkup(cid, "🌍 Which region are you from:", regionKeyboard())
}

func (r *Router) handleRegion(cid, uid int64, s *session, msg *tgbotapi.Message) {
	region := strings.TrimSpace(msg.Text)
	if !validRegion(region) {
		r.send(cid, "❌ Please choose from the list.")
		return
	}
	if err := r.Users.SetField(context.Background(), uid, "region", region); err != nil {
		r.fail(cid, s, err)
		return
	}
	s.stage = StageIdle
	r.sendWithMarkup(cid, "✅ Registration complete! Choose your task:", taskKeyboard())
}

func (r *Router) handleIdle(cid, uid int64, s *session, msg *tgbotapi.Message) {
	task, ok := quota.ParseTask(strings.TrimSpace(msg.Text))
	if !ok {
		r.sendWithMarkup(cid, "Choose Task 1 or Task 2, or use /start to register.", taskKeyboard())
		return
	}
	r.startTask(cid, uid, s, task)
}

func (r *Router) startTask(cid, uid int64, s *session, task quota.Task) {
	allowed, err := r.Quota.CanSubmit(context.Background(), uid, task)
	if err != nil {
		r.fail(cid, s, err)
		return
	}
	if !allowed {
		r.sendWithMarkup(cid, msgQuotaDenied, tgbotapi.NewRemoveKeyboard(false))
		return
	}
	s.task = task
	s.stage = StageAwaitQuestion
	r.sendWithMarkup(cid, "📷 Please send your task question (text or image):", tgbotapi.NewRemoveKeyboard(false))
}

func (r *Router) handleQuestion(cid int64, s *session, msg *tgbotapi.Message) {
	// Question photos are not transcribed: the sentinel stands in for the
	// prompt, only the answer text matters for scoring.
	if len(msg.Photo) > 0 {
		s.question = imageQuestion
		s.stage = StageAwaitAnswer
		r.send(cid, "✅ Question image received. Now send your answer:")
		return
	}
	text, err := r.Resolver.Resolve(context.Background(), resolve.TextInput(msg.Text))
	if err != nil {
		r.send(cid, "❌ Could not read the question. Please try again.")
		return
	}
	s.question = text
	s.stage = StageAwaitAnswer
	r.send(cid, "✅ Question received. Now send your answer:")
}

func (r *Router) handleAnswer(cid int64, s *session, msg *tgbotapi.Message) {
	var in resolve.Input
	if len(msg.Photo) > 0 {
		img, err := r.fetchPhoto(msg)
		if err != nil {
			r.Log.Warn("photo fetch failed", zap.Int64("chat_id", cid), zap.Error(err))
			r.send(cid, "❌ Could not read the answer. Please try again.")
			return
		}
		in = resolve.ImageInput(img)
	} else {
		in = resolve.TextInput(msg.Text)
	}

	text, err := r.Resolver.Resolve(context.Background(), in)
	if err != nil {
		if !errors.Is(err, resolve.ErrEmpty) {
			r.Log.Warn("answer resolution failed", zap.Int64("chat_id", cid), zap.Error(err))
		}
		r.send(cid, "❌ Could not read the answer. Please try again.")
		return
	}

	s.answer = text
	s.stage = StageConfirmAnswer
	r.sendWithMarkup(cid, "✏️ Is this your answer?\n\n"+text, confirmAnswerKeyboard())
}
