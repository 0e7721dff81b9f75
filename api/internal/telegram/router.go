package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"ielts-bot/api/internal/eval"
	"ielts-bot/api/internal/quota"
	"ielts-bot/api/internal/resolve"
	"ielts-bot/api/internal/store"
)

// BotAPI is the slice of *tgbotapi.BotAPI the router actually uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot       BotAPI
	Users     *store.UserRepo
	Quota     *quota.Gate
	Resolver  *resolve.Resolver
	Evaluator *eval.Evaluator
	Log       *zap.Logger

	sessions sync.Map // chatID -> *session
}

// HandleUpdate processes one inbound update under the chat's session lock.
// Run it in its own goroutine per update; the lock keeps a single user's
// transitions linearized without blocking anyone else.
func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	cid, ok := chatIDOf(upd)
	if !ok {
		return
	}
	uid := senderIDOf(upd, cid)
	s := r.session(cid)
	s.mu.Lock()
	defer s.mu.Unlock()

	// One user's failure must never take the process down for the rest.
	defer func() {
		if p := recover(); p != nil {
			r.Log.Error("handler panic", zap.Int64("chat_id", cid), zap.Any("panic", p))
			s.reset()
			r.send(cid, msgGenericFailure)
		}
	}()

	if upd.CallbackQuery != nil {
		r.handleCallback(cid, uid, s, upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message

	if msg.IsCommand() {
		r.handleCommand(cid, uid, s, msg)
		return
	}

	switch s.stage {
	case StageAwaitName:
		r.handleName(cid, uid, s, msg)
	case StageAwaitPhone:
		r.handlePhone(cid, uid, s, msg)
	case StageAwaitRegion:
		r.handleRegion(cid, uid, s, msg)
	case StageAwaitQuestion:
		r.handleQuestion(cid, s, msg)
	case StageAwaitAnswer:
		r.handleAnswer(cid, s, msg)
	case StageConfirmAnswer:
		r.send(cid, "Please answer with the Yes/No buttons above, or /cancel.")
	default:
		r.handleIdle(cid, uid, s, msg)
	}
}

func chatIDOf(upd tgbotapi.Update) (int64, bool) {
	if upd.CallbackQuery != nil && upd.CallbackQuery.Message != nil {
		return upd.CallbackQuery.Message.Chat.ID, true
	}
	if upd.Message != nil {
		return upd.Message.Chat.ID, true
	}
	return 0, false
}

// senderIDOf is the durable user identity: stored fields, quota and the
// admin bypass follow the sender, while the chat ID stays the reply target.
// The two differ in group chats.
func senderIDOf(upd tgbotapi.Update, fallback int64) int64 {
	if upd.CallbackQuery != nil && upd.CallbackQuery.From != nil {
		return upd.CallbackQuery.From.ID
	}
	if upd.Message != nil && upd.Message.From != nil {
		return upd.Message.From.ID
	}
	return fallback
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (r *Router) sendWithMarkup(chatID int64, text string, markup interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	if _, err := r.Bot.Send(msg); err != nil {
		r.Log.Warn("send failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

// fail aborts the current flow after a store error: generic message, log
// entry, back to idle. Per-request fatal only.
func (r *Router) fail(chatID int64, s *session, err error) {
	r.Log.Error("flow aborted", zap.Int64("chat_id", chatID), zap.Error(err))
	s.reset()
	r.send(chatID, msgGenericFailure)
}
