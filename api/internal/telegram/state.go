package telegram

import (
	"sync"

	"ielts-bot/api/internal/quota"
)

// Stage is the per-user conversation position. Transitions happen only after
// a stage handler completes; malformed input re-prompts without moving.
type Stage int

const (
	StageIdle Stage = iota
	StageAwaitName
	StageAwaitPhone
	StageAwaitRegion
	StageAwaitQuestion
	StageAwaitAnswer
	StageConfirmAnswer
)

// session holds one user's in-flight draft. It lives only in memory; a
// restart drops drafts but never registered data or quota state.
type session struct {
	mu sync.Mutex

	stage    Stage
	task     quota.Task
	question string
	answer   string
}

// reset discards the draft and returns the user to idle.
func (s *session) reset() {
	s.stage = StageIdle
	s.task = 0
	s.question = ""
	s.answer = ""
}

// session returns the chat's session, creating it on first contact. The
// caller must hold s.mu while handling an update: that mutex is the per-user
// serialization point, so two messages from the same user never interleave
// while different users proceed in parallel.
func (r *Router) session(chatID int64) *session {
	v, _ := r.sessions.LoadOrStore(chatID, &session{})
	return v.(*session)
}
