package quota

import (
	"context"
	"fmt"
	"time"

	"ielts-bot/api/internal/store"
)

// Task is one of the two IELTS writing task types.
type Task int

const (
	Task1 Task = iota + 1
	Task2
)

func (t Task) Label() string {
	switch t {
	case Task1:
		return "Task 1"
	case Task2:
		return "Task 2"
	}
	return "unknown"
}

// ParseTask matches the exact keyboard labels.
func ParseTask(s string) (Task, bool) {
	switch s {
	case "Task 1":
		return Task1, true
	case "Task 2":
		return Task2, true
	}
	return 0, false
}

// Gate enforces the one-successful-submission-per-task-per-UTC-day limit.
type Gate struct {
	Users  *store.UserRepo
	Admins map[int64]struct{}

	// Now is overridable in tests; the quota day is its UTC calendar date.
	Now func() time.Time
}

func NewGate(users *store.UserRepo, adminIDs []int64) *Gate {
	admins := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = struct{}{}
	}
	return &Gate{Users: users, Admins: admins, Now: time.Now}
}

func (g *Gate) IsAdmin(userID int64) bool {
	_, ok := g.Admins[userID]
	return ok
}

func (g *Gate) today() string {
	return g.Now().UTC().Format("2006-01-02")
}

// EnsureFreshQuota resets both task flags when the stored submission date is
// unset or belongs to an earlier UTC day. Must run before every quota read so
// the 00:00 UTC reset holds no matter how long the process sat idle.
func (g *Gate) EnsureFreshQuota(ctx context.Context, userID int64) error {
	return g.Users.ResetQuotaIfStale(ctx, userID, g.today())
}

// CanSubmit reports whether the user may submit the given task today.
// Admins always pass without touching the store.
func (g *Gate) CanSubmit(ctx context.Context, userID int64, task Task) (bool, error) {
	if g.IsAdmin(userID) {
		return true, nil
	}
	if err := g.EnsureFreshQuota(ctx, userID); err != nil {
		return false, fmt.Errorf("quota freshen: %w", err)
	}
	u, err := g.Users.Get(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("quota read: %w", err)
	}
	if task == Task2 {
		return !u.Task2Submitted, nil
	}
	return !u.Task1Submitted, nil
}

// MarkSubmitted burns the day's quota for one task type. Callers invoke it
// only after a successful evaluation — a failed evaluation keeps the quota.
func (g *Gate) MarkSubmitted(ctx context.Context, userID int64, task Task) error {
	if task == Task2 {
		return g.Users.MarkTask2Submitted(ctx, userID)
	}
	return g.Users.MarkTask1Submitted(ctx, userID)
}
