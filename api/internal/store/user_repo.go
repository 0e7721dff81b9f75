package store

import (
	"context"
	"database/sql"
	"fmt"
)

var ErrNotFound = sql.ErrNoRows

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// User — durable per-user record. Registration fields stay NULL until set;
// quota fields belong to the daily submission limit.
type User struct {
	ID             int64
	FullName       sql.NullString
	PhoneNumber    sql.NullString
	Region         sql.NullString
	LastSubmission sql.NullString // UTC calendar date, "2006-01-02"
	Task1Submitted bool
	Task2Submitted bool
}

// Writable registration columns for SetField. Quota columns are mutated only
// through the dedicated quota statements below.
var userColumns = map[string]string{
	"full_name":    `update users set full_name = $1 where user_id = $2`,
	"phone_number": `update users set phone_number = $1 where user_id = $2`,
	"region":       `update users set region = $1 where user_id = $2`,
}

func (r *UserRepo) EnsureSchema(ctx context.Context) error {
	const q = `
create table if not exists users (
    user_id              bigint primary key,
    full_name            text,
    phone_number         text,
    region               text,
    last_submission_date text,
    task1_submitted      boolean default false,
    task2_submitted      boolean default false
)`
	_, err := r.DB.ExecContext(ctx, q)
	return err
}

// CreateIfAbsent inserts an empty row for the user; safe to call on every
// first contact, concurrent calls for the same id leave exactly one row.
func (r *UserRepo) CreateIfAbsent(ctx context.Context, userID int64) error {
	const q = `insert into users (user_id) values ($1) on conflict (user_id) do nothing`
	_, err := r.DB.ExecContext(ctx, q, userID)
	return err
}

// SetField updates exactly one registration column.
func (r *UserRepo) SetField(ctx context.Context, userID int64, field, value string) error {
	q, ok := userColumns[field]
	if !ok {
		return fmt.Errorf("store: unknown user field %q", field)
	}
	res, err := r.DB.ExecContext(ctx, q, value, userID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID int64) (*User, error) {
	const q = `
select user_id, full_name, phone_number, region,
       last_submission_date, task1_submitted, task2_submitted
from users where user_id = $1`
	var u User
	err := r.DB.QueryRowContext(ctx, q, userID).Scan(
		&u.ID, &u.FullName, &u.PhoneNumber, &u.Region,
		&u.LastSubmission, &u.Task1Submitted, &u.Task2Submitted,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ResetQuotaIfStale moves the user onto today's quota window in one atomic
// statement: when the stored date is unset or earlier than today, both
// task flags are cleared and the date is set. ISO dates compare as strings.
func (r *UserRepo) ResetQuotaIfStale(ctx context.Context, userID int64, today string) error {
	const q = `
update users
set last_submission_date = $1, task1_submitted = false, task2_submitted = false
where user_id = $2
  and (last_submission_date is null or last_submission_date < $1)`
	_, err := r.DB.ExecContext(ctx, q, today, userID)
	return err
}

func (r *UserRepo) MarkTask1Submitted(ctx context.Context, userID int64) error {
	return r.markSubmitted(ctx, `update users set task1_submitted = true where user_id = $1`, userID)
}

func (r *UserRepo) MarkTask2Submitted(ctx context.Context, userID int64) error {
	return r.markSubmitted(ctx, `update users set task2_submitted = true where user_id = $1`, userID)
}

func (r *UserRepo) markSubmitted(ctx context.Context, q string, userID int64) error {
	res, err := r.DB.ExecContext(ctx, q, userID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}
	return nil
}
