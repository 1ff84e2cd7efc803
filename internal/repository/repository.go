package repository

import (
	"context"
	"errors"

	"contesthub/internal/model"
)

var (
	// ErrNotFound is returned when the addressed record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert collides with a unique key.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a conditional write finds the record in the wrong state.
	ErrConflict = errors.New("record state conflict")
	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// UserRepository defines user persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	UpdateProfile(ctx context.Context, email string, patch model.ProfilePatch) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByEmails(ctx context.Context, emails []string) ([]model.User, error)
	List(ctx context.Context) ([]model.User, error)
	SetRole(ctx context.Context, id string, role model.Role) error
	SetPackage(ctx context.Context, email, packageID string, limit int) error
	Ping(ctx context.Context) error
}

// ContestRepository defines contest persistence operations. Participant, submission,
// winner and status writes are targeted single-statement (or single-transaction) updates
// so concurrent writers to the same contest cannot lose each other's changes.
type ContestRepository interface {
	Create(ctx context.Context, contest *model.Contest) error
	FindByID(ctx context.Context, id string) (*model.Contest, error)
	List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error)
	CountByCreator(ctx context.Context, email string) (int64, error)
	ReplaceContent(ctx context.Context, contest *model.Contest) error
	ApplyPatch(ctx context.Context, id string, patch model.ContestPatch) error
	TransitionStatus(ctx context.Context, id string, from, to model.ContestStatus) error
	Delete(ctx context.Context, id string) error
	AddParticipant(ctx context.Context, id, email string) error
	AddSubmission(ctx context.Context, id string, submission *model.Submission) error
	// DeclareWinner returns zero when email has no submissions and ErrConflict when a
	// winner already exists.
	DeclareWinner(ctx context.Context, id, email string) (int64, error)
	WinCounts(ctx context.Context) ([]model.WinCount, error)
}
