package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"contesthub/internal/access"
	apperrors "contesthub/internal/errors"
	"contesthub/internal/metrics"
	"contesthub/internal/model"
	"contesthub/internal/repository"
)

// categoryAll is the listing sentinel meaning "no category filter".
const categoryAll = "All"

// ContestService is the contest lifecycle: approval, registration, submissions and
// winner declaration.
type ContestService interface {
	Create(ctx context.Context, caller access.Caller, in model.ContestContent) (*model.Contest, error)
	List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error)
	Participated(ctx context.Context, caller access.Caller) ([]model.Contest, error)
	Won(ctx context.Context, caller access.Caller) ([]model.Contest, error)
	Get(ctx context.Context, id string) (*model.Contest, error)
	Edit(ctx context.Context, caller access.Caller, id string, in model.ContestContent) (*model.Contest, error)
	UpdateFields(ctx context.Context, caller access.Caller, id string, patch model.ContestPatch) (*model.Contest, error)
	Delete(ctx context.Context, caller access.Caller, id string) error
	SetStatus(ctx context.Context, caller access.Caller, id, status string) (*model.Contest, error)
	Register(ctx context.Context, caller access.Caller, id string) (*model.Contest, error)
	SubmitTask(ctx context.Context, caller access.Caller, id, submission string) (*model.Contest, error)
	DeclareWinner(ctx context.Context, caller access.Caller, id, winnerEmail string) (*model.Contest, error)
	Submissions(ctx context.Context, caller access.Caller, id string) ([]model.SubmissionView, error)
}

type contestService struct {
	contests repository.ContestRepository
	users    repository.UserRepository
	metrics  metrics.Recorder
	log      *logrus.Entry
	now      func() time.Time

	// creatorLocks serializes the quota count-then-insert per creator.
	creatorLocks sync.Map
}

// NewContestService builds the contest lifecycle service.
func NewContestService(
	contests repository.ContestRepository,
	users repository.UserRepository,
	recorder metrics.Recorder,
	log *logrus.Entry,
) ContestService {
	return &contestService{
		contests: contests,
		users:    users,
		metrics:  recorder,
		log:      log,
		now:      time.Now,
	}
}

func (s *contestService) getMutex(email string) *sync.Mutex {
	value, _ := s.creatorLocks.LoadOrStore(email, &sync.Mutex{})
	return value.(*sync.Mutex)
}

func parseContestID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperrors.ErrInvalidContestID
	}
	return nil
}

// load fetches a contest after validating its id.
func (s *contestService) load(ctx context.Context, id string) (*model.Contest, error) {
	if err := parseContestID(id); err != nil {
		return nil, err
	}
	contest, err := s.contests.FindByID(ctx, id)
	if err != nil {
		return nil, contestError("find contest", err)
	}
	return contest, nil
}

// Create persists a pending contest if the creator is still under quota.
func (s *contestService) Create(ctx context.Context, caller access.Caller, in model.ContestContent) (*model.Contest, error) {
	if err := access.Permit(access.OpCreateContest, caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	email := model.NormalizeEmail(caller.Email)

	mutex := s.getMutex(email)
	mutex.Lock()
	defer mutex.Unlock()

	creator, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, userError("find creator", err)
	}
	owned, err := s.contests.CountByCreator(ctx, email)
	if err != nil {
		return nil, storeFailure("count contests", err)
	}
	if owned >= int64(creator.ContestLimit) {
		return nil, apperrors.QuotaExceeded(creator.ContestLimit)
	}

	now := s.now()
	contest := &model.Contest{
		CreatorEmail: email,
		Status:       model.ContestStatusPending,
		IsActive:     true,
		EndDate:      now.Add(model.DefaultContestDuration),
		Participants: []string{},
		Submissions:  []model.Submission{},
	}
	applyContent(contest, in)
	if err := s.contests.Create(ctx, contest); err != nil {
		return nil, storeFailure("create contest", err)
	}

	s.metrics.Record(metrics.EventContestCreated)
	s.log.WithFields(logrus.Fields{"contest_id": contest.ID, "creator": email}).Info("contest created")
	return contest, nil
}

func applyContent(c *model.Contest, in model.ContestContent) {
	c.Title = strings.TrimSpace(in.Title)
	c.Description = in.Description
	c.Category = in.Category
	c.Image = in.Image
	c.Price = in.Price
	c.PrizeMoney = in.PrizeMoney
	c.TaskInstruction = in.TaskInstruction
	if in.EndDate != nil {
		c.EndDate = *in.EndDate
	}
}

func (s *contestService) List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error) {
	filter.CreatorEmail = model.NormalizeEmail(filter.CreatorEmail)
	filter.Category = strings.TrimSpace(filter.Category)
	if strings.EqualFold(filter.Category, categoryAll) {
		filter.Category = ""
	}
	filter.Search = strings.TrimSpace(filter.Search)

	contests, err := s.contests.List(ctx, filter)
	if err != nil {
		return nil, storeFailure("list contests", err)
	}
	return contests, nil
}

// Participated lists the contests the caller joined.
func (s *contestService) Participated(ctx context.Context, caller access.Caller) ([]model.Contest, error) {
	if err := access.Permit(access.OpListParticipated, caller); err != nil {
		return nil, err
	}
	return s.List(ctx, model.ContestFilter{Participant: model.NormalizeEmail(caller.Email)})
}

// Won lists the contests where the caller holds a winning submission.
func (s *contestService) Won(ctx context.Context, caller access.Caller) ([]model.Contest, error) {
	if err := access.Permit(access.OpListWon, caller); err != nil {
		return nil, err
	}
	return s.List(ctx, model.ContestFilter{Winner: model.NormalizeEmail(caller.Email)})
}

func (s *contestService) Get(ctx context.Context, id string) (*model.Contest, error) {
	return s.load(ctx, id)
}

// Edit overwrites the creator-supplied content of a pending contest the caller owns.
// Ownership, status and the embedded participant and submission lists are kept.
func (s *contestService) Edit(ctx context.Context, caller access.Caller, id string, in model.ContestContent) (*model.Contest, error) {
	contest, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(access.OpEditContest, caller, contest); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.InvalidInput("title is required")
	}

	applyContent(contest, in)
	if err := s.contests.ReplaceContent(ctx, contest); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// Confirmed, rejected or reassigned since it was loaded.
			return nil, apperrors.ErrForbidden
		}
		return nil, contestError("replace contest", err)
	}
	return s.load(ctx, id)
}

// UpdateFields applies an allow-listed partial update at any status.
func (s *contestService) UpdateFields(ctx context.Context, caller access.Caller, id string, patch model.ContestPatch) (*model.Contest, error) {
	contest, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(access.OpUpdateContestFields, caller, contest); err != nil {
		return nil, err
	}
	if patch.Empty() {
		return nil, apperrors.InvalidInput("no updatable fields supplied")
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, apperrors.InvalidInput("title cannot be empty")
	}

	if err := s.contests.ApplyPatch(ctx, id, patch); err != nil {
		return nil, contestError("patch contest", err)
	}
	return s.load(ctx, id)
}

// Delete removes a contest: admins unconditionally, owners only while pending.
func (s *contestService) Delete(ctx context.Context, caller access.Caller, id string) error {
	contest, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := access.Authorize(access.OpDeleteContest, caller, contest); err != nil {
		return err
	}
	if err := s.contests.Delete(ctx, id); err != nil {
		return contestError("delete contest", err)
	}

	s.metrics.Record(metrics.EventContestDeleted)
	s.log.WithFields(logrus.Fields{"contest_id": id, "by": caller.Email, "role": caller.Role}).Info("contest deleted")
	return nil
}

// SetStatus confirms or rejects a pending contest. Decided contests stay decided.
func (s *contestService) SetStatus(ctx context.Context, caller access.Caller, id, status string) (*model.Contest, error) {
	if err := access.Permit(access.OpSetStatus, caller); err != nil {
		return nil, err
	}
	next := model.ContestStatus(strings.ToLower(strings.TrimSpace(status)))
	if next != model.ContestStatusConfirmed && next != model.ContestStatusRejected {
		return nil, apperrors.ErrInvalidStatus
	}
	if err := parseContestID(id); err != nil {
		return nil, err
	}

	err := s.contests.TransitionStatus(ctx, id, model.ContestStatusPending, next)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperrors.ErrStatusDecided
	}
	if err != nil {
		return nil, contestError("set status", err)
	}

	s.metrics.Record(metrics.EventStatusChanged)
	s.log.WithFields(logrus.Fields{"contest_id": id, "status": next}).Info("contest status changed")
	return s.load(ctx, id)
}

// Register adds the caller to the contest's participant set.
func (s *contestService) Register(ctx context.Context, caller access.Caller, id string) (*model.Contest, error) {
	if err := access.Permit(access.OpRegister, caller); err != nil {
		return nil, err
	}
	if err := parseContestID(id); err != nil {
		return nil, err
	}

	err := s.contests.AddParticipant(ctx, id, model.NormalizeEmail(caller.Email))
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, apperrors.ErrAlreadyRegistered
	}
	if err != nil {
		return nil, contestError("add participant", err)
	}

	s.metrics.Record(metrics.EventParticipantAdded)
	return s.load(ctx, id)
}

// SubmitTask appends a submission from a registered participant. Submissions are
// accepted at any status and after the end date.
func (s *contestService) SubmitTask(ctx context.Context, caller access.Caller, id, submission string) (*model.Contest, error) {
	if err := access.Permit(access.OpSubmitTask, caller); err != nil {
		return nil, err
	}
	contest, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	email := model.NormalizeEmail(caller.Email)
	if !contest.HasParticipant(email) {
		return nil, apperrors.ErrNotParticipant
	}
	if strings.TrimSpace(submission) == "" {
		return nil, apperrors.ErrEmptySubmission
	}

	entry := &model.Submission{
		Email:       email,
		Submission:  submission,
		SubmittedAt: s.now(),
	}
	if user, err := s.users.FindByEmail(ctx, email); err == nil {
		entry.Name = user.Name
	}
	if err := s.contests.AddSubmission(ctx, id, entry); err != nil {
		return nil, contestError("add submission", err)
	}

	s.metrics.Record(metrics.EventTaskSubmitted)
	return s.load(ctx, id)
}

// DeclareWinner flags every submission of winnerEmail. A contest has at most one winner.
func (s *contestService) DeclareWinner(ctx context.Context, caller access.Caller, id, winnerEmail string) (*model.Contest, error) {
	winner := model.NormalizeEmail(winnerEmail)
	if winner == "" {
		return nil, apperrors.ErrMissingWinner
	}
	contest, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(access.OpDeclareWinner, caller, contest); err != nil {
		return nil, err
	}
	if contest.HasWinner() {
		return nil, apperrors.ErrWinnerDeclared
	}

	flagged, err := s.contests.DeclareWinner(ctx, id, winner)
	if errors.Is(err, repository.ErrConflict) {
		return nil, apperrors.ErrWinnerDeclared
	}
	if err != nil {
		return nil, contestError("declare winner", err)
	}
	if flagged == 0 {
		return nil, apperrors.ErrNoSubmissions
	}

	s.metrics.Record(metrics.EventWinnerDeclared)
	s.log.WithFields(logrus.Fields{"contest_id": id, "winner": winner}).Info("winner declared")
	return s.load(ctx, id)
}

// Submissions lists the entries of a contest for its owner.
func (s *contestService) Submissions(ctx context.Context, caller access.Caller, id string) ([]model.SubmissionView, error) {
	contest, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(access.OpListSubmissions, caller, contest); err != nil {
		return nil, err
	}

	views := make([]model.SubmissionView, 0, len(contest.Submissions))
	for _, sub := range contest.Submissions {
		name := sub.Name
		if name == "" {
			name = "Anonymous"
		}
		views = append(views, model.SubmissionView{
			ParticipantName:  name,
			ParticipantEmail: sub.Email,
			Submission:       sub.Submission,
			SubmittedAt:      sub.SubmittedAt,
			IsWinner:         sub.Status == model.SubmissionWinner,
		})
	}
	return views, nil
}
