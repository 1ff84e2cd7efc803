package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"contesthub/internal/auth"
	"contesthub/internal/logger"
	"contesthub/internal/model"
	"contesthub/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, email string, patch model.ProfilePatch) error {
	args := m.Called(ctx, email, patch)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmails(ctx context.Context, emails []string) ([]model.User, error) {
	args := m.Called(ctx, emails)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role model.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) SetPackage(ctx context.Context, email, packageID string, limit int) error {
	args := m.Called(ctx, email, packageID, limit)
	return args.Error(0)
}

func (m *MockUserRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockContestRepository is a mock implementation of ContestRepository.
type MockContestRepository struct {
	mock.Mock
}

func (m *MockContestRepository) Create(ctx context.Context, contest *model.Contest) error {
	args := m.Called(ctx, contest)
	return args.Error(0)
}

func (m *MockContestRepository) FindByID(ctx context.Context, id string) (*model.Contest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contest), args.Error(1)
}

func (m *MockContestRepository) List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contest), args.Error(1)
}

func (m *MockContestRepository) CountByCreator(ctx context.Context, email string) (int64, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContestRepository) ReplaceContent(ctx context.Context, contest *model.Contest) error {
	args := m.Called(ctx, contest)
	return args.Error(0)
}

func (m *MockContestRepository) ApplyPatch(ctx context.Context, id string, patch model.ContestPatch) error {
	args := m.Called(ctx, id, patch)
	return args.Error(0)
}

func (m *MockContestRepository) TransitionStatus(ctx context.Context, id string, from, to model.ContestStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockContestRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContestRepository) AddParticipant(ctx context.Context, id, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *MockContestRepository) AddSubmission(ctx context.Context, id string, submission *model.Submission) error {
	args := m.Called(ctx, id, submission)
	return args.Error(0)
}

func (m *MockContestRepository) DeclareWinner(ctx context.Context, id, email string) (int64, error) {
	args := m.Called(ctx, id, email)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContestRepository) WinCounts(ctx context.Context) ([]model.WinCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WinCount), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// MockVerifier is a mock implementation of IdentityVerifier.
type MockVerifier struct {
	mock.Mock
}

func (m *MockVerifier) Verify(ctx context.Context, idToken string) (*auth.FederatedIdentity, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.FederatedIdentity), args.Error(1)
}

// MockProvider is a mock implementation of payments.Provider.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (string, string, error) {
	args := m.Called(ctx, amount, currency, metadata)
	return args.String(0), args.String(1), args.Error(2)
}

// memoryCache is an in-process stand-in for the Redis wrapper.
type memoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// eventCounter records lifecycle events by name.
type eventCounter struct {
	mu     sync.Mutex
	events map[string]int
}

func newEventCounter() *eventCounter {
	return &eventCounter{events: map[string]int{}}
}

func (e *eventCounter) Record(event string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[event]++
}

func (e *eventCounter) count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.events[event]
}

func testLog() *logrus.Entry {
	return logger.Discard()
}

// memoryStore implements both repositories in memory with the same atomicity the real
// stores give: each method is a single critical section.
type memoryStore struct {
	mu       sync.Mutex
	users    map[string]model.User
	contests map[string]*model.Contest
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[string]model.User{}, contests: map[string]*model.Contest{}}
}

func (s *memoryStore) userRepo() repository.UserRepository       { return memoryUsers{s} }
func (s *memoryStore) contestRepo() repository.ContestRepository { return memoryContests{s} }

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	r.s.users[user.Email] = *user
	return nil
}

func (r memoryUsers) UpdateProfile(_ context.Context, email string, patch model.ProfilePatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	patch.Apply(&u)
	r.s.users[email] = u
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r memoryUsers) FindByEmails(_ context.Context, emails []string) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.User
	for _, e := range emails {
		if u, ok := r.s.users[e]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r memoryUsers) List(_ context.Context) ([]model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, u)
	}
	return out, nil
}

func (r memoryUsers) SetRole(_ context.Context, id string, role model.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for email, u := range r.s.users {
		if u.ID == id {
			u.Role = role
			r.s.users[email] = u
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r memoryUsers) SetPackage(_ context.Context, email, packageID string, limit int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[email]
	if !ok {
		return repository.ErrNotFound
	}
	u.PackageID = &packageID
	u.ContestLimit = limit
	r.s.users[email] = u
	return nil
}

func (r memoryUsers) Ping(context.Context) error { return nil }

type memoryContests struct{ s *memoryStore }

func clone(c *model.Contest) *model.Contest {
	out := *c
	out.Participants = append([]string{}, c.Participants...)
	out.Submissions = append([]model.Submission{}, c.Submissions...)
	return &out
}

func (r memoryContests) Create(_ context.Context, contest *model.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if contest.ID == "" {
		contest.ID = uuid.NewString()
	}
	r.s.contests[contest.ID] = clone(contest)
	return nil
}

func (r memoryContests) FindByID(_ context.Context, id string) (*model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (r memoryContests) List(_ context.Context, filter model.ContestFilter) ([]model.Contest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []model.Contest
	for _, c := range r.s.contests {
		if filter.Participant != "" && !c.HasParticipant(filter.Participant) {
			continue
		}
		if filter.CreatorEmail != "" && c.CreatorEmail != filter.CreatorEmail {
			continue
		}
		if filter.Winner != "" && !wonBy(c, filter.Winner) {
			continue
		}
		out = append(out, *clone(c))
	}
	return out, nil
}

func (r memoryContests) CountByCreator(_ context.Context, email string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, c := range r.s.contests {
		if c.CreatorEmail == email {
			n++
		}
	}
	return n, nil
}

func (r memoryContests) ReplaceContent(_ context.Context, contest *model.Contest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[contest.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Status != model.ContestStatusPending || c.CreatorEmail != contest.CreatorEmail {
		return repository.ErrConflict
	}
	c.Title, c.Description, c.Category = contest.Title, contest.Description, contest.Category
	c.Image, c.Price, c.PrizeMoney = contest.Image, contest.Price, contest.PrizeMoney
	c.TaskInstruction, c.EndDate = contest.TaskInstruction, contest.EndDate
	return nil
}

func (r memoryContests) ApplyPatch(_ context.Context, id string, patch model.ContestPatch) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return repository.ErrNotFound
	}
	patch.Apply(c)
	return nil
}

func (r memoryContests) TransitionStatus(_ context.Context, id string, from, to model.ContestStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Status != from {
		return repository.ErrConflict
	}
	c.Status = to
	return nil
}

func (r memoryContests) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.contests[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.contests, id)
	return nil
}

func (r memoryContests) AddParticipant(_ context.Context, id, email string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.HasParticipant(email) {
		return repository.ErrDuplicate
	}
	c.Participants = append(c.Participants, email)
	return nil
}

func (r memoryContests) AddSubmission(_ context.Context, id string, submission *model.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Submissions = append(c.Submissions, *submission)
	return nil
}

func (r memoryContests) DeclareWinner(_ context.Context, id, email string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.contests[id]
	if !ok {
		return 0, repository.ErrNotFound
	}
	if c.HasWinner() {
		return 0, repository.ErrConflict
	}
	var n int64
	for i := range c.Submissions {
		if c.Submissions[i].Email == email {
			c.Submissions[i].Status = model.SubmissionWinner
			n++
		}
	}
	return n, nil
}

func (r memoryContests) WinCounts(_ context.Context) ([]model.WinCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	points := map[string]int{}
	for _, c := range r.s.contests {
		for _, sub := range c.Submissions {
			if sub.Status == model.SubmissionWinner {
				points[sub.Email]++
			}
		}
	}
	out := make([]model.WinCount, 0, len(points))
	for email, p := range points {
		out = append(out, model.WinCount{Email: email, Points: p})
	}
	return out, nil
}

func wonBy(c *model.Contest, email string) bool {
	for _, sub := range c.Submissions {
		if sub.Email == email && sub.Status == model.SubmissionWinner {
			return true
		}
	}
	return false
}
