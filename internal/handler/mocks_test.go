package handler

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"contesthub/internal/access"
	"contesthub/internal/model"
	"contesthub/internal/service"
)

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in service.RegisterInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) FederatedLogin(ctx context.Context, in service.FederatedInput) (*service.AuthResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, caller access.Caller) error {
	args := m.Called(ctx, caller)
	return args.Error(0)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*access.Caller, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*access.Caller), args.Error(1)
}

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetProfile(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, email string, patch model.ProfilePatch) (*model.User, error) {
	args := m.Called(ctx, email, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) SetRole(ctx context.Context, id, role string) (*model.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Packages() []model.Package {
	args := m.Called()
	return args.Get(0).([]model.Package)
}

func (m *MockUserService) BuyPackage(ctx context.Context, email, packageID string) (*model.User, error) {
	args := m.Called(ctx, email, packageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockContestService is a mock implementation of ContestService.
type MockContestService struct {
	mock.Mock
}

func (m *MockContestService) contest(args mock.Arguments) (*model.Contest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Contest), args.Error(1)
}

func (m *MockContestService) contests(args mock.Arguments) ([]model.Contest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Contest), args.Error(1)
}

func (m *MockContestService) Create(ctx context.Context, caller access.Caller, in model.ContestContent) (*model.Contest, error) {
	return m.contest(m.Called(ctx, caller, in))
}

func (m *MockContestService) List(ctx context.Context, filter model.ContestFilter) ([]model.Contest, error) {
	return m.contests(m.Called(ctx, filter))
}

func (m *MockContestService) Participated(ctx context.Context, caller access.Caller) ([]model.Contest, error) {
	return m.contests(m.Called(ctx, caller))
}

func (m *MockContestService) Won(ctx context.Context, caller access.Caller) ([]model.Contest, error) {
	return m.contests(m.Called(ctx, caller))
}

func (m *MockContestService) Get(ctx context.Context, id string) (*model.Contest, error) {
	return m.contest(m.Called(ctx, id))
}

func (m *MockContestService) Edit(ctx context.Context, caller access.Caller, id string, in model.ContestContent) (*model.Contest, error) {
	return m.contest(m.Called(ctx, caller, id, in))
}

func (m *MockContestService) UpdateFields(ctx context.Context, caller access.Caller, id string, patch model.ContestPatch) (*model.Contest, error) {
	return m.contest(m.Called(ctx, caller, id, patch))
}

func (m *MockContestService) Delete(ctx context.Context, caller access.Caller, id string) error {
	args := m.Called(ctx, caller, id)
	return args.Error(0)
}

func (m *MockContestService) SetStatus(ctx context.Context, caller access.Caller, id, status string) (*model.Contest, error) {
	return m.contest(m.Called(ctx, caller, id, status))
}

func (m *MockContestService) Register(ctx context.Context, caller access.Caller, id string) (*model.Contest, error) {
	return m.contest(m.Called(ctx, caller, id))
}

func (m *MockContestService) SubmitTask(ctx context.Context, caller access.Caller, id, submission string) (*model.Contest, error) {
	return m.contest(m.Called(ctx, caller, id, submission))
}

func (m *MockContestService) DeclareWinner(ctx context.Context, caller access.Caller, id, winnerEmail string) (*model.Contest, error) {
	return m.contest(m.Called(ctx, caller, id, winnerEmail))
}

func (m *MockContestService) Submissions(ctx context.Context, caller access.Caller, id string) ([]model.SubmissionView, error) {
	args := m.Called(ctx, caller, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SubmissionView), args.Error(1)
}

// MockLeaderboardService is a mock implementation of LeaderboardService.
type MockLeaderboardService struct {
	mock.Mock
}

func (m *MockLeaderboardService) Leaderboard(ctx context.Context) ([]model.LeaderboardEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LeaderboardEntry), args.Error(1)
}

// MockPaymentService is a mock implementation of PaymentService.
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreateIntent(ctx context.Context, caller access.Caller, price decimal.Decimal) (*service.PaymentIntent, error) {
	args := m.Called(ctx, caller, price)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PaymentIntent), args.Error(1)
}

// fakePinger answers readiness checks with a fixed error.
type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }
