package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "contesthub/internal/errors"
	"contesthub/internal/metrics"
	"contesthub/internal/model"
	"contesthub/internal/repository"
)

const profileCacheTTL = 5 * time.Minute

// Cache is the subset of the Redis wrapper the services use.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// UserService exposes profile, role and package operations.
type UserService interface {
	GetProfile(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, email string, patch model.ProfilePatch) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	SetRole(ctx context.Context, id, role string) (*model.User, error)
	Packages() []model.Package
	BuyPackage(ctx context.Context, email, packageID string) (*model.User, error)
}

type userService struct {
	repo    repository.UserRepository
	cache   Cache
	catalog *model.Catalog
	metrics metrics.Recorder
	log     *logrus.Entry
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(
	repo repository.UserRepository,
	cache Cache,
	catalog *model.Catalog,
	recorder metrics.Recorder,
	log *logrus.Entry,
) UserService {
	return &userService{repo: repo, cache: cache, catalog: catalog, metrics: recorder, log: log}
}

func (s *userService) cacheKey(email string) string {
	return "profile:" + email
}

func (s *userService) GetProfile(ctx context.Context, email string) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if data, _ := s.cache.Get(ctx, s.cacheKey(email)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, userError("find user", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(email), payload, profileCacheTTL)
	}
	return user, nil
}

// UpdateProfile writes only the supplied fields; absent fields keep their value.
func (s *userService) UpdateProfile(ctx context.Context, email string, patch model.ProfilePatch) (*model.User, error) {
	email = model.NormalizeEmail(email)
	if err := s.repo.UpdateProfile(ctx, email, patch); err != nil {
		return nil, userError("update profile", err)
	}
	s.invalidate(ctx, email)
	return s.fresh(ctx, email)
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeFailure("list users", err)
	}
	return users, nil
}

// SetRole overwrites a user's role. Admins may change their own role.
func (s *userService) SetRole(ctx context.Context, id, role string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.ErrInvalidUserID
	}
	parsed, ok := model.ParseRole(role)
	if !ok {
		return nil, apperrors.ErrInvalidRole
	}
	if err := s.repo.SetRole(ctx, id, parsed); err != nil {
		return nil, userError("set role", err)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, userError("find user", err)
	}
	s.invalidate(ctx, user.Email)
	s.log.WithFields(logrus.Fields{"user_id": id, "role": parsed}).Info("role changed")
	return user, nil
}

func (s *userService) Packages() []model.Package {
	return s.catalog.All()
}

// BuyPackage grants the tier's quota. Payment confirmation happens elsewhere.
func (s *userService) BuyPackage(ctx context.Context, email, packageID string) (*model.User, error) {
	pkg, ok := s.catalog.Find(packageID)
	if !ok {
		return nil, apperrors.ErrUnknownPackage
	}
	email = model.NormalizeEmail(email)
	if err := s.repo.SetPackage(ctx, email, pkg.ID, pkg.ContestLimit); err != nil {
		return nil, userError("set package", err)
	}
	s.invalidate(ctx, email)
	s.metrics.Record(metrics.EventPackageBought)
	s.log.WithFields(logrus.Fields{"email": email, "package": pkg.ID}).Info("package bought")
	return s.fresh(ctx, email)
}

func (s *userService) fresh(ctx context.Context, email string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, userError("find user", err)
	}
	return user, nil
}

func (s *userService) invalidate(ctx context.Context, email string) {
	_ = s.cache.Delete(ctx, s.cacheKey(email))
}
