package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"contesthub/internal/access"
	"contesthub/internal/auth"
	apperrors "contesthub/internal/errors"
	"contesthub/internal/model"
	"contesthub/internal/repository"
)

const bcryptCost = 10

// AuthResult is an issued token together with the account it was issued for.
type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// RegisterInput carries a local-credential sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Photo    string
}

// FederatedInput carries a federated sign-in. When an identity verifier is configured
// only IDToken is trusted; otherwise the profile fields are taken as given.
type FederatedInput struct {
	IDToken string
	Email   string
	Name    string
	Photo   string
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	FederatedLogin(ctx context.Context, in FederatedInput) (*AuthResult, error)
	Logout(ctx context.Context, caller access.Caller) error
	Authenticate(ctx context.Context, token string) (*access.Caller, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	verifier   auth.IdentityVerifier
	log        *logrus.Entry
}

// NewAuthService creates a new authentication service. verifier may be nil.
func NewAuthService(
	users repository.UserRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	verifier auth.IdentityVerifier,
	log *logrus.Entry,
) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		tokenStore: tokenStore,
		verifier:   verifier,
		log:        log,
	}
}

// Register creates a new account with a hashed password. Only user and creator can be
// chosen at sign-up.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := model.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	role := model.RoleUser
	if strings.TrimSpace(in.Role) != "" {
		parsed, ok := model.ParseRole(in.Role)
		if !ok || parsed == model.RoleAdmin {
			return nil, apperrors.ErrInvalidRole
		}
		role = parsed
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeFailure("check user existence", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hash := string(hashed)

	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: &hash,
		Role:         role,
		Photo:        in.Photo,
		ContestLimit: model.DefaultContestLimit,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, userError("create user", err)
	}

	s.log.WithFields(logrus.Fields{"email": email, "role": role}).Info("user registered")
	return s.issue(user)
}

// Login authenticates a local-credential account.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.ErrMissingCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, userError("find user", err)
	}
	if !user.HasPassword() {
		return nil, apperrors.ErrNoLocalPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	return s.issue(user)
}

// FederatedLogin signs in through an identity provider, creating the account on first
// sight. The token carries the stored role, so admin upgrades survive repeated logins.
func (s *authService) FederatedLogin(ctx context.Context, in FederatedInput) (*AuthResult, error) {
	identity, verified, err := s.identity(ctx, in)
	if err != nil {
		return nil, err
	}
	email := model.NormalizeEmail(identity.Email)

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if !verified && !claimableUnverified(user) {
			return nil, apperrors.ErrUnverifiedIdentity
		}
		if user.Photo == "" && identity.Photo != "" {
			photo := identity.Photo
			if err := s.users.UpdateProfile(ctx, email, model.ProfilePatch{Photo: &photo}); err != nil {
				return nil, userError("backfill photo", err)
			}
			user.Photo = photo
		}
	case errors.Is(err, repository.ErrNotFound):
		user = &model.User{
			Name:         identity.Name,
			Email:        email,
			Role:         model.RoleUser,
			Photo:        identity.Photo,
			ContestLimit: model.DefaultContestLimit,
		}
		if err := s.users.Create(ctx, user); err != nil {
			if !errors.Is(err, repository.ErrDuplicate) {
				return nil, userError("create user", err)
			}
			// Lost a race with a concurrent first login.
			if user, err = s.users.FindByEmail(ctx, email); err != nil {
				return nil, userError("find user", err)
			}
			if !verified && !claimableUnverified(user) {
				return nil, apperrors.ErrUnverifiedIdentity
			}
		} else {
			s.log.WithField("email", email).Info("federated user created")
		}
	default:
		return nil, userError("find user", err)
	}

	return s.issue(user)
}

// identity resolves who is signing in. Without a verifier the body fields are taken as
// given and reported as unverified.
func (s *authService) identity(ctx context.Context, in FederatedInput) (*auth.FederatedIdentity, bool, error) {
	if s.verifier != nil {
		if strings.TrimSpace(in.IDToken) == "" {
			return nil, false, apperrors.InvalidInput("id token is required")
		}
		identity, err := s.verifier.Verify(ctx, in.IDToken)
		if err != nil {
			s.log.WithError(err).Warn("federated token rejected")
			return nil, false, apperrors.ErrInvalidToken
		}
		return identity, true, nil
	}
	if model.NormalizeEmail(in.Email) == "" {
		return nil, false, apperrors.InvalidInput("email is required")
	}
	return &auth.FederatedIdentity{Email: in.Email, Name: in.Name, Photo: in.Photo}, false, nil
}

// claimableUnverified reports whether an unverified social login may sign in as u:
// only plain social-only accounts qualify.
func claimableUnverified(u *model.User) bool {
	return !u.HasPassword() && u.Role == model.RoleUser
}

// Logout revokes the caller's token until it would have expired.
func (s *authService) Logout(ctx context.Context, caller access.Caller) error {
	if caller.TokenID == "" {
		return apperrors.ErrInvalidToken
	}
	if err := s.tokenStore.Revoke(ctx, caller.TokenID, s.jwtService.Remaining(caller.ExpiresAt)); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// Authenticate verifies a bearer token and checks it was not revoked.
func (s *authService) Authenticate(ctx context.Context, token string) (*access.Caller, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	revoked, err := s.tokenStore.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, apperrors.ErrInvalidToken
	}

	caller := &access.Caller{
		Email:   claims.Email,
		Role:    claims.Role,
		TokenID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		caller.ExpiresAt = claims.ExpiresAt.Time
	}
	return caller, nil
}

func (s *authService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(user.Email, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &AuthResult{Token: token, User: user}, nil
}
