// internal/service/user_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/gurkanbulca/taskboard/internal/apperror"
	"github.com/gurkanbulca/taskboard/internal/models"
	"github.com/gurkanbulca/taskboard/internal/repository"
	"github.com/gurkanbulca/taskboard/pkg/auth"
)

const msgInvalidCredentials = "invalid email or password"

// RegisterInput is a self-registration request.
type RegisterInput struct {
	Email                string
	Name                 string
	Password             string
	PasswordConfirmation *string
	// Admin is honored only for seeding; the HTTP surface never sets it.
	Admin bool
}

// UpdateUserInput changes a profile. The password changes only when present.
type UpdateUserInput struct {
	Email                *string
	Name                 *string
	Password             *string
	PasswordConfirmation *string
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User   *UserView      `json:"user"`
	Tokens auth.TokenPair `json:"tokens"`
}

// RefreshResult carries a new access token.
type RefreshResult struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

type UserService struct {
	base
	passwords *auth.PasswordManager
	tokens    *auth.TokenManager
}

func NewUserService(store *repository.Store, passwords *auth.PasswordManager, tokens *auth.TokenManager, opts ...Option) *UserService {
	return &UserService{
		base:      newBase(store, opts),
		passwords: passwords,
		tokens:    tokens,
	}
}

// Register creates an account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserView, error) {
	now := s.now()
	u := &models.User{ID: uuid.New(), Admin: in.Admin, CreatedAt: now, UpdatedAt: now}
	u.Merge(models.UserDraft{Email: &in.Email, Name: &in.Name})

	err := s.store.InTx(ctx, func(r repository.Repos) error {
		vs := violationsOf(u.Validate())
		vs = append(vs, s.passwordViolations(in.Password, in.PasswordConfirmation)...)
		taken, err := r.Users.EmailTaken(ctx, u.Email, u.ID)
		if err != nil {
			return err
		}
		if taken {
			vs = append(vs, models.EmailTaken())
		}
		if err := validation(vs); err != nil {
			return err
		}

		if u.PasswordHash, err = s.passwords.HashPassword(in.Password); err != nil {
			return err
		}
		return r.Users.Create(ctx, u)
	})
	if err != nil {
		return nil, s.writeError(err)
	}

	log.Printf("[INFO] User registered: %s", u.ID)
	return newUserView(u, models.TaskCounts{}), nil
}

// Login checks the credentials and issues a token pair.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperror.Malformed("email and password are required")
	}

	r := s.store.Repos()
	u, err := r.Users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.Unauthenticated(msgInvalidCredentials)
		}
		return nil, apperror.Internal(err)
	}
	if err := s.passwords.ComparePassword(u.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated(msgInvalidCredentials)
	}

	tokens, err := s.tokens.GenerateTokenPair(u.ID.String(), u.Email, u.Admin)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	view, err := s.view(ctx, r, u)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: view, Tokens: tokens}, nil
}

// Refresh exchanges a refresh token for a new access token. The user must
// still exist.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	if refreshToken == "" {
		return nil, apperror.Malformed("refresh_token is required")
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid refresh token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid refresh token")
	}
	if _, err := s.Resolve(ctx, id); err != nil {
		return nil, err
	}

	access, expiresIn, err := s.tokens.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, apperror.Unauthenticated("invalid refresh token")
	}
	return &RefreshResult{AccessToken: access, ExpiresIn: expiresIn}, nil
}

// Authenticate resolves the caller behind an access token.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (Caller, error) {
	claims, err := s.tokens.ValidateAccessToken(accessToken)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return Caller{}, apperror.Unauthenticated("token has expired")
		}
		return Caller{}, apperror.Unauthenticated("invalid token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Caller{}, apperror.Unauthenticated("invalid token")
	}
	return s.Resolve(ctx, id)
}

// Resolve turns a user id into a caller. The admin flag is read from the
// store, not trusted from the request.
func (s *UserService) Resolve(ctx context.Context, id uuid.UUID) (Caller, error) {
	u, err := s.store.Repos().Users.GetByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return Caller{}, apperror.Unauthenticated("")
		}
		return Caller{}, apperror.Internal(err)
	}
	return Caller{ID: u.ID, Admin: u.Admin}, nil
}

// Get returns a profile. The user is looked up before access is checked,
// so an unknown id is not found while another user's profile is denied.
func (s *UserService) Get(ctx context.Context, caller Caller, id uuid.UUID) (*UserView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}
	r := s.store.Repos()
	u, err := r.Users.GetByID(ctx, id)
	if err != nil {
		return nil, translate("user", err)
	}
	if err := authorizeUserRead(caller, u.ID); err != nil {
		return nil, err
	}
	return s.view(ctx, r, u)
}

// Profile follows the same rules as Get: own profile, or any as admin.
func (s *UserService) Profile(ctx context.Context, caller Caller, id uuid.UUID) (*UserView, error) {
	return s.Get(ctx, caller, id)
}

// Update changes the caller's own profile.
func (s *UserService) Update(ctx context.Context, caller Caller, id uuid.UUID, in UpdateUserInput) (*UserView, error) {
	if err := authenticated(caller); err != nil {
		return nil, err
	}

	var u *models.User
	err := s.store.InTx(ctx, func(r repository.Repos) error {
		var err error
		if u, err = r.Users.GetByID(ctx, id); err != nil {
			return translate("user", err)
		}
		if err := authorizeUserWrite(caller, u.ID); err != nil {
			return err
		}

		u.Merge(models.UserDraft{Email: in.Email, Name: in.Name})
		vs := violationsOf(u.Validate())
		changePassword := in.Password != nil && *in.Password != ""
		if changePassword {
			vs = append(vs, s.passwordViolations(*in.Password, in.PasswordConfirmation)...)
		}
		taken, err := r.Users.EmailTaken(ctx, u.Email, u.ID)
		if err != nil {
			return err
		}
		if taken {
			vs = append(vs, models.EmailTaken())
		}
		if err := validation(vs); err != nil {
			return err
		}

		if changePassword {
			if u.PasswordHash, err = s.passwords.HashPassword(*in.Password); err != nil {
				return err
			}
		}
		u.UpdatedAt = s.now()
		return r.Users.Update(ctx, u)
	})
	if err != nil {
		return nil, s.writeError(err)
	}
	return s.view(ctx, s.store.Repos(), u)
}

func (s *UserService) view(ctx context.Context, r repository.Repos, u *models.User) (*UserView, error) {
	counts, err := r.Users.TaskCounts(ctx, []uuid.UUID{u.ID}, s.now())
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return newUserView(u, counts[u.ID]), nil
}

func (s *UserService) passwordViolations(password string, confirmation *string) []apperror.Violation {
	var vs []apperror.Violation
	switch {
	case password == "":
		vs = append(vs, apperror.Violation{Field: "password", Message: "can't be blank"})
	case s.passwords.ValidatePassword(password) != nil:
		vs = append(vs, apperror.Violation{
			Field:   "password",
			Message: fmt.Sprintf("is too short (minimum is %d characters)", auth.MinPasswordLength),
		})
	}
	if err := auth.ConfirmPassword(password, confirmation); err != nil {
		vs = append(vs, apperror.Violation{Field: "password_confirmation", Message: "doesn't match password"})
	}
	return vs
}

// writeError maps a failed write. A unique index hit that slipped past the
// pre-check is still reported as a taken email.
func (s *UserService) writeError(err error) error {
	if repository.IsUniqueViolation(err) {
		return apperror.Validation(models.EmailTaken())
	}
	return translate("user", err)
}
