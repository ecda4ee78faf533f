package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"campus/internal/authz"
	"campus/internal/models"
	"campus/internal/observability"
	"campus/internal/repository"
	"campus/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "campus-api"
	tokenAudience = "campus-client"
	tokenLifetime = 7 * 24 * time.Hour
)

// AuthService handles signup, login with lockout protection, and token
// issuance. Every failed or successful login is reported to the lockout
// policy with the request fingerprint; the policy decides whether the
// account locks.
type AuthService struct {
	userRepo    repository.UserRepository
	loginStates repository.LoginStateRepository
	policy      *authz.LockoutPolicy
	jwtSecret   string
	authLog     *observability.AuthLogger
	now         func() time.Time
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Email       string
	Password    string
	Fingerprint authz.Fingerprint
}

// LoginResult carries the issued token and the authenticated user.
type LoginResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func NewAuthService(
	userRepo repository.UserRepository,
	loginStates repository.LoginStateRepository,
	policy *authz.LockoutPolicy,
	jwtSecret string,
	authLog *observability.AuthLogger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		loginStates: loginStates,
		policy:      policy,
		jwtSecret:   jwtSecret,
		authLog:     authLog,
		now:         time.Now,
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Role:     models.UserRoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates the user. A locked account rejects the attempt
// before the password is even checked, so lockout is not a password
// oracle.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		observability.LoginAttempts.WithLabelValues("unknown_account").Inc()
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	now := s.now()
	state, err := s.loginStates.Get(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if locked, until := s.policy.IsLocked(state, now); locked {
		observability.LoginAttempts.WithLabelValues("locked").Inc()
		return nil, models.NewLockedError(fmt.Sprintf("Account is locked until %s", until.UTC().Format(time.RFC3339)))
	}

	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); cmpErr != nil {
		var newlyLocked bool
		updated, err := s.loginStates.Mutate(ctx, user.ID, func(st *models.LoginState) {
			newlyLocked = s.policy.RecordFailure(st, in.Fingerprint, now)
		})
		if err != nil {
			return nil, err
		}
		observability.LoginAttempts.WithLabelValues("failure").Inc()
		s.authLog.LogLoginFailure(ctx, user.ID, in.Fingerprint.IP, updated.FailedAttempts)
		if newlyLocked {
			observability.AccountLockouts.Inc()
			s.authLog.LogLockout(ctx, user.ID, in.Fingerprint.IP)
		}
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	if _, err := s.loginStates.Mutate(ctx, user.ID, func(st *models.LoginState) {
		s.policy.RecordSuccess(st, in.Fingerprint, now)
	}); err != nil {
		return nil, err
	}
	observability.LoginAttempts.WithLabelValues("success").Inc()
	s.authLog.LogLoginSuccess(ctx, user.ID, in.Fingerprint.IP)

	token, err := s.generateToken(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// UnlockAccount clears an account's lockout state. Admin only.
func (s *AuthService) UnlockAccount(ctx context.Context, actor authz.Principal, userID uint) error {
	if !actor.IsAdmin() {
		return models.NewForbiddenError("Only admins can unlock accounts")
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.loginStates.Mutate(ctx, userID, func(st *models.LoginState) {
		s.policy.AdminUnlock(st)
	}); err != nil {
		return err
	}
	s.authLog.LogAdminUnlock(ctx, actor.UserID, userID)
	return nil
}

// LockStatus reports whether the account is currently locked.
func (s *AuthService) LockStatus(ctx context.Context, actor authz.Principal, userID uint) (bool, *time.Time, error) {
	if !actor.IsAdmin() {
		return false, nil, models.NewForbiddenError("Only admins can inspect lock state")
	}
	state, err := s.loginStates.Get(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	locked, until := s.policy.IsLocked(state, s.now())
	return locked, until, nil
}

func (s *AuthService) generateToken(userID uint, username string) (string, error) {
	if s.jwtSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(userID), 10),
		"username": username,
		"iss":      tokenIssuer,
		"aud":      tokenAudience,
		"exp":      now.Add(tokenLifetime).Unix(),
		"iat":      now.Unix(),
		"nbf":      now.Unix(),
		"jti":      fmt.Sprintf("%d-%s", now.Unix(), uuid.New().String()[:8]),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
