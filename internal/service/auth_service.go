package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/AlexVocao/login/internal/auth"
	apperrors "github.com/AlexVocao/login/internal/errors"
	"github.com/AlexVocao/login/internal/mailer"
	"github.com/AlexVocao/login/internal/metrics"
	"github.com/AlexVocao/login/internal/model"
	"github.com/AlexVocao/login/internal/repository"
)

// MinPasswordLength is enforced when a password is reset.
const MinPasswordLength = 6

// DefaultResetTokenExpiry is the lifetime of a password reset token.
const DefaultResetTokenExpiry = time.Hour

// ErrEmailNotFound is returned by ForgotPassword for unknown addresses when
// AuthOptions.RevealUnknownEmail is set.
var ErrEmailNotFound = apperrors.New(apperrors.KindNotFound, "no account found for that email")

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	GenerateToken(userID uint, username string) (string, error)
}

// AuditRecorder receives auth events for the audit trail.
type AuditRecorder interface {
	Record(ctx context.Context, event model.AuthEvent)
}

// SignupInput carries registration fields.
type SignupInput struct {
	Username string
	Email    string
	Password string
	Address  *string
	Gender   *string
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	Token string
	User  *model.User
}

// AuthService handles the credential lifecycle.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*model.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

// AuthDeps are the collaborators of the auth service.
type AuthDeps struct {
	Users   repository.UserRepository
	Tokens  repository.ResetTokenRepository
	Hasher  auth.PasswordHasher
	Issuer  TokenIssuer
	Mailer  mailer.Mailer
	Limiter auth.AttemptLimiter
	Audit   AuditRecorder
	Metrics metrics.Recorder
	Logger  *slog.Logger
}

// AuthOptions tune the auth service.
type AuthOptions struct {
	ResetTokenTTL      time.Duration
	ResetURLBase       string
	RevealUnknownEmail bool
}

type authService struct {
	users   repository.UserRepository
	tokens  repository.ResetTokenRepository
	hasher  auth.PasswordHasher
	issuer  TokenIssuer
	mailer  mailer.Mailer
	limiter auth.AttemptLimiter
	audit   AuditRecorder
	metrics metrics.Recorder
	logger  *slog.Logger
	opts    AuthOptions
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService creates a new authentication service.
func NewAuthService(deps AuthDeps, opts AuthOptions) AuthService {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = DefaultResetTokenExpiry
	}
	s := &authService{
		users:   deps.Users,
		tokens:  deps.Tokens,
		hasher:  deps.Hasher,
		issuer:  deps.Issuer,
		mailer:  deps.Mailer,
		limiter: deps.Limiter,
		audit:   deps.Audit,
		metrics: deps.Metrics,
		logger:  deps.Logger,
		opts:    opts,
		now:     time.Now,
	}
	if s.limiter == nil {
		s.limiter = noLimit{}
	}
	if s.audit == nil {
		s.audit = noAudit{}
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Signup registers a new user with a hashed password.
func (s *authService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" || strings.TrimSpace(in.Password) == "" {
		return nil, apperrors.Validation("username, email and password are required")
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("check user existence: %w", err))
	}
	if exists {
		s.recordEvent(ctx, model.AuthEventSignup, model.AuthOutcomeFailure, in.Username, nil, "duplicate")
		return nil, apperrors.ErrUserAlreadyExists
	}

	hash, err := s.hashPassword("password", in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Address:      blankToNil(in.Address),
		Gender:       blankToNil(in.Gender),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost the race against a concurrent signup for the same identity.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			s.recordEvent(ctx, model.AuthEventSignup, model.AuthOutcomeFailure, in.Username, nil, "duplicate")
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, apperrors.Internal(fmt.Errorf("create user: %w", err))
	}

	s.logger.InfoContext(ctx, "user created", "user_id", user.ID, "username", user.Username)
	s.recordEvent(ctx, model.AuthEventSignup, model.AuthOutcomeSuccess, user.Username, &user.ID, "")
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown identifiers
// and wrong passwords produce the same error.
func (s *authService) Login(ctx context.Context, usernameOrEmail, password string) (*LoginResult, error) {
	identifier := strings.TrimSpace(usernameOrEmail)
	if identifier == "" || password == "" {
		return nil, apperrors.Validation("username/email and password are required")
	}

	if !s.limiter.Allowed(ctx, identifier) {
		s.recordEvent(ctx, model.AuthEventLogin, model.AuthOutcomeFailure, identifier, nil, "throttled")
		return nil, apperrors.ErrTooManyAttempts
	}

	user, err := s.users.FindByLogin(ctx, identifier)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.Internal(fmt.Errorf("find user: %w", err))
		}
		// Spend the same bcrypt work as a real comparison.
		_ = s.hasher.Compare(s.dummyPasswordHash(), password)
		s.logger.InfoContext(ctx, "login failed", "reason", "unknown user", "identifier", identifier)
		s.loginFailed(ctx, identifier, nil, "unknown user")
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if !errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, apperrors.Internal(err)
		}
		s.logger.InfoContext(ctx, "login failed", "reason", "bad password", "user_id", user.ID)
		s.loginFailed(ctx, identifier, &user.ID, "bad password")
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.issuer.GenerateToken(user.ID, user.Username)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("generate token: %w", err))
	}

	s.limiter.Reset(ctx, identifier)
	s.logger.InfoContext(ctx, "login succeeded", "user_id", user.ID)
	s.recordEvent(ctx, model.AuthEventLogin, model.AuthOutcomeSuccess, identifier, &user.ID, "")
	return &LoginResult{Token: token, User: user}, nil
}

// ForgotPassword issues a reset token for email and mails the reset link.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.Validation("email is required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.Internal(fmt.Errorf("find user: %w", err))
		}
		s.logger.InfoContext(ctx, "password reset requested for unknown email")
		s.recordEvent(ctx, model.AuthEventResetRequested, model.AuthOutcomeFailure, email, nil, "unknown email")
		if s.opts.RevealUnknownEmail {
			return ErrEmailNotFound
		}
		return nil
	}

	token, digest, err := auth.NewResetToken()
	if err != nil {
		return apperrors.Internal(err)
	}
	record := &model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: digest,
		ExpiresAt: s.now().Add(s.opts.ResetTokenTTL),
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return apperrors.Internal(fmt.Errorf("store reset token: %w", err))
	}

	link, err := mailer.ResetLink(s.opts.ResetURLBase, token)
	if err == nil {
		err = s.mailer.SendPasswordReset(ctx, user.Email, user.Username, link)
	}
	if err != nil {
		// Earlier tokens stay valid: they may already sit in the user's inbox.
		if delErr := s.tokens.DeleteByHash(ctx, digest); delErr != nil {
			s.logger.WarnContext(ctx, "revoke undelivered reset token", "user_id", user.ID, "error", delErr)
		}
		s.logger.ErrorContext(ctx, "send reset email", "user_id", user.ID, "error", err)
		s.recordEvent(ctx, model.AuthEventResetRequested, model.AuthOutcomeFailure, email, &user.ID, "email delivery failed")
		return apperrors.Internal(fmt.Errorf("send reset email: %w", err))
	}

	if err := s.tokens.DeleteOthers(ctx, user.ID, digest); err != nil {
		s.logger.WarnContext(ctx, "revoke superseded reset tokens", "user_id", user.ID, "error", err)
	}

	s.recordEvent(ctx, model.AuthEventResetRequested, model.AuthOutcomeSuccess, email, &user.ID, "")
	return nil
}

// ResetPassword consumes a reset token and sets a new password.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" || newPassword == "" {
		return apperrors.Validation("token and newPassword are required")
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return apperrors.Validation(fmt.Sprintf("newPassword must be at least %d characters", MinPasswordLength))
	}

	digest := auth.HashResetToken(token)
	record, err := s.tokens.FindByHash(ctx, digest)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordEvent(ctx, model.AuthEventResetCompleted, model.AuthOutcomeFailure, "", nil, "unknown token")
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Internal(fmt.Errorf("find reset token: %w", err))
	}

	now := s.now()
	if record.Expired(now) {
		if err := s.tokens.DeleteByHash(ctx, digest); err != nil {
			s.logger.WarnContext(ctx, "delete expired reset token", "user_id", record.UserID, "error", err)
		}
		s.recordEvent(ctx, model.AuthEventResetCompleted, model.AuthOutcomeFailure, "", &record.UserID, "expired token")
		return apperrors.ErrExpiredResetToken
	}

	hash, err := s.hashPassword("newPassword", newPassword)
	if err != nil {
		return err
	}

	if err := s.tokens.Consume(ctx, record, hash, now); err != nil {
		if errors.Is(err, repository.ErrResetTokenConsumed) || errors.Is(err, gorm.ErrRecordNotFound) {
			s.recordEvent(ctx, model.AuthEventResetCompleted, model.AuthOutcomeFailure, "", &record.UserID, "token consumed")
			return apperrors.ErrInvalidResetToken
		}
		return apperrors.Internal(fmt.Errorf("consume reset token: %w", err))
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", record.UserID)
	s.recordEvent(ctx, model.AuthEventResetCompleted, model.AuthOutcomeSuccess, "", &record.UserID, "")
	return nil
}

func (s *authService) hashPassword(field, password string) (string, error) {
	hash, err := s.hasher.Hash(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperrors.Validation(fmt.Sprintf("%s must be at most %d bytes", field, auth.MaxPasswordBytes))
	}
	if err != nil {
		return "", apperrors.Internal(err)
	}
	return hash, nil
}

func (s *authService) loginFailed(ctx context.Context, identifier string, userID *uint, reason string) {
	s.limiter.RecordFailure(ctx, identifier)
	s.recordEvent(ctx, model.AuthEventLogin, model.AuthOutcomeFailure, identifier, userID, reason)
}

func (s *authService) recordEvent(ctx context.Context, typ model.AuthEventType, outcome model.AuthEventOutcome, identifier string, userID *uint, reason string) {
	s.metrics.RecordAuth(string(typ), string(outcome))
	s.audit.Record(ctx, model.AuthEvent{
		UserID:     userID,
		Identifier: identifier,
		Type:       typ,
		Outcome:    outcome,
		Reason:     reason,
	})
}

func (s *authService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		if hash, err := s.hasher.Hash("not-a-real-password"); err == nil {
			s.dummyHash = hash
		}
	})
	return s.dummyHash
}

func blankToNil(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type noLimit struct{}

func (noLimit) Allowed(context.Context, string) bool   { return true }
func (noLimit) RecordFailure(context.Context, string) {}
func (noLimit) Reset(context.Context, string)         {}

type noAudit struct{}

func (noAudit) Record(context.Context, model.AuthEvent) {}
