package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/AlexVocao/login/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
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

func (m *MockUserRepository) FindByLogin(ctx context.Context, identifier string) (*model.User, error) {
	args := m.Called(ctx, identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	args := m.Called(ctx, username, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResetTokenRepository is a mock implementation of ResetTokenRepository.
type MockResetTokenRepository struct {
	mock.Mock
}

func (m *MockResetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockResetTokenRepository) DeleteOthers(ctx context.Context, userID uint, keepHash string) error {
	args := m.Called(ctx, userID, keepHash)
	return args.Error(0)
}

func (m *MockResetTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PasswordResetToken), args.Error(1)
}

func (m *MockResetTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockResetTokenRepository) Consume(ctx context.Context, token *model.PasswordResetToken, passwordHash string, now time.Time) error {
	args := m.Called(ctx, token, passwordHash, now)
	return args.Error(0)
}

func (m *MockResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuthEventRepository is a mock implementation of AuthEventRepository.
type MockAuthEventRepository struct {
	mock.Mock
}

func (m *MockAuthEventRepository) Create(ctx context.Context, event *model.AuthEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockAuthEventRepository) CreateBatch(ctx context.Context, events []model.AuthEvent) error {
	// copy: the auditor reuses its batch slice after the call returns
	cp := append([]model.AuthEvent(nil), events...)
	args := m.Called(ctx, cp)
	return args.Error(0)
}

// MockMailer is a mock implementation of mailer.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, to, username, link string) error {
	args := m.Called(ctx, to, username, link)
	return args.Error(0)
}

// MockLimiter is a mock implementation of auth.AttemptLimiter.
type MockLimiter struct {
	mock.Mock
}

func (m *MockLimiter) Allowed(ctx context.Context, identifier string) bool {
	args := m.Called(ctx, identifier)
	return args.Bool(0)
}

func (m *MockLimiter) RecordFailure(ctx context.Context, identifier string) {
	m.Called(ctx, identifier)
}

func (m *MockLimiter) Reset(ctx context.Context, identifier string) {
	m.Called(ctx, identifier)
}
