package router

import (
	"context"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/AlexVocao/login/internal/model"
	"github.com/AlexVocao/login/internal/repository"
)

// memoryStore backs the user and reset token repositories with maps so the
// full HTTP stack can run without MySQL.
type memoryStore struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]model.User
	tokens map[string]model.PasswordResetToken
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:  make(map[uint]model.User),
		tokens: make(map[string]model.PasswordResetToken),
	}
}

func (s *memoryStore) userRepo() repository.UserRepository { return memoryUsers{s} }

func (s *memoryStore) tokenRepo() repository.ResetTokenRepository { return memoryTokens{s} }

func (s *memoryStore) tokenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

func (s *memoryStore) anyToken() (model.PasswordResetToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		return t, true
	}
	return model.PasswordResetToken{}, false
}

type memoryUsers struct{ s *memoryStore }

func (r memoryUsers) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	r.s.nextID++
	user.ID = r.s.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id uint) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Email == email })
}

func (r memoryUsers) FindByLogin(_ context.Context, identifier string) (*model.User, error) {
	return r.find(func(u model.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (r memoryUsers) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	_, err := r.find(func(u model.User) bool { return u.Username == username || u.Email == email })
	return err == nil, nil
}

func (r memoryUsers) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r memoryUsers) find(match func(model.User) bool) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type memoryTokens struct{ s *memoryStore }

func (r memoryTokens) Create(_ context.Context, token *model.PasswordResetToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	token.CreatedAt = time.Now()
	r.s.tokens[token.TokenHash] = *token
	return nil
}

func (r memoryTokens) DeleteOthers(_ context.Context, userID uint, keepHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for hash, t := range r.s.tokens {
		if t.UserID == userID && hash != keepHash {
			delete(r.s.tokens, hash)
		}
	}
	return nil
}

func (r memoryTokens) FindByHash(_ context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[tokenHash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &t, nil
}

func (r memoryTokens) DeleteByHash(_ context.Context, tokenHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.tokens, tokenHash)
	return nil
}

func (r memoryTokens) Consume(_ context.Context, token *model.PasswordResetToken, passwordHash string, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[token.TokenHash]
	if !ok || t.UserID != token.UserID || !now.Before(t.ExpiresAt) {
		return repository.ErrResetTokenConsumed
	}
	u, ok := r.s.users[t.UserID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.s.tokens, token.TokenHash)
	u.PasswordHash = passwordHash
	r.s.users[u.ID] = u
	return nil
}

func (r memoryTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for hash, t := range r.s.tokens {
		if !now.Before(t.ExpiresAt) {
			delete(r.s.tokens, hash)
			n++
		}
	}
	return n, nil
}

// captureMailer keeps the last reset link per recipient.
type captureMailer struct {
	mu    sync.Mutex
	links map[string]string
	fail  bool
}

func newCaptureMailer() *captureMailer {
	return &captureMailer{links: make(map[string]string)}
}

func (m *captureMailer) SendPasswordReset(_ context.Context, to, _, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errSMTPDown
	}
	m.links[strings.ToLower(to)] = link
	return nil
}

func (m *captureMailer) link(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.links[strings.ToLower(to)]
}
