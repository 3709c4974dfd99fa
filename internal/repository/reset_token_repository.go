package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/AlexVocao/login/internal/model"
)

// ErrResetTokenConsumed is returned by Consume when the token row was already
// removed or expired by the time the transaction ran.
var ErrResetTokenConsumed = errors.New("reset token already consumed")

// ResetTokenRepository defines persistence operations for password reset tokens.
type ResetTokenRepository interface {
	Create(ctx context.Context, token *model.PasswordResetToken) error
	// DeleteOthers removes every token of userID except the one with keepHash.
	DeleteOthers(ctx context.Context, userID uint, keepHash string) error
	FindByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error)
	DeleteByHash(ctx context.Context, tokenHash string) error
	// Consume deletes the token and sets the owner's password hash in one
	// transaction. Only one caller can consume a given token.
	Consume(ctx context.Context, token *model.PasswordResetToken, passwordHash string, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type resetTokenRepository struct {
	db *gorm.DB
}

// NewResetTokenRepository creates a new reset token repository.
func NewResetTokenRepository(db *gorm.DB) ResetTokenRepository {
	return &resetTokenRepository{db: db}
}

func (r *resetTokenRepository) Create(ctx context.Context, token *model.PasswordResetToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *resetTokenRepository) DeleteOthers(ctx context.Context, userID uint, keepHash string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND token_hash <> ?", userID, keepHash).
		Delete(&model.PasswordResetToken{}).Error
}

func (r *resetTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*model.PasswordResetToken, error) {
	var token model.PasswordResetToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *resetTokenRepository) DeleteByHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).Delete(&model.PasswordResetToken{}).Error
}

func (r *resetTokenRepository) Consume(ctx context.Context, token *model.PasswordResetToken, passwordHash string, now time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditional delete is the single-use gate: a concurrent consumer
		// blocks on the row lock and then sees zero affected rows.
		res := tx.Where("token_hash = ? AND user_id = ? AND expires_at > ?", token.TokenHash, token.UserID, now).
			Delete(&model.PasswordResetToken{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrResetTokenConsumed
		}

		res = tx.Model(&model.User{}).Where("id = ?", token.UserID).Update("password_hash", passwordHash)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *resetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.PasswordResetToken{})
	return res.RowsAffected, res.Error
}
