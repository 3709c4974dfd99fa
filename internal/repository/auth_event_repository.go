package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/AlexVocao/login/internal/model"
)

// AuthEventRepository defines audit event persistence operations.
type AuthEventRepository interface {
	Create(ctx context.Context, event *model.AuthEvent) error
	CreateBatch(ctx context.Context, events []model.AuthEvent) error
}

type authEventRepository struct {
	db *gorm.DB
}

// NewAuthEventRepository creates a new auth event repository.
func NewAuthEventRepository(db *gorm.DB) AuthEventRepository {
	return &authEventRepository{db: db}
}

// Create creates a new auth event entry.
func (r *authEventRepository) Create(ctx context.Context, event *model.AuthEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// CreateBatch creates multiple auth event entries in a single statement.
func (r *authEventRepository) CreateBatch(ctx context.Context, events []model.AuthEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(events, 100).Error
}
