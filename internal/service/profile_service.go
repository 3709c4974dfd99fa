package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "github.com/AlexVocao/login/internal/errors"
	"github.com/AlexVocao/login/internal/model"
	"github.com/AlexVocao/login/internal/repository"
)

// ProfileService serves data for authenticated users.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uint) (*model.Profile, error)
}

type profileService struct {
	users repository.UserRepository
}

// NewProfileService builds a ProfileService.
func NewProfileService(users repository.UserRepository) ProfileService {
	return &profileService{users: users}
}

// GetProfile returns the public profile of userID. A token can outlive its
// user, in which case ErrUserNotFound is returned.
func (s *profileService) GetProfile(ctx context.Context, userID uint) (*model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Internal(fmt.Errorf("find user: %w", err))
	}
	profile := user.ProfileView()
	return &profile, nil
}
