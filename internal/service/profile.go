package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/twoofus/server/internal/model"
	"github.com/twoofus/server/internal/repository"
	"github.com/twoofus/server/internal/validation"
	"golang.org/x/text/language"
)

type ProfileService struct {
	profiles      repository.ProfileRepository
	defaultLocale string
}

func NewProfileService(profiles repository.ProfileRepository, defaultLocale string) *ProfileService {
	return &ProfileService{profiles: profiles, defaultLocale: defaultLocale}
}

// Profile returns the stored profile, or an unsaved default one.
func (s *ProfileService) Profile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profiles.ByUserID(ctx, userID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return &model.Profile{UserID: userID, Locale: s.defaultLocale}, nil
	}
	return profile, err
}

func (s *ProfileService) Update(ctx context.Context, userID, displayName, locale string) (*model.Profile, error) {
	name, err := validation.DisplayName(displayName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if locale == "" {
		locale = s.defaultLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown locale %q", ErrInvalidInput, locale)
	}

	profile := &model.Profile{
		UserID:      userID,
		DisplayName: name,
		Locale:      tag.String(),
	}
	err = s.profiles.Upsert(ctx, profile)
	if err != nil {
		return nil, err
	}
	return profile, nil
}
