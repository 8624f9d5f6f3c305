package domain

import (
	"context"

	"go.uber.org/zap"

	"github.com/pixeldesk/backend/internal/events"
)

// ThemeRepository defines theme settings data access. The settings are a
// global singleton row.
type ThemeRepository interface {
	GetTheme(ctx context.Context) (*ThemeSettings, error)
	SaveTheme(ctx context.Context, settings ThemeSettings) error
}

// ThemeService owns the desktop theme singleton.
type ThemeService struct {
	repo      ThemeRepository
	publisher EventPublisher
	logger    *zap.Logger
}

// NewThemeService creates a new theme service.
func NewThemeService(repo ThemeRepository, publisher EventPublisher, logger *zap.Logger) *ThemeService {
	return &ThemeService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Get loads the theme, installing defaults when none exist and repairing
// any missing required sections. The repair persists best-effort; the
// repaired settings are returned either way.
func (s *ThemeService) Get(ctx context.Context) (ThemeSettings, error) {
	stored, err := s.repo.GetTheme(ctx)
	if err != nil {
		return ThemeSettings{}, err
	}

	if stored == nil {
		settings := DefaultThemeSettings()
		if err := s.repo.SaveTheme(ctx, settings); err != nil {
			s.logger.Warn("persist default theme", zap.Error(err))
		}
		return settings, nil
	}

	repaired, changed := RepairSections(*stored)
	if changed {
		if err := s.repo.SaveTheme(ctx, repaired); err != nil {
			s.logger.Warn("persist repaired theme sections", zap.Error(err))
		}
	}
	return repaired, nil
}

// Update replaces the theme settings. Missing required sections are
// restored before saving.
func (s *ThemeService) Update(ctx context.Context, settings ThemeSettings) (ThemeSettings, error) {
	repaired, _ := RepairSections(settings)
	if err := s.repo.SaveTheme(ctx, repaired); err != nil {
		return ThemeSettings{}, err
	}

	s.publisher.Publish(ctx, events.Event{Topic: events.TopicCollection, Collection: events.CollectionTheme})
	return repaired, nil
}
