package badge

import (
	"context"
	"errors"

	"github.com/taskforge-lab/backend/internal/entity"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
	"golang.org/x/exp/maps"
	"gorm.io/gorm"
)

type Manager struct {
	// This field is only written at initialization. After that, it is readonly.
	// So no need to use sync map here.
	badgeScanners map[string]BadgeScanner

	badgeRepo repository.BadgeRepository
}

func NewManager(
	badgeRepo repository.BadgeRepository,
	badgeScanners ...BadgeScanner,
) *Manager {
	manager := &Manager{
		badgeRepo:     badgeRepo,
		badgeScanners: make(map[string]BadgeScanner),
	}

	for _, b := range badgeScanners {
		manager.badgeScanners[b.Name()] = b
	}

	return manager
}

func (m *Manager) GetAllBadgeNames() []string {
	return maps.Keys(m.badgeScanners)
}

func (m *Manager) WithBadges(badgeNames ...string) *contextManager {
	return &contextManager{
		manager:    m,
		badgeNames: badgeNames,
	}
}

type contextManager struct {
	manager    *Manager
	badgeNames []string
}

// ScanAndGive runs the chosen scanners for one user and persists any
// badge the user newly earned or upgraded. It returns the badges that
// changed so the caller can notify about them.
func (c *contextManager) ScanAndGive(ctx context.Context, userID string) ([]entity.Badge, error) {
	var granted []entity.Badge
	for _, badgeName := range c.badgeNames {
		badgeScanner, ok := c.manager.badgeScanners[badgeName]
		if !ok {
			xcontext.Logger(ctx).Errorf("Not found badge name %s", badgeName)
			return nil, errorx.Unknown
		}

		level, err := badgeScanner.Scan(ctx, userID)
		if err != nil {
			return nil, err
		}

		if level == 0 {
			continue
		}

		current, err := c.manager.badgeRepo.Get(ctx, userID, badgeName)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot get the current badge: %v", err)
				return nil, errorx.Unknown
			}

			newBadge := entity.Badge{UserID: userID, Name: badgeName, Level: level}
			if err := c.manager.badgeRepo.Create(ctx, &newBadge); err != nil {
				xcontext.Logger(ctx).Errorf("Cannot give badge to user: %v", err)
				return nil, errorx.Unknown
			}

			granted = append(granted, newBadge)
			continue
		}

		if current.Level >= level {
			continue
		}

		if err := c.manager.badgeRepo.UpdateLevel(ctx, userID, badgeName, level); err != nil {
			// Another scan already raised the badge above this level.
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}

			xcontext.Logger(ctx).Errorf("Cannot upgrade badge of user: %v", err)
			return nil, errorx.Unknown
		}

		current.Level = level
		granted = append(granted, *current)
	}

	return granted, nil
}
