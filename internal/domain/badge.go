package domain

import (
	"context"

	"github.com/taskforge-lab/backend/internal/domain/badge"
	"github.com/taskforge-lab/backend/internal/model"
	"github.com/taskforge-lab/backend/internal/repository"
	"github.com/taskforge-lab/backend/pkg/errorx"
	"github.com/taskforge-lab/backend/pkg/xcontext"
)

type BadgeDomain interface {
	GetAllBadgeNames(ctx context.Context, req *model.GetAllBadgeNamesRequest) (*model.GetAllBadgeNamesResponse, error)
	GetMyBadges(ctx context.Context, req *model.GetMyBadgesRequest) (*model.GetMyBadgesResponse, error)
	GetUserBadges(ctx context.Context, req *model.GetUserBadgesRequest) (*model.GetUserBadgesResponse, error)
}

type badgeDomain struct {
	badgeRepo    repository.BadgeRepository
	badgeManager *badge.Manager
}

func NewBadgeDomain(
	badgeRepo repository.BadgeRepository,
	badgeManager *badge.Manager,
) *badgeDomain {
	return &badgeDomain{badgeRepo: badgeRepo, badgeManager: badgeManager}
}

func (d *badgeDomain) GetAllBadgeNames(
	ctx context.Context, req *model.GetAllBadgeNamesRequest,
) (*model.GetAllBadgeNamesResponse, error) {
	return &model.GetAllBadgeNamesResponse{Names: d.badgeManager.GetAllBadgeNames()}, nil
}

// GetMyBadges returns the requester's badges and marks them as seen, so
// clients can highlight badges earned since the last visit.
func (d *badgeDomain) GetMyBadges(
	ctx context.Context, req *model.GetMyBadgesRequest,
) (*model.GetMyBadgesResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	badges, err := d.badgeRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges of user: %v", err)
		return nil, errorx.Unknown
	}

	clientBadges := []model.Badge{}
	for i := range badges {
		clientBadges = append(clientBadges, model.ConvertBadge(&badges[i]))
	}

	if err := d.badgeRepo.MarkNotified(ctx, userID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark badges as notified: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetMyBadgesResponse{Badges: clientBadges}, nil
}

func (d *badgeDomain) GetUserBadges(
	ctx context.Context, req *model.GetUserBadgesRequest,
) (*model.GetUserBadgesResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty user id")
	}

	badges, err := d.badgeRepo.GetByUserID(ctx, req.UserID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get badges of user: %v", err)
		return nil, errorx.Unknown
	}

	clientBadges := []model.Badge{}
	for i := range badges {
		clientBadges = append(clientBadges, model.ConvertBadge(&badges[i]))
	}

	return &model.GetUserBadgesResponse{Badges: clientBadges}, nil
}
