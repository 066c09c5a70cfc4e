package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/logger"
	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

// FollowService maintains the follow graph that backs the notification
// fan-out and the following feed.
type FollowService struct {
	followStore store.FollowStore
	userStore   store.UserStore
	logger      *zap.SugaredLogger
}

// NewFollowService creates a FollowService.
func NewFollowService(followStore store.FollowStore, userStore store.UserStore) *FollowService {
	return &FollowService{
		followStore: followStore,
		userStore:   userStore,
		logger:      logger.GetLogger().Named("follow-service"),
	}
}

// Follow makes followerEmail follow the user with the given nickname.
// Following is idempotent; following yourself is a validation error.
func (s *FollowService) Follow(ctx context.Context, followerEmail, nickname string) error {
	followee, err := s.resolveNickname(ctx, nickname)
	if err != nil {
		return err
	}
	if followee.Email == followerEmail {
		return apperrors.ValidationFailed("Cannot follow yourself", "")
	}

	if err := s.followStore.Follow(ctx, followerEmail, followee.Email); err != nil {
		return apperrors.NewDatabaseError(err)
	}

	s.logger.Infow("Follow recorded",
		"follower", logger.MaskEmail(followerEmail),
		"followee", logger.MaskEmail(followee.Email))
	return nil
}

// Unfollow removes the follow edge. Unfollowing someone you don't follow is a
// no-op.
func (s *FollowService) Unfollow(ctx context.Context, followerEmail, nickname string) error {
	followee, err := s.resolveNickname(ctx, nickname)
	if err != nil {
		return err
	}

	if err := s.followStore.Unfollow(ctx, followerEmail, followee.Email); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// Following returns the emails the given user follows.
func (s *FollowService) Following(ctx context.Context, email string) ([]string, error) {
	following, err := s.followStore.GetFollowing(ctx, email)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return following, nil
}

func (s *FollowService) resolveNickname(ctx context.Context, nickname string) (*types.User, error) {
	user, err := s.userStore.GetUserByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("User", nickname)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	return user, nil
}
