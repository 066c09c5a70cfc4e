package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tripsketch/tripsketch-backend/logger"
	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

// TripNotifier fans out notifications about trip activity. All methods are
// fire-and-forget: failures are logged, never propagated to the caller.
type TripNotifier interface {
	// NotifyTripCreated tells the owner's followers about a new trip.
	NotifyTripCreated(trip *types.Trip, owner *types.User)
}

// notificationService resolves the follow graph and dispatches pushes on the
// worker pool, keeping the request path non-blocking.
type notificationService struct {
	followStore store.FollowStore
	pushService PushService
	pool        *WorkerPool
	logger      *zap.SugaredLogger
}

// NewNotificationService creates the follower fan-out notifier.
func NewNotificationService(followStore store.FollowStore, pushService PushService, pool *WorkerPool) TripNotifier {
	return &notificationService{
		followStore: followStore,
		pushService: pushService,
		pool:        pool,
		logger:      logger.GetLogger().Named("notifications"),
	}
}

// NotifyTripCreated submits a fan-out job for the owner's followers. The
// follower lookup itself runs on the pool so trip creation returns without
// touching the follow graph.
func (s *notificationService) NotifyTripCreated(trip *types.Trip, owner *types.User) {
	tripID := trip.ID
	ownerEmail := owner.Email
	nickname := owner.Nickname

	submitted := s.pool.Submit(Job{
		Name: fmt.Sprintf("notify-trip-created-%s", tripID),
		Execute: func(ctx context.Context) error {
			followers, err := s.followStore.GetFollowers(ctx, ownerEmail)
			if err != nil {
				return fmt.Errorf("failed to resolve followers: %w", err)
			}

			// The graph may contain the owner; never notify the author.
			recipients := make([]string, 0, len(followers))
			for _, f := range followers {
				if f != ownerEmail {
					recipients = append(recipients, f)
				}
			}
			if len(recipients) == 0 {
				return nil
			}

			notification := &types.PushNotification{
				Title: "New trip posted",
				Body:  fmt.Sprintf("%s posted a new trip", nickname),
				Data: map[string]interface{}{
					"tripId":     tripID,
					"actorName":  nickname,
					"notifyType": "trip_created",
				},
			}

			s.logger.Infow("Dispatching trip-created notifications",
				"tripId", tripID,
				"recipientCount", len(recipients))
			return s.pushService.SendToUsers(ctx, recipients, notification)
		},
	})
	if !submitted {
		s.logger.Warnw("Trip-created notification dropped", "tripId", tripID)
	}
}

// noopNotifier is used when push delivery is disabled by configuration.
type noopNotifier struct{}

// NewNoopNotifier returns a TripNotifier that discards everything.
func NewNoopNotifier() TripNotifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyTripCreated(*types.Trip, *types.User) {}
