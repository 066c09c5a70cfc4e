package services

import (
	"context"
	"errors"

	"go.uber.org/zap"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/logger"
	"github.com/tripsketch/tripsketch-backend/store"
)

// TripLikeService owns the like state for (user, trip) pairs. The like count
// and ledger membership always change together in a single store operation,
// so likes == len(likedBy) holds after any interleaving.
//
// Policy: LikeTrip on an already-liked trip (and UnlikeTrip on a not-liked
// one) fails with an invalid-state error; ToggleTripLike always succeeds for
// an existing, visible trip.
type TripLikeService struct {
	tripStore store.TripStore
	logger    *zap.SugaredLogger
}

// NewTripLikeService creates a TripLikeService.
func NewTripLikeService(tripStore store.TripStore) *TripLikeService {
	return &TripLikeService{
		tripStore: tripStore,
		logger:    logger.GetLogger().Named("trip-like-service"),
	}
}

// LikeTrip transitions (user, trip) from NotLiked to Liked.
func (s *TripLikeService) LikeTrip(ctx context.Context, userEmail, tripID string) error {
	if userEmail == "" {
		return apperrors.AuthenticationFailed("No authenticated user")
	}
	if err := s.ensureVisible(ctx, userEmail, tripID); err != nil {
		return err
	}

	added, err := s.tripStore.AddLike(ctx, tripID, userEmail)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if !added {
		return apperrors.NewInvalidState("Trip is already liked")
	}

	s.logger.Debugw("Trip liked", "tripId", tripID, "user", logger.MaskEmail(userEmail))
	return nil
}

// UnlikeTrip transitions (user, trip) from Liked to NotLiked.
func (s *TripLikeService) UnlikeTrip(ctx context.Context, userEmail, tripID string) error {
	if userEmail == "" {
		return apperrors.AuthenticationFailed("No authenticated user")
	}
	if err := s.ensureVisible(ctx, userEmail, tripID); err != nil {
		return err
	}

	removed, err := s.tripStore.RemoveLike(ctx, tripID, userEmail)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if !removed {
		return apperrors.NewInvalidState("Trip is not liked")
	}

	s.logger.Debugw("Trip unliked", "tripId", tripID, "user", logger.MaskEmail(userEmail))
	return nil
}

// ToggleTripLike flips the like state and reports the resulting state.
// The conditional store updates make a concurrent double-toggle settle on one
// of the two valid outcomes rather than corrupting the counter.
func (s *TripLikeService) ToggleTripLike(ctx context.Context, userEmail, tripID string) (bool, error) {
	if userEmail == "" {
		return false, apperrors.AuthenticationFailed("No authenticated user")
	}
	if err := s.ensureVisible(ctx, userEmail, tripID); err != nil {
		return false, err
	}

	added, err := s.tripStore.AddLike(ctx, tripID, userEmail)
	if err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	if added {
		return true, nil
	}

	// Already liked; flip the other way.
	if _, err := s.tripStore.RemoveLike(ctx, tripID, userEmail); err != nil {
		return false, apperrors.NewDatabaseError(err)
	}
	return false, nil
}

// IsTripLiked reports the current like state without side effects.
func (s *TripLikeService) IsTripLiked(ctx context.Context, userEmail, tripID string) (bool, error) {
	trip, err := s.tripStore.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, apperrors.NewTripNotFound(tripID)
		}
		return false, apperrors.NewDatabaseError(err)
	}
	return trip.IsLikedBy(userEmail), nil
}

// ensureVisible verifies the trip exists and is visible to the user. Hidden
// trips surface as not-found, the same as for reads.
func (s *TripLikeService) ensureVisible(ctx context.Context, userEmail, tripID string) error {
	trip, err := s.tripStore.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewTripNotFound(tripID)
		}
		return apperrors.NewDatabaseError(err)
	}
	if !trip.IsOwnedBy(userEmail) && (trip.Hidden || !trip.Public) {
		return apperrors.NewTripNotFound(tripID)
	}
	return nil
}
