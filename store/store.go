// Package store defines the persistence interfaces consumed by the service
// layer. Implementations live in subpackages (store/mongo).
package store

import (
	"context"

	"github.com/tripsketch/tripsketch-backend/types"
)

// TripStore handles trip document persistence. Mutating operations that touch
// a counter and its ledger (RegisterView, AddLike, RemoveLike) must apply both
// changes in a single atomic update.
type TripStore interface {
	// CreateTrip inserts the trip and returns it with the assigned ID.
	CreateTrip(ctx context.Context, trip *types.Trip) (*types.Trip, error)

	// GetTrip returns the trip or ErrNotFound. Hidden trips are returned;
	// visibility filtering is the service's concern on single-document reads.
	GetTrip(ctx context.Context, id string) (*types.Trip, error)

	// ListTrips returns trips matching the filter, newest first.
	ListTrips(ctx context.Context, filter types.TripListFilter) ([]*types.Trip, error)

	// CountTrips returns the number of trips matching the filter.
	CountTrips(ctx context.Context, filter types.TripListFilter) (int64, error)

	// UpdateTrip replaces the mutable content fields and sets updated_at.
	// Returns the updated trip or ErrNotFound.
	UpdateTrip(ctx context.Context, id string, update *types.Trip) (*types.Trip, error)

	// SoftDeleteTrip marks the trip hidden and stamps deleted_at.
	SoftDeleteTrip(ctx context.Context, id string) error

	// RegisterView adds viewerEmail to the viewer ledger and increments the
	// view counter, atomically and at most once per viewer. Returns true if
	// the view was counted, false if the viewer was already in the ledger.
	RegisterView(ctx context.Context, id string, viewerEmail string) (bool, error)

	// AddLike adds userEmail to the like ledger and increments the like
	// counter atomically. Returns false if the user already likes the trip.
	AddLike(ctx context.Context, id string, userEmail string) (bool, error)

	// RemoveLike removes userEmail from the like ledger and decrements the
	// like counter atomically. Returns false if the user did not like the trip.
	RemoveLike(ctx context.Context, id string, userEmail string) (bool, error)
}

// UserStore resolves user identities to profiles.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)
	GetUserByNickname(ctx context.Context, nickname string) (*types.User, error)
	// GetPushTokens returns the active device tokens for the given users.
	GetPushTokens(ctx context.Context, emails []string) ([]string, error)
}

// FollowStore maintains the follow graph.
type FollowStore interface {
	// GetFollowers returns the emails following the given user. May include
	// the user itself; callers filter.
	GetFollowers(ctx context.Context, email string) ([]string, error)
	// GetFollowing returns the emails the given user follows.
	GetFollowing(ctx context.Context, email string) ([]string, error)
	Follow(ctx context.Context, followerEmail, followeeEmail string) error
	Unfollow(ctx context.Context, followerEmail, followeeEmail string) error
}
