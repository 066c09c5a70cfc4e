package services

import (
	"context"
	"errors"
	"sort"

	"go.uber.org/zap"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/logger"
	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

const defaultPageSize = 10

// TripService owns the trip lifecycle: creation with follower fan-out,
// visibility-filtered reads, per-viewer view counting, owner-only mutation
// and soft deletion.
type TripService struct {
	tripStore store.TripStore
	userStore store.UserStore
	notifier  TripNotifier
	logger    *zap.SugaredLogger
}

// NewTripService creates a TripService with the given collaborators.
func NewTripService(tripStore store.TripStore, userStore store.UserStore, notifier TripNotifier) *TripService {
	return &TripService{
		tripStore: tripStore,
		userStore: userStore,
		notifier:  notifier,
		logger:    logger.GetLogger().Named("trip-service"),
	}
}

// CreateTrip validates the input, persists a new trip owned by ownerEmail and
// fans out a notification to the owner's followers. Notification dispatch is
// fire-and-forget; its failure never fails creation.
func (s *TripService) CreateTrip(ctx context.Context, ownerEmail string, req *types.TripCreate) (*types.TripResponse, error) {
	if ownerEmail == "" {
		return nil, apperrors.AuthenticationFailed("No authenticated user")
	}
	if err := validateTripCreate(req); err != nil {
		return nil, err
	}

	owner, err := s.userStore.GetUserByEmail(ctx, ownerEmail)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.AuthenticationFailed("Unknown user")
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	public := true
	if req.Public != nil {
		public = *req.Public
	}

	trip := &types.Trip{
		OwnerEmail: ownerEmail,
		Title:      req.Title,
		Content:    req.Content,
		Location:   req.Location,
		Hashtag:    req.Hashtag,
		Images:     req.Images,
		StartedAt:  req.StartedAt.UTC(),
		EndAt:      req.EndAt.UTC(),
		Public:     public,
		Hidden:     false,
	}

	created, err := s.tripStore.CreateTrip(ctx, trip)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	s.logger.Infow("Trip created",
		"tripId", created.ID,
		"owner", logger.MaskEmail(ownerEmail))

	s.notifier.NotifyTripCreated(created, owner)

	return s.toResponse(created, owner, ownerEmail, true), nil
}

// GetTripForViewer fetches a trip for the given viewer, applying the
// visibility rules: a hidden trip resolves to not-found for everyone but the
// owner. A first-time view by an authenticated non-owner is counted.
func (s *TripService) GetTripForViewer(ctx context.Context, viewerEmail, tripID string) (*types.TripResponse, error) {
	trip, err := s.getVisibleTrip(ctx, viewerEmail, tripID)
	if err != nil {
		return nil, err
	}

	if viewerEmail != "" && !trip.IsOwnedBy(viewerEmail) && !trip.IsViewedBy(viewerEmail) {
		counted, err := s.tripStore.RegisterView(ctx, tripID, viewerEmail)
		if err != nil {
			// A lost view count must not fail the read.
			s.logger.Warnw("Failed to register view", "tripId", tripID, "error", err)
		} else if counted {
			trip.Views++
			trip.ViewedBy = append(trip.ViewedBy, viewerEmail)
		}
	}

	return s.resolveResponse(ctx, trip, viewerEmail, trip.IsOwnedBy(viewerEmail))
}

// GetTripForGuest fetches a public trip for an unauthenticated caller.
// Guests never affect the view counter.
func (s *TripService) GetTripForGuest(ctx context.Context, tripID string) (*types.TripResponse, error) {
	trip, err := s.getVisibleTrip(ctx, "", tripID)
	if err != nil {
		return nil, err
	}
	return s.resolveResponse(ctx, trip, "", false)
}

// getVisibleTrip loads the trip and enforces the visibility gate. Hidden or
// non-public trips surface as not-found to non-owners, never as a permission
// error, so their existence is not revealed.
func (s *TripService) getVisibleTrip(ctx context.Context, viewerEmail, tripID string) (*types.Trip, error) {
	trip, err := s.tripStore.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewTripNotFound(tripID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if !trip.IsOwnedBy(viewerEmail) && (trip.Hidden || !trip.Public) {
		return nil, apperrors.NewTripNotFound(tripID)
	}
	return trip, nil
}

// ListOwnTrips returns all of the caller's trips, hidden ones included,
// newest first.
func (s *TripService) ListOwnTrips(ctx context.Context, ownerEmail string, page, size int64) ([]*types.TripResponse, int64, error) {
	filter := types.TripListFilter{
		OwnerEmail:    ownerEmail,
		IncludeHidden: true,
	}
	applyPaging(&filter, page, size)
	return s.listWithTotal(ctx, filter, ownerEmail, true)
}

// ListPublicTrips returns publicly visible trips for guests and generic
// listings.
func (s *TripService) ListPublicTrips(ctx context.Context, viewerEmail string, page, size int64) ([]*types.TripResponse, int64, error) {
	filter := types.TripListFilter{}
	applyPaging(&filter, page, size)
	return s.listWithTotal(ctx, filter, viewerEmail, false)
}

// ListTripsByNickname returns the publicly visible trips of the given author.
func (s *TripService) ListTripsByNickname(ctx context.Context, viewerEmail, nickname string) ([]*types.TripResponse, error) {
	author, err := s.userStore.GetUserByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("User", nickname)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	trips, err := s.tripStore.ListTrips(ctx, types.TripListFilter{OwnerEmail: author.Email})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return s.resolveResponses(ctx, trips, viewerEmail, false)
}

// ListFollowingTrips returns the publicly visible trips of the authors the
// caller follows, newest first.
func (s *TripService) ListFollowingTrips(ctx context.Context, viewerEmail string, following []string) ([]*types.TripResponse, error) {
	var all []*types.Trip
	for _, author := range following {
		trips, err := s.tripStore.ListTrips(ctx, types.TripListFilter{OwnerEmail: author})
		if err != nil {
			return nil, apperrors.NewDatabaseError(err)
		}
		all = append(all, trips...)
	}
	sortTripsByCreatedAtDesc(all)
	return s.resolveResponses(ctx, all, viewerEmail, false)
}

// SearchTrips returns publicly visible trips whose title, content or hashtag
// match the keyword.
func (s *TripService) SearchTrips(ctx context.Context, viewerEmail, keyword string) ([]*types.TripResponse, error) {
	if keyword == "" {
		return nil, apperrors.ValidationFailed("Missing search keyword", "keyword query parameter is required")
	}
	trips, err := s.tripStore.ListTrips(ctx, types.TripListFilter{Keyword: keyword})
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return s.resolveResponses(ctx, trips, viewerEmail, false)
}

// ListAllTripsAdmin returns every trip regardless of visibility flags.
// The caller must already have been authorized as an operator.
func (s *TripService) ListAllTripsAdmin(ctx context.Context, page, size int64) ([]*types.TripResponse, int64, error) {
	filter := types.TripListFilter{IncludeHidden: true}
	applyPaging(&filter, page, size)
	return s.listWithTotal(ctx, filter, "", true)
}

// UpdateTrip replaces the trip's mutable fields. Only the owner may update;
// omitted dates keep their existing values.
func (s *TripService) UpdateTrip(ctx context.Context, requesterEmail, tripID string, req *types.TripUpdate) (*types.TripResponse, error) {
	trip, err := s.tripStore.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewTripNotFound(tripID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	if !trip.IsOwnedBy(requesterEmail) {
		return nil, apperrors.TripAccessDenied(requesterEmail, tripID)
	}

	if err := validateTripUpdate(req); err != nil {
		return nil, err
	}

	updated := *trip
	updated.Title = req.Title
	updated.Content = req.Content
	updated.Location = req.Location
	updated.Hashtag = req.Hashtag
	updated.Images = req.Images
	if req.StartedAt != nil {
		updated.StartedAt = req.StartedAt.UTC()
	}
	if req.EndAt != nil {
		updated.EndAt = req.EndAt.UTC()
	}
	if req.Public != nil {
		updated.Public = *req.Public
	}

	saved, err := s.tripStore.UpdateTrip(ctx, tripID, &updated)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NewTripNotFound(tripID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	s.logger.Infow("Trip updated", "tripId", tripID)
	return s.resolveResponse(ctx, saved, requesterEmail, true)
}

// DeleteTrip soft-deletes the trip: it becomes hidden and timestamped but the
// record, its counters and ledgers are all retained.
func (s *TripService) DeleteTrip(ctx context.Context, requesterEmail, tripID string) error {
	trip, err := s.tripStore.GetTrip(ctx, tripID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewTripNotFound(tripID)
		}
		return apperrors.NewDatabaseError(err)
	}

	if !trip.IsOwnedBy(requesterEmail) {
		return apperrors.TripAccessDenied(requesterEmail, tripID)
	}

	if err := s.tripStore.SoftDeleteTrip(ctx, tripID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NewTripNotFound(tripID)
		}
		return apperrors.NewDatabaseError(err)
	}

	s.logger.Infow("Trip soft-deleted", "tripId", tripID)
	return nil
}

// listWithTotal runs a filtered listing plus its count and projects the
// results for the viewer.
func (s *TripService) listWithTotal(ctx context.Context, filter types.TripListFilter, viewerEmail string, ownerShape bool) ([]*types.TripResponse, int64, error) {
	trips, err := s.tripStore.ListTrips(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError(err)
	}
	total, err := s.tripStore.CountTrips(ctx, filter)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError(err)
	}
	responses, err := s.resolveResponses(ctx, trips, viewerEmail, ownerShape)
	if err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// resolveResponse projects a trip into its client view, resolving the owner's
// nickname. An unresolvable owner is a data-integrity fault and surfaces as an
// internal error, not a not-found.
func (s *TripService) resolveResponse(ctx context.Context, trip *types.Trip, viewerEmail string, includeOwner bool) (*types.TripResponse, error) {
	owner, err := s.userStore.GetUserByEmail(ctx, trip.OwnerEmail)
	if err != nil {
		s.logger.Errorw("Trip owner could not be resolved",
			"tripId", trip.ID,
			"owner", logger.MaskEmail(trip.OwnerEmail),
			"error", err)
		return nil, apperrors.InternalServerError("Failed to resolve trip author")
	}
	return s.toResponse(trip, owner, viewerEmail, includeOwner), nil
}

func (s *TripService) resolveResponses(ctx context.Context, trips []*types.Trip, viewerEmail string, includeOwner bool) ([]*types.TripResponse, error) {
	// Owners repeat across a listing; resolve each only once.
	owners := map[string]*types.User{}
	responses := make([]*types.TripResponse, 0, len(trips))
	for _, trip := range trips {
		owner, ok := owners[trip.OwnerEmail]
		if !ok {
			var err error
			owner, err = s.userStore.GetUserByEmail(ctx, trip.OwnerEmail)
			if err != nil {
				s.logger.Errorw("Trip owner could not be resolved",
					"tripId", trip.ID,
					"owner", logger.MaskEmail(trip.OwnerEmail),
					"error", err)
				return nil, apperrors.InternalServerError("Failed to resolve trip author")
			}
			owners[trip.OwnerEmail] = owner
		}
		responses = append(responses, s.toResponse(trip, owner, viewerEmail, includeOwner))
	}
	return responses, nil
}

// toResponse builds the client view. The public shape (includeOwner=false)
// elides the owner email; isLiked is computed for the current viewer.
func (s *TripService) toResponse(trip *types.Trip, owner *types.User, viewerEmail string, includeOwner bool) *types.TripResponse {
	resp := &types.TripResponse{
		ID:        trip.ID,
		Nickname:  owner.Nickname,
		Title:     trip.Title,
		Content:   trip.Content,
		Location:  trip.Location,
		Hashtag:   trip.Hashtag,
		Images:    trip.Images,
		StartedAt: trip.StartedAt,
		EndAt:     trip.EndAt,
		Public:    trip.Public,
		Hidden:    trip.Hidden,
		Likes:     trip.Likes,
		Views:     trip.Views,
		IsLiked:   viewerEmail != "" && trip.IsLikedBy(viewerEmail),
		CreatedAt: trip.CreatedAt,
		UpdatedAt: trip.UpdatedAt,
		DeletedAt: trip.DeletedAt,
	}
	if includeOwner {
		resp.OwnerEmail = trip.OwnerEmail
	}
	return resp
}

func validateTripCreate(req *types.TripCreate) error {
	switch {
	case req.Title == "":
		return apperrors.ValidationFailed("Missing required field", "title is required")
	case req.Content == "":
		return apperrors.ValidationFailed("Missing required field", "content is required")
	case req.Hashtag == "":
		return apperrors.ValidationFailed("Missing required field", "hashtag is required")
	case req.StartedAt == nil || req.EndAt == nil:
		return apperrors.ValidationFailed("Missing required field", "startedAt and endAt are required")
	case req.EndAt.Before(*req.StartedAt):
		return apperrors.ValidationFailed("Invalid trip dates", "endAt must not be before startedAt")
	}
	return nil
}

func validateTripUpdate(req *types.TripUpdate) error {
	switch {
	case req.Title == "":
		return apperrors.ValidationFailed("Missing required field", "title is required")
	case req.Content == "":
		return apperrors.ValidationFailed("Missing required field", "content is required")
	case req.Hashtag == "":
		return apperrors.ValidationFailed("Missing required field", "hashtag is required")
	}
	if req.StartedAt != nil && req.EndAt != nil && req.EndAt.Before(*req.StartedAt) {
		return apperrors.ValidationFailed("Invalid trip dates", "endAt must not be before startedAt")
	}
	return nil
}

func applyPaging(filter *types.TripListFilter, page, size int64) {
	if size <= 0 {
		size = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	filter.Limit = size
	filter.Offset = (page - 1) * size
}

func sortTripsByCreatedAtDesc(trips []*types.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		return trips[i].CreatedAt.After(trips[j].CreatedAt)
	})
}
