package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

// TripStore implements store.TripStore on a MongoDB collection.
type TripStore struct {
	coll *mongo.Collection
}

var _ store.TripStore = (*TripStore)(nil)

// CreateTrip inserts the trip and returns it with the assigned ID and
// creation timestamp.
func (s *TripStore) CreateTrip(ctx context.Context, trip *types.Trip) (*types.Trip, error) {
	created := *trip
	created.ID = primitive.NewObjectID().Hex()
	created.CreatedAt = time.Now().UTC()
	if created.LikedBy == nil {
		created.LikedBy = []string{}
	}
	if created.ViewedBy == nil {
		created.ViewedBy = []string{}
	}

	if _, err := s.coll.InsertOne(ctx, created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetTrip returns the trip or store.ErrNotFound. Hidden trips are returned;
// callers apply visibility rules.
func (s *TripStore) GetTrip(ctx context.Context, id string) (*types.Trip, error) {
	var trip types.Trip
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&trip)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

// buildListQuery translates a TripListFilter into a Mongo filter document.
func buildListQuery(filter types.TripListFilter) bson.M {
	query := bson.M{}
	if filter.OwnerEmail != "" {
		query["owner_email"] = filter.OwnerEmail
	}
	if !filter.IncludeHidden {
		query["public"] = true
		query["hidden"] = false
	}
	if filter.Keyword != "" {
		pattern := primitive.Regex{Pattern: filter.Keyword, Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"content": pattern},
			bson.M{"hashtag": pattern},
		}
	}
	return query
}

// ListTrips returns trips matching the filter, newest first.
func (s *TripStore) ListTrips(ctx context.Context, filter types.TripListFilter) ([]*types.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(filter.Limit)
	}
	if filter.Offset > 0 {
		opts.SetSkip(filter.Offset)
	}

	cursor, err := s.coll.Find(ctx, buildListQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	trips := []*types.Trip{}
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// CountTrips returns the number of trips matching the filter.
func (s *TripStore) CountTrips(ctx context.Context, filter types.TripListFilter) (int64, error) {
	return s.coll.CountDocuments(ctx, buildListQuery(filter))
}

// UpdateTrip replaces the mutable content fields. Owner, creation timestamp
// and the engagement counters/ledgers are never touched here.
func (s *TripStore) UpdateTrip(ctx context.Context, id string, update *types.Trip) (*types.Trip, error) {
	now := time.Now().UTC()
	set := bson.M{
		"title":      update.Title,
		"content":    update.Content,
		"location":   update.Location,
		"hashtag":    update.Hashtag,
		"images":     update.Images,
		"started_at": update.StartedAt,
		"end_at":     update.EndAt,
		"public":     update.Public,
		"updated_at": now,
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated types.Trip
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SoftDeleteTrip marks the trip hidden and stamps deleted_at. Repeated calls
// refresh the deletion timestamp; counters and ledgers stay intact.
func (s *TripStore) SoftDeleteTrip(ctx context.Context, id string) error {
	res, err := s.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"hidden":     true,
			"deleted_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// RegisterView counts a view at most once per viewer. The ledger membership
// check lives in the update filter, so the $addToSet and $inc apply as one
// atomic document update; a concurrent duplicate simply matches nothing.
func (s *TripStore) RegisterView(ctx context.Context, id string, viewerEmail string) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "viewed_by": bson.M{"$ne": viewerEmail}},
		bson.M{
			"$addToSet": bson.M{"viewed_by": viewerEmail},
			"$inc":      bson.M{"views": 1},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// AddLike adds the user to the like ledger and bumps the counter in one
// atomic update. Returns false when the user already likes the trip.
func (s *TripStore) AddLike(ctx context.Context, id string, userEmail string) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "liked_by": bson.M{"$ne": userEmail}},
		bson.M{
			"$addToSet": bson.M{"liked_by": userEmail},
			"$inc":      bson.M{"likes": 1},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// RemoveLike removes the user from the like ledger and drops the counter in
// one atomic update. Returns false when the user did not like the trip.
func (s *TripStore) RemoveLike(ctx context.Context, id string, userEmail string) (bool, error) {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "liked_by": userEmail},
		bson.M{
			"$pull": bson.M{"liked_by": userEmail},
			"$inc":  bson.M{"likes": -1},
		})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}
