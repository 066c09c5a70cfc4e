package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tripsketch/tripsketch-backend/store"
	"github.com/tripsketch/tripsketch-backend/types"
)

// FollowStore implements store.FollowStore on a MongoDB collection holding
// one follow-graph document per user.
type FollowStore struct {
	coll *mongo.Collection
}

var _ store.FollowStore = (*FollowStore)(nil)

// GetFollowers returns the emails following the given user. Absence of a
// graph document means no followers, not an error.
func (s *FollowStore) GetFollowers(ctx context.Context, email string) ([]string, error) {
	var follow types.Follow
	err := s.coll.FindOne(ctx, bson.M{"user_email": email}).Decode(&follow)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return follow.Followers, nil
}

// GetFollowing returns the emails the given user follows.
func (s *FollowStore) GetFollowing(ctx context.Context, email string) ([]string, error) {
	var follow types.Follow
	err := s.coll.FindOne(ctx, bson.M{"user_email": email}).Decode(&follow)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return follow.Following, nil
}

// Follow records follower -> followee on both graph documents, creating them
// on first use. $addToSet keeps repeated follows idempotent. The graph never
// holds self edges; the service rejects those before they reach the store.
func (s *FollowStore) Follow(ctx context.Context, followerEmail, followeeEmail string) error {
	if followerEmail == followeeEmail {
		return errors.New("self follow edge rejected")
	}

	upsert := options.Update().SetUpsert(true)
	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"user_email": followerEmail},
		bson.M{"$addToSet": bson.M{"following": followeeEmail}},
		upsert); err != nil {
		return err
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"user_email": followeeEmail},
		bson.M{"$addToSet": bson.M{"followers": followerEmail}},
		upsert)
	return err
}

// Unfollow removes follower -> followee from both graph documents.
func (s *FollowStore) Unfollow(ctx context.Context, followerEmail, followeeEmail string) error {
	if _, err := s.coll.UpdateOne(ctx,
		bson.M{"user_email": followerEmail},
		bson.M{"$pull": bson.M{"following": followeeEmail}}); err != nil {
		return err
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"user_email": followeeEmail},
		bson.M{"$pull": bson.M{"followers": followerEmail}})
	return err
}
