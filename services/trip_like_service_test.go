package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
)

func TestLikeTrip_Success(t *testing.T) {
	tripStore := new(MockTripStore)
	svc := NewTripLikeService(tripStore)

	tripStore.On("GetTrip", mock.Anything, testTripID).Return(testTrip(), nil)
	tripStore.On("AddLike", mock.Anything, testTripID, testViewer).Return(true, nil)

	err := svc.LikeTrip(context.Background(), testViewer, testTripID)

	require.NoError(t, err)
	tripStore.AssertExpectations(t)
}

func TestLikeTrip_AlreadyLiked(t *testing.T) {
	tripStore := new(MockTripStore)
	svc := NewTripLikeService(tripStore)

	tripStore.On("GetTrip", mock.Anything, testTripID).Return(testTrip(), nil)
	tripStore.On("AddLike", mock.Anything, testTripID, testViewer).Return(false, nil)

	err := svc.LikeTrip(context.Background(), testViewer, testTripID)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.InvalidState))
}

func TestUnlikeTrip_NotLiked(t *testing.T) {
	tripStore := new(MockTripStore)
	svc := NewTripLikeService(tripStore)

	tripStore.On("GetTrip", mock.Anything, testTripID).Return(testTrip(), nil)
	tripStore.On("RemoveLike", mock.Anything, testTripID, testViewer).Return(false, nil)

	err := svc.UnlikeTrip(context.Background(), testViewer, testTripID)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.InvalidState))
}

func TestToggleTripLike_FlipsBothWays(t *testing.T) {
	tripStore := new(MockTripStore)
	svc := NewTripLikeService(tripStore)

	tripStore.On("GetTrip", mock.Anything, testTripID).Return(testTrip(), nil)

	// Not liked yet: toggle adds.
	tripStore.On("AddLike", mock.Anything, testTripID, testViewer).Return(true, nil).Once()
	liked, err := svc.ToggleTripLike(context.Background(), testViewer, testTripID)
	require.NoError(t, err)
	assert.True(t, liked)

	// Already liked: toggle removes.
	tripStore.On("AddLike", mock.Anything, testTripID, testViewer).Return(false, nil).Once()
	tripStore.On("RemoveLike", mock.Anything, testTripID, testViewer).Return(true, nil).Once()
	liked, err = svc.ToggleTripLike(context.Background(), testViewer, testTripID)
	require.NoError(t, err)
	assert.False(t, liked)
}

func TestLikeTrip_HiddenTripNotFound(t *testing.T) {
	tripStore := new(MockTripStore)
	svc := NewTripLikeService(tripStore)

	hidden := testTrip()
	hidden.Hidden = true
	tripStore.On("GetTrip", mock.Anything, testTripID).Return(hidden, nil)

	err := svc.LikeTrip(context.Background(), testViewer, testTripID)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.TripNotFound))
	tripStore.AssertNotCalled(t, "AddLike", mock.Anything, mock.Anything, mock.Anything)
}

func TestLikeTrip_RequiresAuth(t *testing.T) {
	svc := NewTripLikeService(new(MockTripStore))

	err := svc.LikeTrip(context.Background(), "", testTripID)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.AuthError))
}

func TestIsTripLiked(t *testing.T) {
	tripStore := new(MockTripStore)
	svc := NewTripLikeService(tripStore)

	trip := testTrip()
	trip.LikedBy = []string{testViewer}
	tripStore.On("GetTrip", mock.Anything, testTripID).Return(trip, nil)

	liked, err := svc.IsTripLiked(context.Background(), testViewer, testTripID)

	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = svc.IsTripLiked(context.Background(), "someone-else@example.com", testTripID)
	require.NoError(t, err)
	assert.False(t, liked)
}
