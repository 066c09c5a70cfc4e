package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tripsketch/tripsketch-backend/errors"
	"github.com/tripsketch/tripsketch-backend/store"
)

func TestFollow_Success(t *testing.T) {
	followStore := new(MockFollowStore)
	userStore := new(MockUserStore)
	svc := NewFollowService(followStore, userStore)

	userStore.On("GetUserByNickname", mock.Anything, "wanderer").Return(testOwner(), nil)
	followStore.On("Follow", mock.Anything, testViewer, testOwnerEmail).Return(nil)

	err := svc.Follow(context.Background(), testViewer, "wanderer")

	require.NoError(t, err)
	followStore.AssertExpectations(t)
}

func TestFollow_Self(t *testing.T) {
	followStore := new(MockFollowStore)
	userStore := new(MockUserStore)
	svc := NewFollowService(followStore, userStore)

	userStore.On("GetUserByNickname", mock.Anything, "wanderer").Return(testOwner(), nil)

	err := svc.Follow(context.Background(), testOwnerEmail, "wanderer")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ValidationError))
	followStore.AssertNotCalled(t, "Follow", mock.Anything, mock.Anything, mock.Anything)
}

func TestFollow_StoreFailure(t *testing.T) {
	followStore := new(MockFollowStore)
	userStore := new(MockUserStore)
	svc := NewFollowService(followStore, userStore)

	userStore.On("GetUserByNickname", mock.Anything, "wanderer").Return(testOwner(), nil)
	followStore.On("Follow", mock.Anything, testViewer, testOwnerEmail).Return(store.ErrAlreadyExists)

	err := svc.Follow(context.Background(), testViewer, "wanderer")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.DatabaseError))
	assert.NotContains(t, err.Error(), "yourself")
}

func TestFollow_UnknownNickname(t *testing.T) {
	followStore := new(MockFollowStore)
	userStore := new(MockUserStore)
	svc := NewFollowService(followStore, userStore)

	userStore.On("GetUserByNickname", mock.Anything, "ghost").Return(nil, store.ErrNotFound)

	err := svc.Follow(context.Background(), testViewer, "ghost")

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.NotFoundError))
}

func TestUnfollow_NotFollowingIsNoop(t *testing.T) {
	followStore := new(MockFollowStore)
	userStore := new(MockUserStore)
	svc := NewFollowService(followStore, userStore)

	userStore.On("GetUserByNickname", mock.Anything, "wanderer").Return(testOwner(), nil)
	followStore.On("Unfollow", mock.Anything, testViewer, testOwnerEmail).Return(nil)

	err := svc.Unfollow(context.Background(), testViewer, "wanderer")

	require.NoError(t, err)
}

func TestFollowing(t *testing.T) {
	followStore := new(MockFollowStore)
	userStore := new(MockUserStore)
	svc := NewFollowService(followStore, userStore)

	followStore.On("GetFollowing", mock.Anything, testViewer).
		Return([]string{testOwnerEmail, "other@example.com"}, nil)

	following, err := svc.Following(context.Background(), testViewer)

	require.NoError(t, err)
	assert.Equal(t, []string{testOwnerEmail, "other@example.com"}, following)
}
