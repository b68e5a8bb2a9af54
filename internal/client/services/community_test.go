package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunity_RejectsEmptyInputLocally(t *testing.T) {
	fc := &fakeClient{}
	svc := NewCommunityService(fc)
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, "   ", "body")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.CreatePost(ctx, "title", "\n\t")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.UpdatePost(ctx, "1", "", "body")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.UpdatePost(ctx, "", "t", "b")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.Reply(ctx, "1", "  ")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.ErrorIs(t, svc.DeletePost(ctx, ""), common.ErrValidation)
	_, err = svc.ToggleLike(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Empty(t, fc.Calls())
}

func TestCommunity_CreateTrimsInput(t *testing.T) {
	fc := &fakeClient{PostRet: &models.Post{ID: "7"}}
	svc := NewCommunityService(fc)

	post, err := svc.CreatePost(context.Background(), "  Hello ", " World ")
	require.NoError(t, err)
	assert.Equal(t, models.ID("7"), post.ID)
	assert.Equal(t, models.PostInput{Title: "Hello", Body: "World"}, fc.LastInput)
}

func TestCommunity_PropagatesNormalizedErrors(t *testing.T) {
	fc := &fakeClient{DeleteErr: &client.APIError{Status: 403, Message: client.MsgAccessDenied}}
	svc := NewCommunityService(fc)

	err := svc.DeletePost(context.Background(), "9")
	require.Error(t, err)
	assert.ErrorIs(t, err, client.ErrForbidden)
	assert.Equal(t, models.ID("9"), fc.LastPostID)
}

func TestCommunity_Reply(t *testing.T) {
	fc := &fakeClient{ReplyRet: &models.Reply{Author: "ana", Body: "hi"}}
	svc := NewCommunityService(fc)

	r, err := svc.Reply(context.Background(), "3", " hi ")
	require.NoError(t, err)
	assert.Equal(t, "ana", r.Author)
	assert.Equal(t, "hi", fc.LastReply.Body)
}
