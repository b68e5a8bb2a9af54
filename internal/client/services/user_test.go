package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/dktlearn/internal/client/models"
	"github.com/dmitrijs2005/dktlearn/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateProfile(t *testing.T) {
	fc := &fakeClient{}
	svc := NewUserService(fc)
	ctx := context.Background()

	assert.ErrorIs(t, svc.UpdateProfile(ctx, models.ProfileUpdate{}), common.ErrValidation)
	assert.ErrorIs(t, svc.UpdateProfile(ctx, models.ProfileUpdate{Username: "ana", Email: "nope"}), common.ErrValidation)
	assert.Empty(t, fc.Calls())

	require.NoError(t, svc.UpdateProfile(ctx, models.ProfileUpdate{Username: " ana ", Email: "a@b.c", AvatarURL: " http://x/y.png "}))
	assert.Equal(t, models.ProfileUpdate{Username: "ana", Email: "a@b.c", AvatarURL: "http://x/y.png"}, fc.LastProfile)
}

func TestChangePassword(t *testing.T) {
	fc := &fakeClient{}
	svc := NewUserService(fc)
	ctx := context.Background()

	assert.ErrorIs(t, svc.ChangePassword(ctx, "", "Abcdef1!"), common.ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "Old1234!", "weak"), common.ErrValidation)
	assert.ErrorIs(t, svc.ChangePassword(ctx, "Abcdef1!", "Abcdef1!"), common.ErrValidation)
	assert.Empty(t, fc.Calls())

	require.NoError(t, svc.ChangePassword(ctx, "Old1234!", "Abcdef1!"))
	assert.Equal(t, models.ChangePasswordRequest{
		CurrentPassword: "Old1234!", NewPassword: "Abcdef1!", ConfirmPassword: "Abcdef1!",
	}, fc.LastChange)
}

func TestDeleteUser_RequiresID(t *testing.T) {
	fc := &fakeClient{}
	svc := NewUserService(fc)

	assert.ErrorIs(t, svc.DeleteUser(context.Background(), " "), common.ErrValidation)
	require.NoError(t, svc.DeleteUser(context.Background(), "u-1"))
	assert.Equal(t, []string{"DeleteUser"}, fc.Calls())
}
