package lib

import (
	"context"
	"testing"

	"github.com/fiffu/vitalwatch/lib/models"
	"github.com/stretchr/testify/require"
)

func TestCreateAccount(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateAccount(ctx, "Nobody", "", models.Role("admin"))
	require.Error(t, err)

	elder, err := env.svc.CreateAccount(ctx, testElderName, testElderPhone, models.RoleElder)
	require.NoError(t, err)
	require.NotZero(t, elder.ID)

	var devices int64
	require.NoError(t, env.db.Model(&models.ElderDevice{}).Where("elder_id = ?", elder.ID).Count(&devices).Error)
	require.EqualValues(t, 1, devices)

	caregiver, err := env.svc.CreateAccount(ctx, "Joana", testElderPhone, models.RoleCaregiver)
	require.NoError(t, err)
	require.NoError(t, env.db.Model(&models.ElderDevice{}).Where("elder_id = ?", caregiver.ID).Count(&devices).Error)
	require.Zero(t, devices)

	found, err := env.svc.FindAccount(ctx, caregiver.ID)
	require.NoError(t, err)
	require.Equal(t, models.RoleCaregiver, found.Role)

	_, err = env.svc.FindAccount(ctx, 404)
	require.ErrorIs(t, err, ErrNotFound)
}
