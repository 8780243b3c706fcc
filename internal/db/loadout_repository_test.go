package db_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/armory/internal/db"
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/testutil"
)

func TestLoadoutRepository(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	repo := db.NewLoadoutRepository(pool)
	ctx := context.Background()
	bearer := uuid.New()

	t.Run("load missing", func(t *testing.T) {
		_, err := repo.Load(ctx, bearer, "carbine")
		assert.ErrorIs(t, err, db.ErrLoadoutNotFound)
	})

	t.Run("save and load", func(t *testing.T) {
		err := repo.Save(ctx, db.Loadout{
			BearerID: bearer,
			Weapon:   "carbine",
			Parts: map[model.AttachPoint]string{
				model.AttachMechanism: "auto_mechanism",
				model.AttachBarrel:    "short_barrel",
			},
		})
		require.NoError(t, err)

		got, err := repo.Load(ctx, bearer, "carbine")
		require.NoError(t, err)
		assert.Equal(t, bearer, got.BearerID)
		assert.Equal(t, map[model.AttachPoint]string{
			model.AttachMechanism: "auto_mechanism",
			model.AttachBarrel:    "short_barrel",
		}, got.Parts)
		assert.False(t, got.UpdatedAt.IsZero())
	})

	t.Run("save replaces", func(t *testing.T) {
		err := repo.Save(ctx, db.Loadout{
			BearerID: bearer,
			Weapon:   "carbine",
			Parts:    map[model.AttachPoint]string{model.AttachScope: "red_dot"},
		})
		require.NoError(t, err)

		got, err := repo.Load(ctx, bearer, "carbine")
		require.NoError(t, err)
		assert.Equal(t, map[model.AttachPoint]string{model.AttachScope: "red_dot"}, got.Parts)
	})

	t.Run("weapons", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, db.Loadout{
			BearerID: bearer,
			Weapon:   "marksman",
			Parts:    map[model.AttachPoint]string{model.AttachMechanism: "bolt_mechanism"},
		}))

		names, err := repo.Weapons(ctx, bearer)
		require.NoError(t, err)
		assert.Equal(t, []string{"carbine", "marksman"}, names)

		names, err = repo.Weapons(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, bearer, "carbine"))
		_, err := repo.Load(ctx, bearer, "carbine")
		assert.ErrorIs(t, err, db.ErrLoadoutNotFound)

		assert.ErrorIs(t, repo.Delete(ctx, bearer, "carbine"), db.ErrLoadoutNotFound)
	})
}

func TestRunMigrations_UpToDate(t *testing.T) {
	pool := testutil.SetupTestDB(t)

	version, err := db.RunMigrations(context.Background(), pool.Config().ConnString())
	require.NoError(t, err)
	assert.Equal(t, int64(1), version, "rerun applies nothing and reports the schema version")
}
