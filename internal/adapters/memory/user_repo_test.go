package memory

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"finmon/internal/domain"
)

func TestUserRepository_CreateAndGet(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()
	ctx := context.Background()

	name := "Test User"
	user := &domain.User{
		Email:    "a@x.com",
		Password: "digest",
		Name:     &name,
	}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byID, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", byID.Email)

	_, err = repo.GetByEmail(ctx, "missing@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.User{Email: "a@x.com", Password: "digest"}))

	err := repo.Create(ctx, &domain.User{Email: "a@x.com", Password: "other"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestUserRepository_ConcurrentDuplicateCreate(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()

	var created atomic.Int64
	var g errgroup.Group

	for range 16 {
		g.Go(func() error {
			err := repo.Create(context.Background(), &domain.User{
				Email:    "race@x.com",
				Password: "digest",
			})
			if err == nil {
				created.Add(1)
				return nil
			}
			if err == domain.ErrEmailTaken {
				return nil
			}
			return err
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, int64(1), created.Load())
}

func TestUserRepository_Update(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", Password: "digest"}
	require.NoError(t, repo.Create(ctx, user))

	user.Email = "new@x.com"
	require.NoError(t, repo.Update(ctx, user))

	_, err := repo.GetByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	updated, err := repo.GetByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, updated.ID)
}

func TestUserRepository_UpdateEmailTaken(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()
	ctx := context.Background()

	first := &domain.User{Email: "a@x.com", Password: "digest"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, &domain.User{Email: "b@x.com", Password: "digest"}))

	first.Email = "b@x.com"
	assert.ErrorIs(t, repo.Update(ctx, first), domain.ErrEmailTaken)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()

	err := repo.Update(context.Background(), &domain.User{ID: uuid.New(), Email: "x@x.com"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserRepository_ClonesOnRead(t *testing.T) {
	t.Parallel()

	repo := NewUserRepository()
	ctx := context.Background()

	user := &domain.User{Email: "a@x.com", Password: "digest"}
	require.NoError(t, repo.Create(ctx, user))

	read, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	read.Email = "mutated@x.com"

	again, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", again.Email)
}
