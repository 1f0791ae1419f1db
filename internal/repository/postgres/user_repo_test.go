package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vidstream/vidstream-api/internal/domain"
	"github.com/vidstream/vidstream-api/internal/repository"
	"github.com/vidstream/vidstream-api/internal/repository/postgres"
	"github.com/vidstream/vidstream-api/internal/testutil"
)

func TestUserRepository_Create(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	newUser := func(username, email string) *domain.User {
		return &domain.User{
			ID:           uuid.New(),
			Username:     username,
			Email:        email,
			FullName:     "Test User",
			AvatarURL:    "https://media.test/a.png",
			PasswordHash: "hashedpassword",
		}
	}

	tests := []struct {
		name    string
		user    *domain.User
		wantErr error
	}{
		{
			name: "successful creation",
			user: newUser("testuser", "test@example.com"),
		},
		{
			name:    "duplicate username",
			user:    newUser("testuser", "other@example.com"),
			wantErr: repository.ErrDuplicate,
		},
		{
			name:    "duplicate email",
			user:    newUser("otheruser", "test@example.com"),
			wantErr: repository.ErrDuplicate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(ctx, tt.user)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, tt.user.WatchHistory)
		})
	}
}

func TestUserRepository_GetByID(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	existing, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	require.NoError(t, repo.SetRefreshToken(ctx, existing.ID, "stored-token"))

	tests := []struct {
		name    string
		id      uuid.UUID
		wantErr error
	}{
		{name: "existing user", id: existing.ID},
		{name: "non-existent user", id: uuid.New(), wantErr: repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.GetByID(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, existing.Username, user.Username)
			assert.Equal(t, existing.PasswordHash, user.PasswordHash)
			require.NotNil(t, user.RefreshToken)
			assert.Equal(t, "stored-token", *user.RefreshToken)
		})
	}
}

func TestUserRepository_GetPublicByIDOmitsSecrets(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	existing, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	require.NoError(t, repo.SetRefreshToken(ctx, existing.ID, "stored-token"))

	user, err := repo.GetPublicByID(ctx, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, existing.Email, user.Email)
	assert.Empty(t, user.PasswordHash)
	assert.Nil(t, user.RefreshToken)
}

func TestUserRepository_FindByUsernameOrEmail(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	existing, _ := testutil.NewUserBuilder().
		WithUsername("finder").
		WithEmail("finder@example.com").
		Build(t, testDB.DB)

	tests := []struct {
		name     string
		username string
		email    string
		wantErr  error
	}{
		{name: "by username", username: "finder"},
		{name: "by email", email: "finder@example.com"},
		{name: "either matches", username: "nobody", email: "finder@example.com"},
		{name: "no match", username: "nobody", email: "nobody@example.com", wantErr: repository.ErrNotFound},
		{name: "no criteria", wantErr: repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := repo.FindByUsernameOrEmail(ctx, tt.username, tt.email)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, existing.ID, user.ID)
		})
	}
}

func TestUserRepository_RefreshTokenLifecycle(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "first"))

	rotated, err := repo.RotateRefreshToken(ctx, user.ID, "stale", "second")
	require.NoError(t, err)
	assert.False(t, rotated, "mismatched current token does not rotate")

	rotated, err = repo.RotateRefreshToken(ctx, user.ID, "first", "second")
	require.NoError(t, err)
	assert.True(t, rotated)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, "second", *stored.RefreshToken)

	require.NoError(t, repo.ClearRefreshToken(ctx, user.ID))
	stored, err = repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RefreshToken)

	rotated, err = repo.RotateRefreshToken(ctx, user.ID, "second", "third")
	require.NoError(t, err)
	assert.False(t, rotated, "cleared token cannot be rotated")

	assert.ErrorIs(t, repo.ClearRefreshToken(ctx, uuid.New()), repository.ErrNotFound)
}

func TestUserRepository_ConcurrentRotateSingleWinner(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	require.NoError(t, repo.SetRefreshToken(ctx, user.ID, "current"))

	const racers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.RotateRefreshToken(ctx, user.ID, "current", uuid.NewString())
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestUserRepository_PartialUpdates(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().WithFullName("Original").Build(t, testDB.DB)
	other, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	updated, err := repo.UpdateAccount(ctx, user.ID, "Renamed", "renamed@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)
	assert.Equal(t, "renamed@example.com", updated.Email)
	assert.Empty(t, updated.PasswordHash)

	_, err = repo.UpdateAccount(ctx, user.ID, "Renamed", other.Email)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, repo.UpdatePassword(ctx, user.ID, "new-hash"))

	withAvatar, err := repo.UpdateAvatar(ctx, user.ID, "https://media.test/new.png", "media/new")
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/new.png", withAvatar.AvatarURL)

	withCover, err := repo.UpdateCoverImage(ctx, user.ID, "https://media.test/cover.png", "media/cover")
	require.NoError(t, err)
	assert.Equal(t, "https://media.test/cover.png", withCover.CoverImageURL)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-hash", stored.PasswordHash)
	assert.Equal(t, "Renamed", stored.FullName)
	assert.Equal(t, "media/new", stored.AvatarPublicID)
	assert.Equal(t, "media/cover", stored.CoverImagePublicID)

	_, err = repo.UpdateAvatar(ctx, uuid.New(), "u", "p")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_AppendWatchHistory(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	repo := postgres.NewUserRepository(testDB.DB)
	ctx := context.Background()

	user, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	first, second := uuid.New(), uuid.New()

	require.NoError(t, repo.AppendWatchHistory(ctx, user.ID, first))
	require.NoError(t, repo.AppendWatchHistory(ctx, user.ID, second))

	stored, err := repo.GetPublicByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{first, second}, []uuid.UUID(stored.WatchHistory))

	assert.ErrorIs(t, repo.AppendWatchHistory(ctx, uuid.New(), first), repository.ErrNotFound)
}
