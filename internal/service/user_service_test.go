package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/user-lifecycle/internal/domain"
	"github.com/spec-kit/user-lifecycle/internal/events"
	"github.com/spec-kit/user-lifecycle/pkg/util"
)

// fakeUserRepo is an in-memory UserRepository that counts mutating calls.
type fakeUserRepo struct {
	users      map[int64]domain.User
	nextID     int64
	calls      int
	failCreate error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User), nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	f.calls++
	if f.failCreate != nil {
		return f.failCreate
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return util.NewDuplicateEmail(user.Email)
		}
	}
	user.ID = f.nextID
	user.CreatedAt = time.Now()
	f.nextID++
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.users))
	for i := int64(1); i < f.nextID; i++ {
		if u, ok := f.users[i]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	f.calls++
	if _, ok := f.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	for id, u := range f.users {
		if id != user.ID && u.Email == user.Email {
			return util.NewDuplicateEmail(user.Email)
		}
	}
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	f.calls++
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

// fakePublisher records published operations per email.
type fakePublisher struct {
	published []events.UserEvent
}

func (f *fakePublisher) PublishAsync(op events.Operation, email string) {
	f.published = append(f.published, events.NewUserEvent(op, email))
}

func (f *fakePublisher) Close() error { return nil }

func newTestService() (*UserService, *fakeUserRepo, *fakePublisher) {
	repo := newFakeUserRepo()
	pub := &fakePublisher{}
	svc := NewUserService(UserDependencies{UserRepo: repo, Publisher: pub}, zap.NewNop())
	return svc, repo, pub
}

func TestCreateUser(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	user, err := svc.CreateUser(ctx, "John Doe", "john@example.com", intp(30))
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "John Doe", user.Name)
	assert.Equal(t, "john@example.com", user.Email)
	assert.Equal(t, 30, user.Age)
	assert.False(t, user.CreatedAt.IsZero())

	got, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)

	require.Len(t, pub.published, 1)
	assert.Equal(t, events.OperationCreate, pub.published[0].Operation)
	assert.Equal(t, "john@example.com", pub.published[0].Email)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "John", "john@example.com", intp(30))
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, "Johnny", "john@example.com", intp(25))
	require.Error(t, err)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "DUPLICATE_EMAIL", de.Code)

	// Exactly one user with that email exists, and no second event was published.
	assert.Len(t, repo.users, 1)
	assert.Len(t, pub.published, 1)
}

func TestCreateUserInvalidInputSkipsStore(t *testing.T) {
	tests := []struct {
		name  string
		uname string
		email string
		age   int
	}{
		{"blank name", "   ", "a@b.com", 30},
		{"bad email", "John", "not-an-email", 30},
		{"negative age", "John", "a@b.com", -1},
		{"age above range", "John", "a@b.com", 151},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, pub := newTestService()

			_, err := svc.CreateUser(context.Background(), tt.uname, tt.email, &tt.age)
			require.Error(t, err)
			var de *util.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, "VALIDATION_FAILED", de.Code)
			assert.Zero(t, repo.calls, "store must not be touched on validation failure")
			assert.Empty(t, pub.published)
		})
	}
}

func TestGetUserByIDInvalidID(t *testing.T) {
	svc, _, _ := newTestService()

	for _, id := range []int64{0, -5} {
		_, err := svc.GetUserByID(context.Background(), id)
		var de *util.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "VALIDATION_FAILED", de.Code)
	}
}

func TestGetUserByIDNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetUserByID(context.Background(), 42)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestGetAllUsersEmpty(t *testing.T) {
	svc, _, _ := newTestService()

	users, err := svc.GetAllUsers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUpdateUserNilFieldsNoOp(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "John", "john@example.com", intp(30))
	require.NoError(t, err)

	updated, err := svc.UpdateUser(ctx, created.ID, UserUpdateInput{})
	require.NoError(t, err)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Email, updated.Email)
	assert.Equal(t, created.Age, updated.Age)
}

func TestUpdateUserSingleField(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "John", "john@example.com", intp(30))
	require.NoError(t, err)

	newName := "Jane"
	updated, err := svc.UpdateUser(ctx, created.ID, UserUpdateInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.Name)
	assert.Equal(t, "john@example.com", updated.Email)
	assert.Equal(t, 30, updated.Age)

	got, err := svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)
	assert.Equal(t, "john@example.com", got.Email)
}

func TestUpdateUserDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, "John", "john@example.com", intp(30))
	require.NoError(t, err)
	second, err := svc.CreateUser(ctx, "Jane", "jane@example.com", intp(25))
	require.NoError(t, err)

	email := "john@example.com"
	_, err = svc.UpdateUser(ctx, second.ID, UserUpdateInput{Email: &email})
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "DUPLICATE_EMAIL", de.Code)
}

func TestUpdateUserSameEmailAllowed(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "John", "john@example.com", intp(30))
	require.NoError(t, err)

	email := "john@example.com"
	updated, err := svc.UpdateUser(ctx, created.ID, UserUpdateInput{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
}

func TestUpdateUserNotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.UpdateUser(context.Background(), 42, UserUpdateInput{})
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func TestDeleteUser(t *testing.T) {
	svc, _, pub := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "John", "john@example.com", intp(30))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, created.ID))

	_, err = svc.GetUserByID(ctx, created.ID)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)

	require.Len(t, pub.published, 2)
	assert.Equal(t, events.OperationDelete, pub.published[1].Operation)
	assert.Equal(t, "john@example.com", pub.published[1].Email)
}

func TestDeleteUserNotFound(t *testing.T) {
	svc, repo, pub := newTestService()

	err := svc.DeleteUser(context.Background(), 42)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
	assert.Zero(t, repo.calls)
	assert.Empty(t, pub.published)
}

func TestDeleteUserInvalidID(t *testing.T) {
	svc, repo, _ := newTestService()

	err := svc.DeleteUser(context.Background(), 0)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Zero(t, repo.calls)
}

func TestCrudRoundTrip(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, "John", "john@example.com", intp(30))
	require.NoError(t, err)

	got, err := svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	age := 31
	updated, err := svc.UpdateUser(ctx, created.ID, UserUpdateInput{Age: &age})
	require.NoError(t, err)
	assert.Equal(t, 31, updated.Age)
	assert.Equal(t, created.Name, updated.Name)
	assert.Equal(t, created.Email, updated.Email)

	require.NoError(t, svc.DeleteUser(ctx, created.ID))

	_, err = svc.GetUserByID(ctx, created.ID)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "NOT_FOUND", de.Code)
}

func intp(v int) *int { return &v }

func TestCreateUserMissingAge(t *testing.T) {
	svc, repo, pub := newTestService()
	ctx := context.Background()

	// Missing age alone is reported as the age field.
	_, err := svc.CreateUser(ctx, "John", "john@example.com", nil)
	var de *util.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
	assert.Equal(t, "age", de.Details["field"])

	// Missing age and blank name: validation order means the name error wins.
	_, err = svc.CreateUser(ctx, "", "john@example.com", nil)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "name", de.Details["field"])

	assert.Zero(t, repo.calls)
	assert.Empty(t, pub.published)
}

func TestCreateUserCyrillicNameWithinLimit(t *testing.T) {
	svc, _, _ := newTestService()

	name := strings.Repeat("ф", 60)
	user, err := svc.CreateUser(context.Background(), name, "fyodor@example.com", intp(30))
	require.NoError(t, err)
	assert.Equal(t, name, user.Name)
}
