package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/user-lifecycle/internal/cache"
	"github.com/spec-kit/user-lifecycle/internal/domain"
	"github.com/spec-kit/user-lifecycle/internal/events"
	"github.com/spec-kit/user-lifecycle/internal/repository"
	"github.com/spec-kit/user-lifecycle/internal/validation"
	"github.com/spec-kit/user-lifecycle/pkg/util"
)

// UserService is the single entry point for user mutations. It enforces
// business rules before touching the store and announces committed
// create/delete mutations on the event channel.
type UserService struct {
	users     repository.UserRepository
	publisher events.Publisher
	userCache *cache.ViewCache[domain.User]
	logger    *zap.Logger
}

// UserDependencies bundles collaborators for the user service. Publisher and
// UserCache are optional; a nil value disables the concern.
type UserDependencies struct {
	UserRepo  repository.UserRepository
	Publisher events.Publisher
	UserCache *cache.ViewCache[domain.User]
}

// NewUserService builds the service.
func NewUserService(deps UserDependencies, logger *zap.Logger) *UserService {
	return &UserService{
		users:     deps.UserRepo,
		publisher: deps.Publisher,
		userCache: deps.UserCache,
		logger:    logger,
	}
}

// UserUpdateInput carries optional replacement fields for an update. Nil
// pointers (or blank strings) keep the previous value.
type UserUpdateInput struct {
	Name  *string
	Email *string
	Age   *int
}

// CreateUser validates input, enforces email uniqueness and persists a new
// user. Age is nullable so that a missing age is reported in validation
// order, after name and email. On success a CREATE event is published
// fire-and-forget.
func (s *UserService) CreateUser(ctx context.Context, name, email string, age *int) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if err := validation.UserData(name, email, age); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, util.NewDuplicateEmail(email)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	user := &domain.User{Name: name, Email: email, Age: *age}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", zap.Int64("id", user.ID), zap.String("email", user.Email))
	s.publishEvent(events.OperationCreate, user.Email)
	return user, nil
}

// GetUserByID returns the user with the given id, consulting the cache first.
func (s *UserService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if id <= 0 {
		return nil, util.NewValidationError("user id must be positive", map[string]any{"field": "id"})
	}

	if cached, ok := s.userCache.Get(ctx, userCacheKey(id)); ok {
		return cached, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("user", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}

	s.userCache.Set(ctx, userCacheKey(id), user)
	return user, nil
}

// GetAllUsers returns a snapshot of all users, possibly empty.
func (s *UserService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateUser applies the supplied fields to an existing user. Only non-nil,
// non-blank fields are validated and applied; the rest keep their previous
// values. Email uniqueness is re-checked only when the email actually
// changes. The check and the write are separate statements, so two
// concurrent updates to the same email can race past the check; the unique
// constraint in the store still rejects the loser.
func (s *UserService) UpdateUser(ctx context.Context, id int64, input UserUpdateInput) (*domain.User, error) {
	if id <= 0 {
		return nil, util.NewValidationError("user id must be positive", map[string]any{"field": "id"})
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, util.NewNotFound("user", map[string]any{"id": id})
	}
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		name := strings.TrimSpace(*input.Name)
		if err := validation.Name(name); err != nil {
			return nil, err
		}
		user.Name = name
	}

	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		email := strings.TrimSpace(*input.Email)
		if err := validation.Email(email); err != nil {
			return nil, err
		}
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, util.NewDuplicateEmail(email)
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return nil, err
			}
		}
		user.Email = email
	}

	if input.Age != nil {
		if err := validation.Age(*input.Age); err != nil {
			return nil, err
		}
		user.Age = *input.Age
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, err
	}

	s.userCache.Delete(ctx, userCacheKey(id))
	s.logger.Info("user updated", zap.Int64("id", id))
	return user, nil
}

// DeleteUser removes the user and publishes a DELETE event on success.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if id <= 0 {
		return util.NewValidationError("user id must be positive", map[string]any{"field": "id"})
	}

	user, err := s.users.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound("user", map[string]any{"id": id})
	}
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewNotFound("user", map[string]any{"id": id})
		}
		return err
	}

	s.userCache.Delete(ctx, userCacheKey(id))
	s.logger.Info("user deleted", zap.Int64("id", id), zap.String("email", user.Email))
	s.publishEvent(events.OperationDelete, user.Email)
	return nil
}

// publishEvent hands the mutation to the channel after the store commit.
// Publish failures are the publisher's to log; they never reach the caller.
func (s *UserService) publishEvent(op events.Operation, email string) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishAsync(op, email)
}

func userCacheKey(id int64) string {
	return "user:" + strconv.FormatInt(id, 10)
}
