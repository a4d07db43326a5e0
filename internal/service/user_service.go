package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Sherryli112/HatGiveMe/internal/auth"
	"github.com/Sherryli112/HatGiveMe/internal/domain"
	"github.com/Sherryli112/HatGiveMe/internal/events"
	"github.com/Sherryli112/HatGiveMe/internal/repository"
	apperrors "github.com/Sherryli112/HatGiveMe/pkg/util"
)

// UserService coordinates account management and the administrator
// lifecycle invariant: the set of active administrators must never
// become empty, and the configured primary administrator can never be
// deactivated.
type UserService struct {
	users             repository.UserRepository
	uow               repository.UnitOfWork
	dispatcher        events.Dispatcher
	primaryAdminEmail string
	bcryptCost        int
}

// UserDependencies bundles requirements for the user service.
type UserDependencies struct {
	UserRepo          repository.UserRepository
	UnitOfWork        repository.UnitOfWork
	Dispatcher        events.Dispatcher
	PrimaryAdminEmail string
	BcryptCost        int
}

// UserListFilter describes admin account listing filters.
type UserListFilter struct {
	Role   *domain.Role
	Active *bool
	Limit  int
	Offset int
}

// NewUserService constructs the service. The primary administrator identity
// is fixed at construction time.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		users:             deps.UserRepo,
		uow:               deps.UnitOfWork,
		dispatcher:        deps.Dispatcher,
		primaryAdminEmail: deps.PrimaryAdminEmail,
		bcryptCost:        deps.BcryptCost,
	}
}

// Profile returns the account for the given id.
func (s *UserService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, err
	}
	return user, nil
}

// UpdateProfile changes the display name of an account.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name string) (*domain.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers returns paginated accounts; administrator operation.
func (s *UserService) ListUsers(ctx context.Context, filter UserListFilter) ([]domain.User, error) {
	return s.users.List(ctx, repository.UserFilter{
		Role:   filter.Role,
		Active: filter.Active,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// CreateAdmin provisions a new administrator account; administrator operation.
func (s *UserService) CreateAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}

	admin := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Active:       true,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// DeactivateUser disables the target account; administrator operation.
// Rules are checked in order against rows locked inside one transaction:
// acting on oneself is rejected, the primary administrator is untouchable,
// and the last active administrator must survive.
func (s *UserService) DeactivateUser(ctx context.Context, targetID, actingUserID string) (*domain.User, error) {
	if targetID == actingUserID {
		return nil, apperrors.NewSelfDeactivationForbidden()
	}

	var target *domain.User
	err := s.uow.Run(ctx, func(ctx context.Context, r repository.TxRepos) error {
		var err error
		target, err = r.Users.GetByIDForUpdate(ctx, targetID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("user", map[string]any{"user_id": targetID})
			}
			return err
		}

		if target.Role == domain.RoleAdmin {
			if s.isPrimaryAdmin(target.Email) {
				return apperrors.NewPrimaryAdminProtected()
			}
			remaining, err := r.Users.CountOtherActiveAdmins(ctx, target.ID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				return apperrors.NewLastAdminProtected()
			}
		}

		if err := r.Users.SetActive(ctx, target.ID, false); err != nil {
			return err
		}
		target.Active = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.EventUserDeactivated, actingUserID, target)
	return target, nil
}

// DeactivateSelf disables the caller's own account. An administrator may do
// so only while at least one other active administrator remains.
func (s *UserService) DeactivateSelf(ctx context.Context, userID string) (*domain.User, error) {
	var user *domain.User
	err := s.uow.Run(ctx, func(ctx context.Context, r repository.TxRepos) error {
		var err error
		user, err = r.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
			}
			return err
		}

		if user.Role == domain.RoleAdmin {
			remaining, err := r.Users.CountOtherActiveAdmins(ctx, user.ID)
			if err != nil {
				return err
			}
			if remaining == 0 {
				return apperrors.NewLastAdminProtected()
			}
		}

		if err := r.Users.SetActive(ctx, user.ID, false); err != nil {
			return err
		}
		user.Active = false
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.EventUserDeactivated, userID, user)
	return user, nil
}

// ActivateUser re-enables an account; administrator operation. Always
// permitted for existing accounts.
func (s *UserService) ActivateUser(ctx context.Context, targetID string) (*domain.User, error) {
	user, err := s.Profile(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SetActive(ctx, user.ID, true); err != nil {
		return nil, err
	}
	user.Active = true

	s.publishLifecycleEvent(ctx, events.EventUserActivated, targetID, user)
	return user, nil
}

func (s *UserService) isPrimaryAdmin(email string) bool {
	return s.primaryAdminEmail != "" && strings.EqualFold(email, s.primaryAdminEmail)
}

func (s *UserService) publishLifecycleEvent(ctx context.Context, eventType events.EventType, actorID string, user *domain.User) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.UserLifecyclePayload{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		},
	})
}
