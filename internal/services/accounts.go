package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/auth"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

type Accounts struct {
	users     store.UserStore
	jwtSecret string
	tokenTTL  time.Duration
	now       func() time.Time
}

func NewAccounts(users store.UserStore, jwtSecret string, tokenTTL time.Duration) *Accounts {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Accounts{users: users, jwtSecret: jwtSecret, tokenTTL: tokenTTL, now: time.Now}
}

type Session struct {
	Token string       `json:"token"`
	Role  models.Role  `json:"role"`
	User  *models.User `json:"user"`
}

func (a *Accounts) Signup(ctx context.Context, name, email, password, roleName string) (*models.User, error) {
	role, err := models.ParseRole(roleName)
	if err != nil {
		return nil, newError(ErrInvalid, "Invalid role.", err)
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    normalizeEmail(email),
		Password: hashed,
		Role:     role,
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "User already exists.", err)
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Login answers Unauthorized for both an unknown email and a wrong
// password.
func (a *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := a.users.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, newError(ErrUnauthorized, "Invalid credentials.", nil)
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, newError(ErrUnauthorized, "Invalid credentials.", nil)
	}

	token, err := auth.GenerateToken(a.jwtSecret, user.ID, user.Role, a.tokenTTL, a.now())
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Role: user.Role, User: user}, nil
}

func (a *Accounts) Profile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := a.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, notFound("User not found.")
		}
		return nil, fmt.Errorf("loading user: %w", err)
	}
	return user, nil
}

type ProfileUpdate struct {
	Name     *string
	Email    *string
	Password *string
}

// UpdateProfile changes only the supplied fields. The password hash is
// rewritten only when a new plaintext is given.
func (a *Accounts) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*models.User, error) {
	user, err := a.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Email != nil {
		user.Email = normalizeEmail(*update.Email)
	}
	if update.Password != nil {
		hashed, err := hashPassword(*update.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashed
	}

	if err := a.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, newError(ErrConflict, "Email is already in use.", err)
		}
		return nil, fmt.Errorf("updating user: %w", err)
	}
	return user, nil
}

func hashPassword(plain string) (string, error) {
	hashed, err := auth.HashPassword(plain)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", newError(ErrInvalid, "Password must be at most 72 bytes.", err)
	}
	return hashed, err
}

// UpgradeToOrganizer is idempotent; the organizer id is assigned once.
func (a *Accounts) UpgradeToOrganizer(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := a.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role == models.RoleOrganizer && user.OrganizerID != nil {
		return user, nil
	}

	user.Role = models.RoleOrganizer
	if err := a.users.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("upgrading user: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
