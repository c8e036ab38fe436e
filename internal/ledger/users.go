package ledger

import (
	"context"
	"fmt"
	"log"
	"strings"

	"smartpark/ledger-service/internal/models"
	"smartpark/ledger-service/internal/store"
)

type UserInput struct {
	Username    string
	Role        string
	BranchID    string
	FullName    string
	Email       string
	PhoneNumber string
	Caption     string
	AvatarURL   string
}

// UserPatch changes only the fields that are set.
type UserPatch struct {
	Username    *string
	Role        *string
	BranchID    *string
	FullName    *string
	Email       *string
	PhoneNumber *string
	Caption     *string
	AvatarURL   *string
}

func (l *Ledger) Users() []models.User {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.User(nil), l.users...)
}

func (l *Ledger) UserByID(userID string) (models.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, user := range l.users {
		if user.UserID == userID {
			return user, true
		}
	}
	return models.User{}, false
}

func (l *Ledger) UserByUsername(username string) (models.User, bool) {
	username = strings.TrimSpace(username)
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, user := range l.users {
		if user.Username == username {
			return user, true
		}
	}
	return models.User{}, false
}

func (l *Ledger) RegisterUser(ctx context.Context, input UserInput) (user models.User, err error) {
	ctx, span := startSpan(ctx, "RegisterUser")
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()
	user = models.User{
		Username:    strings.TrimSpace(input.Username),
		Role:        input.Role,
		BranchID:    strings.TrimSpace(input.BranchID),
		FullName:    input.FullName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Caption:     input.Caption,
		AvatarURL:   input.AvatarURL,
	}
	if err := l.validateUser(user, ""); err != nil {
		return models.User{}, err
	}
	user.UserID = l.newID()
	l.users = append(l.users, user)
	l.persist(ctx, store.KeyUsers)
	log.Printf("user registered user_id=%s username=%s role=%s", user.UserID, user.Username, user.Role)
	return user, nil
}

func (l *Ledger) UpdateUser(ctx context.Context, userID string, patch UserPatch) (user models.User, err error) {
	ctx, span := startSpan(ctx, "UpdateUser")
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.findUser(userID)
	if idx < 0 {
		return models.User{}, store.ErrUserNotFound
	}
	user = l.users[idx]
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.Username, patch.Username)
	apply(&user.Role, patch.Role)
	apply(&user.BranchID, patch.BranchID)
	apply(&user.FullName, patch.FullName)
	apply(&user.Email, patch.Email)
	apply(&user.PhoneNumber, patch.PhoneNumber)
	apply(&user.Caption, patch.Caption)
	apply(&user.AvatarURL, patch.AvatarURL)
	if err := l.validateUser(user, userID); err != nil {
		return models.User{}, err
	}
	l.users[idx] = user
	l.persist(ctx, store.KeyUsers)
	log.Printf("user updated user_id=%s", userID)
	return user, nil
}

func (l *Ledger) RemoveUser(ctx context.Context, userID string) (err error) {
	ctx, span := startSpan(ctx, "RemoveUser")
	defer func() { endSpan(span, err) }()

	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.findUser(userID)
	if idx < 0 {
		return store.ErrUserNotFound
	}
	l.users = append(l.users[:idx:idx], l.users[idx+1:]...)
	l.persist(ctx, store.KeyUsers)
	log.Printf("user removed user_id=%s", userID)
	return nil
}

func (l *Ledger) findUser(userID string) int {
	for i, user := range l.users {
		if user.UserID == userID {
			return i
		}
	}
	return -1
}

// validateUser enforces a unique username, a known role, and an existing
// branch binding for staff. selfID is skipped in the uniqueness check.
func (l *Ledger) validateUser(user models.User, selfID string) error {
	if user.Username == "" {
		return fmt.Errorf("%w: username is required", store.ErrInvalidUser)
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleStaff {
		return fmt.Errorf("%w: role %q", store.ErrInvalidUser, user.Role)
	}
	if user.Role == models.RoleStaff {
		if user.BranchID == "" {
			return fmt.Errorf("%w: staff need a branch", store.ErrInvalidUser)
		}
		if _, ok := l.findBranch(user.BranchID); !ok {
			return store.ErrBranchNotFound
		}
	}
	for _, existing := range l.users {
		if existing.UserID != selfID && existing.Username == user.Username {
			return fmt.Errorf("%w: %s", store.ErrDuplicateUser, user.Username)
		}
	}
	return nil
}
