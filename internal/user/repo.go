package user

import (
	"context"

	"github.com/antonminaichev/foodorder/internal/types/user"
)

// UserRepository reports ErrUserExists for a taken login.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByLogin(ctx context.Context, login string) (*user.User, error)
}
