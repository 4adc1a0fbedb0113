package memory

import (
	"context"
	"fmt"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// UserRepository implements repository.UserRepository on DB.
type UserRepository struct {
	*DB
}

// NewUserRepository returns a user repository backed by d.
func NewUserRepository(d *DB) *UserRepository {
	return &UserRepository{DB: d}
}

var _ repository.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, u *model.User) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	for _, idx := range []struct{ name, value string }{
		{"id", u.ID},
		{"username", u.Username},
		{"email", u.Email},
	} {
		existing, err := txn.First(tblUsers, idx.name, idx.value)
		if err != nil {
			return fmt.Errorf("create user %s: %w", u.Username, err)
		}
		if existing != nil {
			return fmt.Errorf("create user %s: %w", u.Username, repository.ErrDuplicate)
		}
	}

	cp := *u
	if err := txn.Insert(tblUsers, &cp); err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	txn.Commit()
	return nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	return r.findOne("id", id)
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return r.findOne("email", email)
}

func (r *UserRepository) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	for _, idx := range []struct{ name, value string }{
		{"username", username},
		{"email", email},
	} {
		raw, err := txn.First(tblUsers, idx.name, idx.value)
		if err != nil {
			return false, fmt.Errorf("find user by %s: %w", idx.name, err)
		}
		if raw != nil {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) findOne(index, value string) (*model.User, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblUsers, index, value)
	if err != nil {
		return nil, fmt.Errorf("find user by %s: %w", index, err)
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	cp := *raw.(*model.User)
	return &cp, nil
}
