package account

import (
	"context"
	stderrors "errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/kbukum/accounts/database"
	"github.com/kbukum/accounts/errors"
)

// Repository persists users and roles. Every method runs on the
// transaction bound to ctx when there is one. Returned errors are tagged by
// database.Translate.
type Repository struct {
	db *database.DB
}

// NewRepository creates a Repository.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) conn(ctx context.Context) (*gorm.DB, error) {
	return r.db.Conn(ctx)
}

// ListUsers returns all users with their roles, ordered by id.
func (r *Repository) ListUsers(ctx context.Context) ([]User, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var users []User
	if err := conn.Preload("Roles", orderByID).Order("id").Find(&users).Error; err != nil {
		return nil, database.Translate(err, "user")
	}
	return users, nil
}

// GetUser loads a user with its roles.
func (r *Repository) GetUser(ctx context.Context, id uint) (*User, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var user User
	if err := conn.Preload("Roles", orderByID).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user", id)
	}
	return &user, nil
}

// FindUserByUsername loads a user by username.
func (r *Repository) FindUserByUsername(ctx context.Context, username string) (*User, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var user User
	if err := conn.Preload("Roles", orderByID).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, database.Translate(err, "user")
	}
	return &user, nil
}

// CreateUser inserts user.
func (r *Repository) CreateUser(ctx context.Context, user *User) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.Create(user).Error; err != nil {
		return database.Translate(err, "user")
	}
	return nil
}

// UpdateUser writes the given columns of user.
func (r *Repository) UpdateUser(ctx context.Context, user *User, fields map[string]interface{}) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.Model(user).Updates(fields).Error; err != nil {
		return database.Translate(err, "user")
	}
	return nil
}

// DeleteUser removes a user and its role assignments.
func (r *Repository) DeleteUser(ctx context.Context, id uint) error {
	user, err := r.GetUser(ctx, id)
	if err != nil {
		return err
	}
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.Select("Roles").Delete(user).Error; err != nil {
		return database.Translate(err, "user")
	}
	return nil
}

// ListRoles returns all roles ordered by id.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var roles []Role
	if err := conn.Order("id").Find(&roles).Error; err != nil {
		return nil, database.Translate(err, "role")
	}
	return roles, nil
}

// GetRole loads a role.
func (r *Repository) GetRole(ctx context.Context, id uint) (*Role, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var role Role
	if err := conn.First(&role, id).Error; err != nil {
		return nil, notFound(err, "role", id)
	}
	return &role, nil
}

// FindRoleByName loads a role by name.
func (r *Repository) FindRoleByName(ctx context.Context, name string) (*Role, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var role Role
	if err := conn.Where("name = ?", name).First(&role).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("role", name)
		}
		return nil, database.Translate(err, "role")
	}
	return &role, nil
}

// CreateRole inserts role.
func (r *Repository) CreateRole(ctx context.Context, role *Role) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.Create(role).Error; err != nil {
		return database.Translate(err, "role")
	}
	return nil
}

// DeleteRole removes a role and its assignments.
func (r *Repository) DeleteRole(ctx context.Context, id uint) error {
	role, err := r.GetRole(ctx, id)
	if err != nil {
		return err
	}
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.Select("Users").Delete(role).Error; err != nil {
		return database.Translate(err, "role")
	}
	return nil
}

// AssignRole adds role to user. Assigning a role twice is a no-op.
func (r *Repository) AssignRole(ctx context.Context, user *User, role *Role) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.Model(user).Association("Roles").Append(role); err != nil {
		return database.Translate(err, "user_roles")
	}
	return nil
}

// RemoveRole removes role from user.
func (r *Repository) RemoveRole(ctx context.Context, user *User, role *Role) error {
	conn, err := r.conn(ctx)
	if err != nil {
		return err
	}
	if err := conn.Model(user).Association("Roles").Delete(role); err != nil {
		return database.Translate(err, "user_roles")
	}
	return nil
}

// HasRole reports whether the user holds the named role.
func (r *Repository) HasRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	conn, err := r.conn(ctx)
	if err != nil {
		return false, err
	}
	var n int64
	err = conn.Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("user_roles.user_id = ? AND roles.name = ?", userID, roleName).
		Count(&n).Error
	if err != nil {
		return false, database.Translate(err, "user_roles")
	}
	return n > 0, nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func notFound(err error, resource string, id uint) error {
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return errors.NotFound(resource, strconv.FormatUint(uint64(id), 10))
	}
	return database.Translate(err, resource)
}
