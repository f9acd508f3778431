package account

// User is an account holder. Usernames are unique.
type User struct {
	ID       uint   `gorm:"primaryKey"`
	Username string `gorm:"size:80;uniqueIndex;not null"`
	Email    string `gorm:"size:120;not null"`
	Roles    []Role `gorm:"many2many:user_roles;"`
}

// Role is a named permission set. Role names are unique.
type Role struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:80;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
	Users       []User `gorm:"many2many:user_roles;"`
}

// AdminRole is the role allowed to manage roles and role assignments.
const AdminRole = "admin"

// Models lists the tables owned by this package, in migration order.
func Models() []interface{} {
	return []interface{}{&Role{}, &User{}}
}

// UserView is the JSON form of a User.
type UserView struct {
	ID       uint       `json:"id"`
	Username string     `json:"username"`
	Email    string     `json:"email"`
	Roles    []RoleView `json:"roles"`
}

// RoleView is the JSON form of a Role.
type RoleView struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// View returns the JSON form of u. Roles is never null.
func (u *User) View() UserView {
	roles := make([]RoleView, 0, len(u.Roles))
	for i := range u.Roles {
		roles = append(roles, u.Roles[i].View())
	}
	return UserView{ID: u.ID, Username: u.Username, Email: u.Email, Roles: roles}
}

// View returns the JSON form of r.
func (r *Role) View() RoleView {
	return RoleView{ID: r.ID, Name: r.Name, Description: r.Description}
}

func userViews(users []User) []UserView {
	out := make([]UserView, 0, len(users))
	for i := range users {
		out = append(out, users[i].View())
	}
	return out
}

func roleViews(roles []Role) []RoleView {
	out := make([]RoleView, 0, len(roles))
	for i := range roles {
		out = append(out, roles[i].View())
	}
	return out
}
