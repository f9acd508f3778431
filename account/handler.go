package account

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/accounts/errors"
	"github.com/kbukum/accounts/logger"
	"github.com/kbukum/accounts/server"
	"github.com/kbukum/accounts/server/middleware"
	"github.com/kbukum/accounts/validation"
)

// Handler serves the user, role and auth routes.
type Handler struct {
	repo *Repository
	log  *logger.Logger
}

// NewHandler creates a Handler.
func NewHandler(repo *Repository, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{repo: repo, log: log.WithComponent("account")}
}

// Register mounts the routes on rg, dispatched through d.
func (h *Handler) Register(rg *gin.RouterGroup, d *server.Dispatcher) {
	users := rg.Group("/users")
	users.GET("", d.Handle(h.ListUsers))
	users.POST("", d.Handle(h.CreateUser))
	users.GET("/:id", d.Handle(h.GetUser))
	users.PUT("/:id", d.Handle(h.UpdateUser))
	users.DELETE("/:id", d.Handle(h.DeleteUser))
	users.PUT("/:id/roles/:roleID", d.Handle(h.AssignRole))
	users.DELETE("/:id/roles/:roleID", d.Handle(h.RemoveRole))

	roles := rg.Group("/roles")
	roles.GET("", d.Handle(h.ListRoles))
	roles.POST("", d.Handle(h.CreateRole))
	roles.GET("/:id", d.Handle(h.GetRole))
	roles.DELETE("/:id", d.Handle(h.DeleteRole))

	auth := rg.Group("/auth")
	auth.GET("/login", d.Handle(h.Login))
	auth.GET("/logout", d.Handle(h.Logout))
}

type createUserRequest struct {
	Username string   `json:"username" validate:"required,max=80"`
	Email    string   `json:"email" validate:"required,email,max=120"`
	Roles    []string `json:"roles" validate:"omitempty,dive,required,max=80"`
}

type updateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,max=80"`
	Email    *string `json:"email" validate:"omitempty,email,max=120"`
}

type createRoleRequest struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description" validate:"max=255"`
}

// ListUsers handles GET /users.
func (h *Handler) ListUsers(c *gin.Context) (server.Reply, error) {
	users, err := h.repo.ListUsers(c.Request.Context())
	if err != nil {
		return server.Reply{}, err
	}
	return server.OK(userViews(users)), nil
}

// GetUser handles GET /users/:id.
func (h *Handler) GetUser(c *gin.Context) (server.Reply, error) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		return server.Reply{}, err
	}
	user, err := h.repo.GetUser(c.Request.Context(), id)
	if err != nil {
		return server.Reply{}, err
	}
	return server.OK(user.View()), nil
}

// CreateUser handles POST /users. Named roles are assigned in the same
// transaction; an unknown role name fails the whole request.
func (h *Handler) CreateUser(c *gin.Context) (server.Reply, error) {
	var req createUserRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return server.Reply{}, err
	}
	req.Username, req.Email = strings.TrimSpace(req.Username), strings.TrimSpace(req.Email)
	if appErr := validation.New().Required("username", req.Username).Required("email", req.Email).Validate(); appErr != nil {
		return server.Reply{}, appErr
	}
	ctx := c.Request.Context()

	user := &User{Username: req.Username, Email: req.Email}
	if err := h.repo.CreateUser(ctx, user); err != nil {
		return server.Reply{}, err
	}
	if user.ID == 0 {
		return server.Reply{}, errors.InvalidState("created user has no id")
	}

	for _, name := range req.Roles {
		role, err := h.repo.FindRoleByName(ctx, name)
		if err != nil {
			return server.Reply{}, err
		}
		if err := h.repo.AssignRole(ctx, user, role); err != nil {
			return server.Reply{}, err
		}
	}

	created, err := h.repo.GetUser(ctx, user.ID)
	if err != nil {
		return server.Reply{}, err
	}
	h.log.WithContext(ctx).Info("user created", logger.Fields("user_id", created.ID))
	return server.Created(created.View()), nil
}

// UpdateUser handles PUT /users/:id.
func (h *Handler) UpdateUser(c *gin.Context) (server.Reply, error) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		return server.Reply{}, err
	}
	var req updateUserRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return server.Reply{}, err
	}

	fields := make(map[string]interface{}, 2)
	v := validation.New()
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		v.Required("username", username)
		fields["username"] = username
	}
	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		v.Required("email", email)
		fields["email"] = email
	}
	if len(fields) == 0 {
		return server.Reply{}, errors.BadRequest("no fields to update")
	}
	if appErr := v.Validate(); appErr != nil {
		return server.Reply{}, appErr
	}

	ctx := c.Request.Context()
	user, err := h.repo.GetUser(ctx, id)
	if err != nil {
		return server.Reply{}, err
	}
	if err := h.repo.UpdateUser(ctx, user, fields); err != nil {
		return server.Reply{}, err
	}
	updated, err := h.repo.GetUser(ctx, id)
	if err != nil {
		return server.Reply{}, err
	}
	return server.OK(updated.View()), nil
}

// DeleteUser handles DELETE /users/:id.
func (h *Handler) DeleteUser(c *gin.Context) (server.Reply, error) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		return server.Reply{}, err
	}
	if err := h.repo.DeleteUser(c.Request.Context(), id); err != nil {
		return server.Reply{}, err
	}
	return server.NoContent(), nil
}

// AssignRole handles PUT /users/:id/roles/:roleID. Requires an admin actor.
func (h *Handler) AssignRole(c *gin.Context) (server.Reply, error) {
	return h.changeRole(c, h.repo.AssignRole)
}

// RemoveRole handles DELETE /users/:id/roles/:roleID. Requires an admin actor.
func (h *Handler) RemoveRole(c *gin.Context) (server.Reply, error) {
	return h.changeRole(c, h.repo.RemoveRole)
}

func (h *Handler) changeRole(c *gin.Context, apply func(context.Context, *User, *Role) error) (server.Reply, error) {
	if err := h.requireAdmin(c); err != nil {
		return server.Reply{}, err
	}
	userID, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		return server.Reply{}, err
	}
	roleID, err := validation.ParseID("roleID", c.Param("roleID"))
	if err != nil {
		return server.Reply{}, err
	}

	ctx := c.Request.Context()
	user, err := h.repo.GetUser(ctx, userID)
	if err != nil {
		return server.Reply{}, err
	}
	role, err := h.repo.GetRole(ctx, roleID)
	if err != nil {
		return server.Reply{}, err
	}
	if err := apply(ctx, user, role); err != nil {
		return server.Reply{}, err
	}
	updated, err := h.repo.GetUser(ctx, userID)
	if err != nil {
		return server.Reply{}, err
	}
	return server.OK(updated.View()), nil
}

// ListRoles handles GET /roles.
func (h *Handler) ListRoles(c *gin.Context) (server.Reply, error) {
	roles, err := h.repo.ListRoles(c.Request.Context())
	if err != nil {
		return server.Reply{}, err
	}
	return server.OK(roleViews(roles)), nil
}

// GetRole handles GET /roles/:id.
func (h *Handler) GetRole(c *gin.Context) (server.Reply, error) {
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		return server.Reply{}, err
	}
	role, err := h.repo.GetRole(c.Request.Context(), id)
	if err != nil {
		return server.Reply{}, err
	}
	return server.OK(role.View()), nil
}

// CreateRole handles POST /roles. Requires an admin actor.
func (h *Handler) CreateRole(c *gin.Context) (server.Reply, error) {
	if err := h.requireAdmin(c); err != nil {
		return server.Reply{}, err
	}
	var req createRoleRequest
	if err := validation.BindJSON(c, &req); err != nil {
		return server.Reply{}, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if appErr := validation.New().Required("name", req.Name).Validate(); appErr != nil {
		return server.Reply{}, appErr
	}
	role := &Role{Name: req.Name, Description: req.Description}
	if err := h.repo.CreateRole(c.Request.Context(), role); err != nil {
		return server.Reply{}, err
	}
	if role.ID == 0 {
		return server.Reply{}, errors.InvalidState("created role has no id")
	}
	return server.Created(role.View()), nil
}

// DeleteRole handles DELETE /roles/:id. Requires an admin actor.
func (h *Handler) DeleteRole(c *gin.Context) (server.Reply, error) {
	if err := h.requireAdmin(c); err != nil {
		return server.Reply{}, err
	}
	id, err := validation.ParseID("id", c.Param("id"))
	if err != nil {
		return server.Reply{}, err
	}
	if err := h.repo.DeleteRole(c.Request.Context(), id); err != nil {
		return server.Reply{}, err
	}
	return server.NoContent(), nil
}

// Login handles GET /auth/login. Sessions are handled by the gateway.
func (h *Handler) Login(*gin.Context) (server.Reply, error) {
	return server.Reply{Status: http.StatusOK, Body: "This is the login page"}, nil
}

// Logout handles GET /auth/logout.
func (h *Handler) Logout(*gin.Context) (server.Reply, error) {
	return server.Reply{Status: http.StatusOK, Body: "This is the logout page"}, nil
}

// requireAdmin fails with an authentication failure when no actor is
// asserted and with a permission failure when the actor is not an admin.
func (h *Handler) requireAdmin(c *gin.Context) error {
	actor := middleware.ActorID(c)
	if actor == "" {
		return errors.Unauthorized("")
	}
	id, err := validation.ParseID(middleware.HeaderUserID, actor)
	if err != nil {
		return errors.Unauthorized("invalid actor id").WithCause(err)
	}
	ok, err := h.repo.HasRole(c.Request.Context(), id, AdminRole)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Forbidden("")
	}
	return nil
}
