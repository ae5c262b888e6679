package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vetdesk/vetdesk-api/internal/handler"
	"github.com/vetdesk/vetdesk-api/internal/model"
	"github.com/vetdesk/vetdesk-api/internal/service/authz"
	"github.com/vetdesk/vetdesk-api/internal/service/user"
	"github.com/vetdesk/vetdesk-api/pkg/auth"
)

const ContextUser = "user"

type AuthMiddleware struct {
	verifier auth.Verifier
	users    user.UserServicer
	authz    authz.AuthzServicer
}

func NewAuthMiddleware(verifier auth.Verifier, users user.UserServicer, authzSvc authz.AuthzServicer) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
		authz:    authzSvc,
	}
}

// Authenticate verifies the identity token and loads the user, creating
// it from the claims on first sight.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		usr, err := m.users.UpsertFromClaims(c.Request.Context(), claims)
		if err != nil {
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to resolve user"))
			c.Abort()
			return
		}

		c.Set(ContextUser, usr)
		c.Next()
	}
}

// RequireClinicRoles checks membership in the clinic named by the
// clinic_id URL parameter. ADMIN_MASTER always passes.
func (m *AuthMiddleware) RequireClinicRoles(roles ...model.ClinicRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		usr := CurrentUser(c)
		if usr == nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
			c.Abort()
			return
		}

		clinicID, err := uuid.Parse(c.Param("clinic_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid clinic ID"))
			c.Abort()
			return
		}

		if err := m.authz.Authorize(c.Request.Context(), usr, clinicID, roles...); err != nil {
			handler.Error(c, err)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAdminMaster restricts the route to the system-wide super admin.
func (m *AuthMiddleware) RequireAdminMaster() gin.HandlerFunc {
	return func(c *gin.Context) {
		usr := CurrentUser(c)
		if usr == nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
			c.Abort()
			return
		}
		if !usr.IsAdminMaster() {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the authenticated user set by Authenticate.
func CurrentUser(c *gin.Context) *model.User {
	v, exists := c.Get(ContextUser)
	if !exists {
		return nil
	}
	usr, ok := v.(*model.User)
	if !ok {
		return nil
	}
	return usr
}
