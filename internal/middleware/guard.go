package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"saborconquista/internal/model"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/NaoAutorizado"
)

// Decision is the outcome of guarding a route.
type Decision int

const (
	Render Decision = iota
	RedirectLogin
	RedirectUnauthorized
)

// Decide guards a route with the given allow-set.
func Decide(user *model.User, allowed model.RoleSet) Decision {
	if user == nil {
		return RedirectLogin
	}
	if !allowed.Allows(user.Role) {
		return RedirectUnauthorized
	}
	return Render
}

// RequireRoles guards the routes after it. The user is read on every request, so a logout or
// role change takes effect on the next navigation.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	allowed := model.NewRoleSet(roles...)
	return func(c *gin.Context) {
		switch Decide(CurrentUser(c), allowed) {
		case RedirectLogin:
			c.Redirect(http.StatusSeeOther, LoginPath)
			c.Abort()
		case RedirectUnauthorized:
			c.Redirect(http.StatusSeeOther, UnauthorizedPath)
			c.Abort()
		default:
			c.Next()
		}
	}
}

var (
	MenuRoles     = []model.Role{model.RoleAdmin, model.RoleKitchen, model.RoleCustomer}
	CustomerRoles = []model.Role{model.RoleCustomer}
	KitchenRoles  = []model.Role{model.RoleKitchen, model.RoleAdmin}
	ManagerRoles  = []model.Role{model.RoleAdmin}
)

// AdminOnly guards manager pages.
func AdminOnly() gin.HandlerFunc {
	return RequireRoles(ManagerRoles...)
}

// KitchenOrAdmin guards the kitchen pages.
func KitchenOrAdmin() gin.HandlerFunc {
	return RequireRoles(KitchenRoles...)
}

// CustomerOnly guards cart and profile.
func CustomerOnly() gin.HandlerFunc {
	return RequireRoles(CustomerRoles...)
}
