package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"saborconquista/internal/model"
	"saborconquista/internal/workspace"
)

const (
	ClientCookie = "sc_client"
	ClientIDKey  = "clientID"
	WorkspaceKey = "workspace"
)

const clientCookieMaxAge = 60 * 60 * 24 * 30

// ClientWorkspace identifies the browser by its client-id cookie, issuing a new id when the
// cookie is missing or malformed, and attaches the browser's workspace to the context.
func ClientWorkspace(reg *workspace.Registry, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(ClientCookie)
		if _, perr := uuid.Parse(id); err != nil || perr != nil {
			id = uuid.NewString()
		}
		// refresh on every request so an active browser keeps its id
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(ClientCookie, id, clientCookieMaxAge, "/", "", secure, true)

		c.Set(ClientIDKey, id)
		c.Set(WorkspaceKey, reg.Get(c.Request.Context(), id))
		c.Next()
	}
}

// CurrentWorkspace returns the workspace attached by ClientWorkspace.
func CurrentWorkspace(c *gin.Context) *workspace.Workspace {
	v, ok := c.Get(WorkspaceKey)
	if !ok {
		return nil
	}
	ws, _ := v.(*workspace.Workspace)
	return ws
}

// CurrentUser reads the session user for this request. It is never cached between requests.
func CurrentUser(c *gin.Context) *model.User {
	ws := CurrentWorkspace(c)
	if ws == nil {
		return nil
	}
	return ws.Session.User()
}
