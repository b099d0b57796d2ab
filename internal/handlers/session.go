package handlers

import (
	"net/http"

	"reid-dashboard/internal/dashboard"

	"github.com/gin-gonic/gin"
)

// SessionCookie holds the id of a browser's view state
const SessionCookie = "reid_session"

const sessionKey = "session"

// Sessions attaches the browser's dashboard session to the context,
// issuing a new cookie when the browser has none or an expired one
func Sessions(store *dashboard.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		sess, created := store.Get(id)
		if created {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sess.ID, 0, "/", "", false, true)
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) *dashboard.Session {
	return c.MustGet(sessionKey).(*dashboard.Session)
}
