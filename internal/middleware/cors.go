package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	allowMethods = []string{"GET", "DELETE", "PATCH", "POST", "PUT"}
	allowHeaders = []string{
		"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version",
		"Content-Length", "Content-MD5", "Content-Type", "Date", "X-Api-Version",
	}
)

// CORSConfig is the permissive preflight policy applied to every /api route
func CORSConfig() cors.Config {
	return cors.Config{
		AllowAllOrigins:  true,
		AllowCredentials: true,
		AllowMethods:     allowMethods,
		AllowHeaders:     allowHeaders,
		MaxAge:           12 * time.Hour,
	}
}

// setCORSHeaders writes the full permissive header set, with or without an Origin
func setCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Credentials", "true")
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", strings.Join(allowMethods, ","))
	c.Header("Access-Control-Allow-Headers", strings.Join(allowHeaders, ", "))
}

// CORS returns an engine-level middleware that sets the permissive header set
// on every response under prefix and answers preflights with CORSConfig.
// Preflights for routes in ownPreflight skip it so their own OPTIONS handler
// answers.
func CORS(prefix string, ownPreflight ...string) gin.HandlerFunc {
	handler := cors.New(CORSConfig())
	skip := make(map[string]bool, len(ownPreflight))
	for _, p := range ownPreflight {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, prefix) {
			c.Next()
			return
		}
		setCORSHeaders(c)
		if c.Request.Method == http.MethodOptions && skip[c.FullPath()] {
			c.Next()
			return
		}
		handler(c)
	}
}
