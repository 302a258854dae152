package devapi

import (
	"crypto/subtle"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	csrfCookie = "csrftoken"
	csrfHeader = "X-CSRFToken"
)

var dashboardPage = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Surgery Dashboard</title></head>
<body>
<form id="dashboard-form" method="post">
<input type="hidden" name="csrfmiddlewaretoken" value="{{.Token}}">
</form>
<div id="critical-alerts-banner"></div>
</body>
</html>
`))

// csrfToken returns the caller's token cookie, issuing a new one if absent.
func csrfToken(c *gin.Context) string {
	if tok, err := c.Cookie(csrfCookie); err == nil && tok != "" {
		return tok
	}
	tok := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(csrfCookie, tok, 365*24*3600, "/", "", false, false)
	return tok
}

// CSRFMiddleware rejects unsafe requests whose X-CSRFToken header does not
// match the csrftoken cookie.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		cookie, err := c.Cookie(csrfCookie)
		header := c.GetHeader(csrfHeader)
		if err != nil || cookie == "" || subtle.ConstantTimeCompare([]byte(cookie), []byte(header)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "CSRF verification failed",
			})
			return
		}
		c.Next()
	}
}
