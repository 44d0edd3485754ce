package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grc-center/internal/logging"
	"grc-center/internal/services"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(), RequestLogger(logging.Discard()))
	r.Use(sessions.Sessions(SessionName, cookie.NewStore([]byte("test-secret"))))
	r.Use(InjectActor())

	r.GET("/whoami", func(c *gin.Context) {
		ctx := c.Request.Context()
		c.JSON(http.StatusOK, gin.H{
			"actor":      services.ActorFrom(ctx),
			"request_id": services.RequestIDFrom(ctx),
		})
	})
	r.POST("/login/:name", func(c *gin.Context) {
		sess := sessions.Default(c)
		sess.Set(SessionActorKey, c.Param("name"))
		if err := sess.Save(); err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestRequestIDIsGeneratedAndEchoed(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	require.Equal(t, http.StatusOK, w.Code)
	id := w.Header().Get(HeaderRequestID)
	assert.Len(t, id, 36)
	assert.Contains(t, w.Body.String(), id)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.Contains(t, w.Body.String(), `"request_id":"abc-123"`)
}

func TestRequestIDRejectsUnusableHeader(t *testing.T) {
	r := newEngine()

	for name, header := range map[string]string{
		"too long":      strings.Repeat("a", maxRequestIDLen+1),
		"control chars": "abc\x01def",
		"spaces":        "abc def",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set(HeaderRequestID, header)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, http.StatusOK, w.Code)
			id := w.Header().Get(HeaderRequestID)
			assert.NotEqual(t, header, id)
			assert.Len(t, id, 36)
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	exact := strings.Repeat("b", maxRequestIDLen)
	req.Header.Set(HeaderRequestID, exact)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, exact, w.Header().Get(HeaderRequestID))
}

func TestActorComesFromSession(t *testing.T) {
	r := newEngine()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Contains(t, w.Body.String(), `"actor":"anonymous"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login/carol", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"actor":"carol"`)
}
