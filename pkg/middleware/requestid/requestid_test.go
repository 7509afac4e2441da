package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, header string) (string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen string
	router := gin.New()
	router.Use(Middleware())
	router.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(headerKey, header)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return seen, rec.Header().Get(headerKey)
}

func TestMiddlewareGeneratesUUID(t *testing.T) {
	seen, header := serve(t, "")
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, header)
}

func TestMiddlewareKeepsClientID(t *testing.T) {
	seen, _ := serve(t, "abc-123")
	assert.Equal(t, "abc-123", seen)
}

func TestMiddlewareReplacesMalformedID(t *testing.T) {
	seen, _ := serve(t, "bad id\nwith newline")
	assert.NotEqual(t, "bad id\nwith newline", seen)

	seen, _ = serve(t, strings.Repeat("a", 100))
	assert.Len(t, seen, 36)
}
