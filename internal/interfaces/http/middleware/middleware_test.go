package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func engine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.Any("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"visitor": c.GetString(VisitorKey)})
	})
	return r
}

func TestVisitor_IssuesAndKeepsCookie(t *testing.T) {
	r := engine(Visitor(time.Hour, false))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	id := cookies[0].Value
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: id})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), id)
}

func TestVisitor_ReplacesMalformedCookie(t *testing.T) {
	r := engine(Visitor(time.Hour, false))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: VisitorCookie, Value: "../../etc"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.NotContains(t, rec.Body.String(), "etc")
}

func TestRequestID_ReusesValidHeader(t *testing.T) {
	r := engine(RequestID())
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "not a uuid")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "not a uuid", rec.Header().Get(RequestIDHeader))
}

func TestRateLimit_RejectsBurst(t *testing.T) {
	cfg := config.SecurityConfig{RateLimitPerSecond: 1, RateLimitBurst: 2}
	r := engine(RateLimit(cfg, NewIPLimiter(1, 2)))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestIPLimiter_Prune(t *testing.T) {
	l := NewIPLimiter(1, 1)
	now := time.Now()
	l.now = func() time.Time { return now }
	first := l.Get("10.0.0.1")

	now = now.Add(time.Hour)
	l.Prune(time.Minute)
	assert.NotSame(t, first, l.Get("10.0.0.1"))
}

func TestCORS(t *testing.T) {
	cfg := config.SecurityConfig{
		CORSAllowedOrigins: []string{"https://shop.example.com", "*.example.org"},
		CORSAllowedMethods: []string{"GET", "POST"},
		CORSAllowedHeaders: []string{"Content-Type"},
	}
	r := engine(CORS(cfg))

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://a.example.org")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "https://a.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestSizeLimit(t *testing.T) {
	r := engine(RequestSizeLimit(8))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader(`{"a":"0123456789"}`)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTimeout_ReportsExpiredRequests(t *testing.T) {
	r := gin.New()
	r.Use(Timeout(10 * time.Millisecond))
	r.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
