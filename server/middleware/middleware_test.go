package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGinRequestIDMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(GinRequestIDMiddleware())

	var fromGin, fromCtx string
	router.GET("/ping", func(c *gin.Context) {
		fromGin = GetRequestIDFromGin(c)
		fromCtx = GetRequestID(c.Request.Context())
		c.Status(http.StatusOK)
	})

	// Генерируется новый ID
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if fromGin == "" || fromGin != fromCtx {
		t.Errorf("request id mismatch: gin=%q ctx=%q", fromGin, fromCtx)
	}
	if w.Header().Get(RequestIDHeader) != fromGin {
		t.Errorf("response header = %q, want %q", w.Header().Get(RequestIDHeader), fromGin)
	}

	// Переданный клиентом ID сохраняется
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "client-id")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if fromGin != "client-id" {
		t.Errorf("request id = %q, want client-id", fromGin)
	}
}

func TestGetRequestID_Empty(t *testing.T) {
	if id := GetRequestID(nil); id != "" {
		t.Errorf("GetRequestID(nil) = %q", id)
	}
	if id := GetRequestIDFromGin(nil); id != "" {
		t.Errorf("GetRequestIDFromGin(nil) = %q", id)
	}
}

func TestGinLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(GinRequestIDMiddleware(), GinRecoveryMiddleware(logger), GinLoggerMiddleware(logger))
	router.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok?x=1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(buf.String(), `"path":"/ok?x=1"`) {
		t.Errorf("request log missing path: %s", buf.String())
	}

	buf.Reset()
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(buf.String(), "Panic recovered") {
		t.Errorf("panic was not logged: %s", buf.String())
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	if !rl.Allow("a") || !rl.Allow("a") {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow("a") {
		t.Error("third request should be limited")
	}
	if !rl.Allow("b") {
		t.Error("other clients have their own limit")
	}

	unlimited := NewRateLimiter(0, 0)
	for i := 0; i < 100; i++ {
		if !unlimited.Allow("a") {
			t.Fatal("zero rate disables limiting")
		}
	}
}
