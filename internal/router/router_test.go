package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/FACorreiaa/go-itinerary-mapsync/app/middleware"
	"github.com/FACorreiaa/go-itinerary-mapsync/config"
	"github.com/FACorreiaa/go-itinerary-mapsync/internal/container"
)

var secret = []byte("router-secret")

func setupRouterTest(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := container.NewContainer(context.Background(), &config.Config{}, logger)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	return SetupRouter(&Config{
		ItineraryHandler:       c.ItineraryHandler,
		AuthenticateMiddleware: appMiddleware.Authenticate(secret, "", logger),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
	})
}

func bearer(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, appMiddleware.Claims{
		UserID: "u-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	s, err := token.SignedString(secret)
	require.NoError(t, err)
	return "Bearer " + s
}

func TestSetupRouter(t *testing.T) {
	h := setupRouterTest(t)

	t.Run("ping is public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "pong", rr.Body.String())
	})

	t.Run("metrics is public", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("swagger doc is served", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "/map/sessions")
	})

	t.Run("api requires a token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/map/sessions", strings.NewReader(`{"itinerary_id":"trip-1"}`))
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("api with token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/map/sessions", strings.NewReader(`{"itinerary_id":"trip-1"}`))
		req.Header.Set("Authorization", bearer(t))
		req.Header.Set("Content-Type", "application/json")
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"itinerary_id":"trip-1"`)
	})
}
