package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"roombook/config"
	"roombook/infras/jwt"
	jwtMocks "roombook/infras/jwt/mocks"
	otelMocks "roombook/infras/otel/mocks"
	"roombook/permissions"
	"roombook/shared/constant"
	"roombook/shared/identity"
	"roombook/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testPermissions = `{
  "skip": false,
  "endpoints": [
    { "path": "/v1/rooms", "method": "GET", "permissions": [], "skip": true },
    { "path": "/v1/rooms", "method": "POST", "permissions": ["admin", "superadmin"] },
    { "path": "/v1/bookings/{id}", "method": "DELETE", "permissions": ["user", "admin", "superadmin"] }
  ]
}`

type seen struct {
	caller identity.Identity
	ok     bool
	calls  int
}

func newRouter(t *testing.T, jwtSvc jwt.JWT, apiKey string) (http.Handler, *seen) {
	t.Helper()

	perms, err := permissions.Parse([]byte(testPermissions))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKey = apiKey

	mw := middleware.NewAuthRoleMiddleware(jwtSvc, otelMocks.NewOtel(), perms, cfg)
	state := &seen{}

	handler := func(w http.ResponseWriter, r *http.Request) {
		state.caller, state.ok = identity.FromContext(r.Context())
		state.calls++
		w.WriteHeader(http.StatusNoContent)
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(mw.APIKey)
		r.Use(mw.Auth)
		r.Use(mw.RBAC)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/rooms", handler)
			r.Post("/rooms", handler)
			r.Delete("/bookings/{id}", handler)
		})
	})

	return router, state
}

func claims(userID, role string) *jwt.Claims {
	return &jwt.Claims{UserID: userID, Email: userID + "@example.com", Role: role, TokenID: "token-1", Type: jwt.AccessToken}
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		apiKey     string
		setupMock  func(m *jwtMocks.MockJWT)
		wantCode   int
		wantCaller string
	}{
		{
			name:     "public route anonymous",
			method:   http.MethodGet,
			path:     "/v1/rooms",
			wantCode: http.StatusNoContent,
		},
		{
			name:   "public route keeps identity",
			method: http.MethodGet,
			path:   "/v1/rooms",
			header: "Bearer good",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(claims("user-1", constant.RoleUser), nil)
			},
			wantCode:   http.StatusNoContent,
			wantCaller: "user-1",
		},
		{
			name:   "public route ignores bad token",
			method: http.MethodGet,
			path:   "/v1/rooms",
			header: "Bearer expired",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "expired", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusNoContent,
		},
		{
			name:     "missing token",
			method:   http.MethodPost,
			path:     "/v1/rooms",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "malformed header",
			method:   http.MethodPost,
			path:     "/v1/rooms",
			header:   "Token abc",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "expired token",
			method: http.MethodPost,
			path:   "/v1/rooms",
			header: "Bearer expired",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "expired", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:   "user on admin route",
			method: http.MethodPost,
			path:   "/v1/rooms",
			header: "Bearer good",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(claims("user-1", constant.RoleUser), nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "admin on admin route",
			method: http.MethodPost,
			path:   "/v1/rooms",
			header: "Bearer good",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(claims("admin-1", constant.RoleAdmin), nil)
			},
			wantCode:   http.StatusNoContent,
			wantCaller: "admin-1",
		},
		{
			name:   "user on parameterised route",
			method: http.MethodDelete,
			path:   "/v1/bookings/booking-1",
			header: "Bearer good",
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "good", jwt.AccessToken).Return(claims("user-1", constant.RoleUser), nil)
			},
			wantCode:   http.StatusNoContent,
			wantCaller: "user-1",
		},
		{
			name:     "valid api key",
			method:   http.MethodPost,
			path:     "/v1/rooms",
			apiKey:   "secret",
			wantCode: http.StatusNoContent,
		},
		{
			name:     "wrong api key",
			method:   http.MethodPost,
			path:     "/v1/rooms",
			apiKey:   "guess",
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jwtSvc := jwtMocks.NewMockJWT(ctrl)

			if tt.setupMock != nil {
				tt.setupMock(jwtSvc)
			}

			router, state := newRouter(t, jwtSvc, "secret")

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(constant.RequestHeaderAuthorization, tt.header)
			}

			if tt.apiKey != "" {
				req.Header.Set(constant.RequestHeaderAPIKey, tt.apiKey)
			}

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode != http.StatusNoContent {
				assert.Zero(t, state.calls)

				return
			}

			assert.Equal(t, 1, state.calls)
			assert.Equal(t, tt.wantCaller != "", state.ok)
			assert.Equal(t, tt.wantCaller, state.caller.UserID)
		})
	}
}

func TestAPIKeyDisabled(t *testing.T) {
	router, state := newRouter(t, jwtMocks.NewMockJWT(gomock.NewController(t)), "")

	req := httptest.NewRequest(http.MethodPost, "/v1/rooms", nil)
	req.Header.Set(constant.RequestHeaderAPIKey, "anything")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Zero(t, state.calls)
}
