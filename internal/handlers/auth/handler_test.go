package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	otelMocks "roombook/infras/otel/mocks"
	"roombook/internal/domains/auth/mocks"
	"roombook/internal/domains/auth/model/dto"
	"roombook/internal/handlers/auth"
	"roombook/shared/failure"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func setup(t *testing.T) (http.Handler, *mocks.MockAuth) {
	t.Helper()

	ctrl := gomock.NewController(t)
	svc := mocks.NewMockAuth(ctrl)

	handler := auth.New(svc, otelMocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	return router, svc
}

func TestRegister(t *testing.T) {
	tokens := dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 900}

	tests := []struct {
		name      string
		body      string
		setupMock func(svc *mocks.MockAuth)
		wantCode  int
	}{
		{
			name: "created",
			body: `{"email":"jane@example.com","password":"password123"}`,
			setupMock: func(svc *mocks.MockAuth) {
				svc.EXPECT().Register(gomock.Any(), dto.RegisterRequest{Email: "jane@example.com", Password: "password123"}).
					Return(tokens, nil)
			},
			wantCode: http.StatusCreated,
		},
		{
			name:     "short password",
			body:     `{"email":"jane@example.com","password":"short"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "malformed body",
			body:     `{"email":`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "email taken",
			body: `{"email":"jane@example.com","password":"password123"}`,
			setupMock: func(svc *mocks.MockAuth) {
				svc.EXPECT().Register(gomock.Any(), gomock.Any()).
					Return(dto.TokenResponse{}, failure.Conflict("email already registered"))
			},
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := setup(t)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(tt.body))

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusCreated {
				var body struct {
					Data dto.TokenResponse `json:"data"`
				}

				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				assert.Equal(t, tokens, body.Data)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(svc *mocks.MockAuth)
		wantCode  int
	}{
		{
			name: "ok",
			body: `{"email":"jane@example.com","password":"password123"}`,
			setupMock: func(svc *mocks.MockAuth) {
				svc.EXPECT().Login(gomock.Any(), gomock.Any()).Return(dto.TokenResponse{AccessToken: "access"}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:     "missing password",
			body:     `{"email":"jane@example.com"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "wrong credentials",
			body: `{"email":"jane@example.com","password":"nope"}`,
			setupMock: func(svc *mocks.MockAuth) {
				svc.EXPECT().Login(gomock.Any(), gomock.Any()).
					Return(dto.TokenResponse{}, failure.Unauthorized("invalid email or password"))
			},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := setup(t)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(tt.body))

			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRefreshToken(t *testing.T) {
	router, svc := setup(t)

	svc.EXPECT().RefreshToken(gomock.Any(), dto.RefreshTokenRequest{RefreshToken: "stale"}).
		Return(dto.TokenResponse{}, failure.Unauthorized("invalid refresh token"))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh-token", strings.NewReader(`{"refresh_token":"stale"}`))

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
}
