package dto_test

import (
	"testing"
	"time"

	"roombook/infras/jwt"
	"roombook/internal/domains/auth/model/dto"
	"roombook/shared/constant"

	"github.com/stretchr/testify/assert"
)

func TestTokenResponse_FromTokenPair(t *testing.T) {
	pair := &jwt.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}

	var res dto.TokenResponse
	res.FromTokenPair(pair)

	assert.Equal(t, dto.TokenResponse{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer", ExpiresIn: 900}, res)
}

func TestRegisterRequest_ToAccount(t *testing.T) {
	name := "Ana"
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	req := dto.RegisterRequest{Email: "ana@example.com", Password: "secret123", FullName: &name}

	account := req.ToAccount("hashed", now)

	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "hashed", account.Password)
	assert.Equal(t, constant.RoleUser, account.Role)
	assert.True(t, account.Active)
	assert.Equal(t, account.ID, account.CreatedBy)
	assert.Equal(t, now, account.CreatedAt)
	assert.Equal(t, &name, account.FullName)
	assert.Nil(t, account.LastLogin)
}
