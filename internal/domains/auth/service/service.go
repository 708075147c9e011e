package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"

	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/otel"
	"roombook/internal/domains/auth/model"
	"roombook/internal/domains/auth/model/dto"
	"roombook/internal/domains/auth/repository"
	"roombook/shared"
	"roombook/shared/constant"
	"roombook/shared/failure"
	"roombook/shared/password"
	"roombook/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	msgInvalidCredentials = "invalid email or password"
	msgInvalidRefresh     = "invalid refresh token"
	msgEmailTaken         = "email already registered"
	msgDeactivated        = "user account is deactivated"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (dto.TokenResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.TokenResponse, error)
}

type serviceImpl struct {
	accounts repository.Account
	cfg      *config.Config
	otel     otel.Otel
	tokens   jwt.JWT
}

func New(accounts repository.Account, cfg *config.Config, otel otel.Otel, tokens jwt.JWT) Auth {
	return &serviceImpl{
		accounts: accounts,
		cfg:      cfg,
		otel:     otel,
		tokens:   tokens,
	}
}

// Register creates an account and signs the new user in. A unique violation on insert means another
// request registered the same address first.
func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	taken, err := s.accounts.EmailTaken(ctx, req.Email)
	if err != nil {
		return res, fmt.Errorf("failed to check email: %w", err)
	}

	if taken {
		return res, failure.Conflict(msgEmailTaken) //nolint:wrapcheck
	}

	hashed, err := password.Hash(req.Password)
	if err != nil {
		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	account := req.ToAccount(hashed, timezone.Now())

	if err = s.accounts.Create(ctx, account); err != nil {
		if shared.IsPqError(err, constant.PqErrorCodeUniqueViolation) {
			return res, failure.Conflict(msgEmailTaken) //nolint:wrapcheck
		}

		return res, fmt.Errorf("failed to create account: %w", err)
	}

	log.Info().Str("userID", account.ID).Msg("account registered")

	return s.issue(ctx, account)
}

// Login answers unknown addresses and wrong passwords alike.
func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	account, err := s.accounts.ByEmail(ctx, req.Email)
	if err != nil {
		return res, fmt.Errorf("failed to load account: %w", err)
	}

	if !account.Exists() || password.Verify(req.Password, account.Password) != nil {
		log.Warn().Str("email", req.Email).Msg("rejected login")

		return res, failure.Unauthorized(msgInvalidCredentials) //nolint:wrapcheck
	}

	if !account.Active {
		return res, failure.Forbidden(msgDeactivated) //nolint:wrapcheck
	}

	if res, err = s.issue(ctx, account); err != nil {
		return res, err
	}

	if err := s.accounts.TouchLastLogin(ctx, account.ID, timezone.Now()); err != nil {
		log.Warn().Err(err).Str("userID", account.ID).Msg("failed to record last login")
	}

	return res, nil
}

// RefreshToken re-reads the account so deactivation and role changes apply on the next refresh.
func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	claims, err := s.tokens.ValidateToken(ctx, req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("rejected refresh token")

		return res, failure.Unauthorized(msgInvalidRefresh) //nolint:wrapcheck
	}

	account, err := s.accounts.ByID(ctx, claims.UserID)
	if err != nil {
		return res, fmt.Errorf("failed to load account: %w", err)
	}

	if !account.Exists() {
		return res, failure.Unauthorized(msgInvalidRefresh) //nolint:wrapcheck
	}

	if !account.Active {
		return res, failure.Forbidden(msgDeactivated) //nolint:wrapcheck
	}

	return s.issue(ctx, account)
}

func (s *serviceImpl) issue(ctx context.Context, account model.Account) (res dto.TokenResponse, err error) {
	pair, err := s.tokens.GenerateTokenPair(ctx, account.ID, account.Email, account.Role)
	if err != nil {
		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(pair)

	return res, nil
}
