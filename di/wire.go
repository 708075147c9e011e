//go:build wireinject
// +build wireinject

package di

import (
	"roombook/config"
	"roombook/infras/jwt"
	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/infras/postgres"
	"roombook/infras/redis"
	"roombook/infras/s3"
	auditRepository "roombook/internal/domains/audit/repository"
	auditService "roombook/internal/domains/audit/service"
	authRepository "roombook/internal/domains/auth/repository"
	authService "roombook/internal/domains/auth/service"
	"roombook/internal/domains/booking/event"
	bookingRepository "roombook/internal/domains/booking/repository"
	bookingService "roombook/internal/domains/booking/service"
	roomRepository "roombook/internal/domains/room/repository"
	roomService "roombook/internal/domains/room/service"
	auditHandler "roombook/internal/handlers/audit"
	authHandler "roombook/internal/handlers/auth"
	bookingHandler "roombook/internal/handlers/booking"
	roomHandler "roombook/internal/handlers/room"
	"roombook/permissions"
	"roombook/shared/cache"
	"roombook/shared/lock"
	"roombook/transport/http"
	"roombook/transport/http/middleware"
	"roombook/transport/http/router"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	lock.New,
	event.New,
)

var authDomain = wire.NewSet(
	authRepository.New,
	authService.New,
)

var roomDomain = wire.NewSet(
	roomRepository.New,
	roomService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.NewClock,
	bookingService.New,
)

var auditDomain = wire.NewSet(
	auditRepository.New,
	auditService.New,
)

var domains = wire.NewSet(
	authDomain,
	roomDomain,
	bookingDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	roomHandler.New,
	bookingHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}

func InitializeWorker() *auditHandler.Consumer {
	wire.Build(
		config.Get,
		postgres.New,
		otel.New,
		kafka.New,
		auditDomain,
		auditHandler.New,
	)

	return &auditHandler.Consumer{}
}
