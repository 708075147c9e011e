package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Booking=MockBookingService,Clock=MockClock

import (
	"context"
	"fmt"
	"time"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/internal/domains/booking/event"
	"roombook/internal/domains/booking/model"
	"roombook/internal/domains/booking/model/dto"
	"roombook/internal/domains/booking/repository"
	"roombook/internal/domains/booking/schedule"
	roomRepo "roombook/internal/domains/room/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/identity"
	"roombook/shared/lock"
	"roombook/shared/timezone"

	"github.com/rs/zerolog/log"
)

var (
	cacheGetBooking    = shared.BuildCacheKey(constant.CacheKeyBooking, "get")
	cacheGetAllBooking = shared.BuildCacheKey(constant.CacheKeyBooking, "gets")
	cacheCountBooking  = shared.BuildCacheKey(constant.CacheKeyBooking, "count")
	cachePublicBooking = shared.BuildCacheKey(constant.CacheKeyBooking, "public")
)

// Booking exposes the reservation workflow. The caller is read from the context with identity.FromContext.
type Booking interface {
	ValidateSubmission(ctx context.Context, req dto.SubmitBookingRequest) (dto.ValidatedBooking, error)
	CheckConflict(ctx context.Context, query dto.ConflictQuery) (dto.ConflictResponse, error)
	Submit(ctx context.Context, req dto.SubmitBookingRequest) (dto.BookingResponse, error)
	Approve(ctx context.Context, id string) (dto.BookingResponse, error)
	Reject(ctx context.Context, id string) (dto.BookingResponse, error)
	Delete(ctx context.Context, id string) error

	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.Filter) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, params gDto.QueryParams, filter dto.Filter) (dto.GetBookingsResponse, error)
	GetPublic(ctx context.Context, filter dto.Filter) (dto.GetPublicBookingsResponse, error)
}

// Clock supplies the current time in the application timezone.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return timezone.Now()
}

func NewClock() Clock {
	return systemClock{}
}

type serviceImpl struct {
	repo      repository.Booking
	roomRepo  roomRepo.Room
	detector  *schedule.Detector
	locker    lock.Locker
	publisher event.Publisher
	clock     Clock
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
}

func New(
	repo repository.Booking,
	roomRepo roomRepo.Room,
	locker lock.Locker,
	publisher event.Publisher,
	clock Clock,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		repo:      repo,
		roomRepo:  roomRepo,
		detector:  schedule.NewDetector(repo),
		locker:    locker,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := identity.FromContext(ctx)
	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		if !caller.CanAccess(res.UserID) {
			return dto.BookingResponse{}, failure.Forbidden("only the owner or an admin can view this booking") // nolint:wrapcheck
		}

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, schedule.BookingNotFound(id) // nolint:wrapcheck
	}

	if !caller.CanAccess(booking.UserID) {
		return res, failure.Forbidden("only the owner or an admin can view this booking") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

// GetAll lists every booking for administrators, ordered by status then newest date.
func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.Filter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := identity.FromContext(ctx)
	if !caller.IsAdmin() {
		return res, failure.Forbidden("only an admin can list all bookings") // nolint:wrapcheck
	}

	params.OrderBy = model.OrderAdmin

	return s.list(ctx, params, filter.ToFilterGroup())
}

// GetMine lists the caller's bookings, newest date first.
func (s *serviceImpl) GetMine(ctx context.Context, params gDto.QueryParams, filter dto.Filter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, ok := identity.FromContext(ctx)
	if !ok {
		return res, failure.Unauthorized("authentication required") // nolint:wrapcheck
	}

	filter.UserID = caller.UserID
	params.OrderBy = model.OrderMine

	return s.list(ctx, params, filter.ToFilterGroup())
}

func (s *serviceImpl) list(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.count(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, params.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) count(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

// GetPublic returns approved bookings only, ordered by date then start time. Room and date filters are optional.
func (s *serviceImpl) GetPublic(ctx context.Context, filter dto.Filter) (res dto.GetPublicBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetPublic")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if filter.BookingDate != constant.Empty {
		if _, err = schedule.ParseDate(filter.BookingDate); err != nil {
			return res, err
		}
	}

	filter.UserID = constant.Empty
	filter.Status = schedule.StatusApproved.String()

	params := gDto.QueryParams{OrderBy: model.OrderPublic}
	group := filter.ToFilterGroup()
	cacheKey := shared.BuildCacheKeyWithQuery(cachePublicBooking, params, group)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for public bookings")

		return res, nil
	}

	models, err := s.repo.GetAll(ctx, params, group)
	if err != nil {
		log.Error().Err(err).Msg("failed to get public bookings")

		return res, fmt.Errorf("failed to get public bookings: %w", err)
	}

	res.FromModels(models)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save public bookings to cache")
		}
	}()

	return res, nil
}

// afterWrite drops cached views and publishes events. It runs detached from the request.
func (s *serviceImpl) afterWrite(ctx context.Context, bookingID string, events ...event.Event) {
	go func() {
		c := context.WithoutCancel(ctx)

		if bookingID != constant.Empty {
			if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, bookingID)); err != nil {
				log.Error().Err(err).Msg("failed to delete booking from cache")
			}
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
		shared.InvalidateCaches(c, s.cache, cachePublicBooking)

		if len(events) == 0 {
			return
		}

		if err := s.publisher.Publish(c, events...); err != nil {
			log.Error().Err(err).Str("bookingID", bookingID).Msg("failed to publish booking events")
		}
	}()
}
