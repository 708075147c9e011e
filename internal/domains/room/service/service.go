package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=../mocks/service_mock.go -package=mocks -mock_names=Room=MockRoomService

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"

	"roombook/config"
	"roombook/infras/otel"
	"roombook/infras/s3"
	"roombook/internal/domains/booking/event"
	"roombook/internal/domains/booking/schedule"
	"roombook/internal/domains/room/model"
	"roombook/internal/domains/room/model/dto"
	"roombook/internal/domains/room/repository"
	"roombook/shared"
	"roombook/shared/cache"
	"roombook/shared/constant"
	gDto "roombook/shared/dto"
	"roombook/shared/failure"
	"roombook/shared/identity"
	"roombook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	cacheGetRoom    = shared.BuildCacheKey(constant.CacheKeyRoom, "get")
	cacheGetAllRoom = shared.BuildCacheKey(constant.CacheKeyRoom, "gets")
	cacheCountRoom  = shared.BuildCacheKey(constant.CacheKeyRoom, "count")
)

type Room interface {
	Create(ctx context.Context, req dto.CreateRoomRequest) (dto.RoomResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetRoomsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.RoomResponse, error)
	Update(ctx context.Context, req dto.UpdateRoomRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo      repository.Room
	publisher event.Publisher
	cfg       *config.Config
	cache     cache.RedisCache
	otel      otel.Otel
	s3        s3.S3
}

func New(repo repository.Room, publisher event.Publisher, cfg *config.Config, cache cache.RedisCache, otel otel.Otel, s3 s3.S3) Room {
	return &serviceImpl{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		cache:     cache,
		otel:      otel,
		s3:        s3,
	}
}

// Create stores a room after checking that it opens before it closes. Times are stored zero padded.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateRoomRequest) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := identity.FromContext(ctx)

	hours, err := schedule.ParseHours(req.OpenTime, req.CloseTime)
	if err != nil {
		return res, err //nolint:wrapcheck
	}

	imageURL, objectName, err := s.uploadImage(ctx, req.ImageFile, req.Image)
	if err != nil {
		return res, err
	}

	room := req.ToModel(caller.UserID, imageURL, hours.OpenClock(), hours.CloseClock())

	if err = s.repo.Insert(ctx, room); err != nil {
		s.removeImage(ctx, objectName)

		return res, fmt.Errorf("failed to create room: %w", err)
	}

	log.Info().Str("roomID", room.ID).Str("by", caller.UserID).Msg("room created")

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)
	}()

	res.FromModel(room)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetRoomsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllRoom, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for rooms")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get rooms")

		return res, fmt.Errorf("failed to get rooms: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save rooms to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountRoom, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count rooms")

		return res, fmt.Errorf("failed to count rooms: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.RoomResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(cacheGetRoom, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for room")

		return res, nil
	}

	room, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	res.FromModel(room)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save room to cache")
		}
	}()

	return res, nil
}

// Update applies the non-empty fields. Operating hours are re-validated against the stored values they are merged with.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateRoomRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := identity.FromContext(ctx)

	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if req.OpenTime != constant.Empty || req.CloseTime != constant.Empty {
		open, closing := current.OpenTime, current.CloseTime
		if req.OpenTime != constant.Empty {
			open = req.OpenTime
		}

		if req.CloseTime != constant.Empty {
			closing = req.CloseTime
		}

		hours, err := schedule.ParseHours(open, closing)
		if err != nil {
			return err //nolint:wrapcheck
		}

		if err := s.checkHoursInUse(ctx, id, hours); err != nil {
			return err
		}

		req.OpenTime, req.CloseTime = hours.OpenClock(), hours.CloseClock()
	}

	imageURL, objectName, err := s.uploadImage(ctx, req.ImageFile, req.Image)
	if err != nil {
		return err
	}

	fields := shared.TransformFields(req, caller.UserID)
	if imageURL != constant.Empty {
		fields[model.FieldImage] = imageURL
	}

	if err = s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to update room")
		s.removeImage(ctx, objectName)

		return fmt.Errorf("failed to update room: %w", err)
	}

	if imageURL != constant.Empty && current.Image != constant.Empty {
		s.removeImage(ctx, s.s3.ObjectName(model.EntityName, current.Image))
	}

	log.Info().Str("roomID", id).Str("by", caller.UserID).Msg("room updated")

	s.invalidate(ctx, id, false)

	return nil
}

// checkHoursInUse refuses hours that would strand approved bookings from today on. Past bookings are history
// and do not block the change.
func (s *serviceImpl) checkHoursInUse(ctx context.Context, id string, hours schedule.Hours) error {
	stranded, err := s.repo.ApprovedOutsideHours(ctx, id, hours, timezone.Now())
	if err != nil {
		log.Error().Err(err).Str("roomID", id).Msg("failed to check approved bookings against new hours")

		return fmt.Errorf("failed to check approved bookings: %w", err)
	}

	if stranded > 0 {
		log.Warn().Str("roomID", id).Int("approved", stranded).Msg("new operating hours would strand approved bookings")

		return schedule.HoursInUse(hours, stranded) //nolint:wrapcheck
	}

	return nil
}

// Delete removes the room together with all of its bookings.
func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	caller, _ := identity.FromContext(ctx)

	room, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	removed, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to delete room")

		return fmt.Errorf("failed to delete room: %w", err)
	}

	log.Info().Str("roomID", id).Int64("removedBookings", removed).Str("by", caller.UserID).Msg("room deleted")

	if room.Image != constant.Empty {
		s.removeImage(ctx, s.s3.ObjectName(model.EntityName, room.Image))
	}

	s.invalidate(ctx, id, true)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.publisher.Publish(c, event.RoomDeleted(id, caller.UserID, removed, timezone.Now())); err != nil {
			log.Error().Err(err).Str("roomID", id).Msg("failed to publish room deletion")
		}
	}()

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Room, error) {
	room, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get room")

		return room, fmt.Errorf("failed to get room: %w", err)
	}

	if room.ID == constant.Empty {
		return room, failure.NotFound("room not found") // nolint:wrapcheck
	}

	return room, nil
}

// invalidate drops the cached room views. Deleting a room also drops every cached booking view since its bookings are gone.
func (s *serviceImpl) invalidate(ctx context.Context, id string, bookings bool) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetRoom, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete room from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllRoom)
		shared.InvalidateCaches(c, s.cache, cacheCountRoom)

		if bookings {
			shared.InvalidateCaches(c, s.cache, constant.CacheKeyBooking)
		}
	}()
}

// uploadImage stores the optional image under a random name that keeps the original extension.
func (s *serviceImpl) uploadImage(ctx context.Context, file multipart.File, header *multipart.FileHeader) (url, objectName string, err error) {
	if header == nil {
		return constant.Empty, constant.Empty, nil
	}

	objectName = uuid.NewString() + filepath.Ext(header.Filename)

	url, err = s.s3.UploadFile(ctx, model.EntityName, file, header, objectName)
	if err != nil {
		log.Error().Err(err).Msg("failed to upload room image")

		return constant.Empty, constant.Empty, fmt.Errorf("failed to upload image: %w", err)
	}

	return url, objectName, nil
}

func (s *serviceImpl) removeImage(ctx context.Context, objectName string) {
	if objectName == constant.Empty {
		return
	}

	if err := s.s3.DeleteFile(ctx, model.EntityName, objectName); err != nil {
		log.Warn().Err(err).Str("object", objectName).Msg("failed to delete room image")
	}
}
