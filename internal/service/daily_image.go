package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"foodcrimes/internal/featureflags"
	"foodcrimes/internal/imagegen"
	"foodcrimes/internal/imageproc"
	"foodcrimes/internal/middleware"
	"foodcrimes/internal/models"
	"foodcrimes/internal/notifications"
	"foodcrimes/internal/observability"
	"foodcrimes/internal/prompt"
	"foodcrimes/internal/repository"
	"foodcrimes/internal/storage"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
)

// Composer renders the prompt for today's dish.
type Composer interface {
	Compose(ctx context.Context) (*prompt.Composition, error)
}

// DailyImageOptions bounds the external calls made by a run.
type DailyImageOptions struct {
	GenerationTimeout time.Duration
	UploadTimeout     time.Duration
	MaxDimension      int
	Location          *time.Location
}

// DailyImageResult is the outcome of a run. Created is false when the image
// for the day already existed.
type DailyImageResult struct {
	Image     *models.DailyImage
	Created   bool
	Archetype string
}

// DailyImageService generates, uploads and records one image per calendar day.
type DailyImageService struct {
	db        *gorm.DB
	images    repository.DailyImageRepository
	composer  Composer
	generator imagegen.Generator
	uploader  storage.Uploader
	flags     *featureflags.Manager
	events    notifications.Publisher
	opts      DailyImageOptions
	now       func() time.Time
}

func NewDailyImageService(
	db *gorm.DB,
	images repository.DailyImageRepository,
	composer Composer,
	generator imagegen.Generator,
	uploader storage.Uploader,
	flags *featureflags.Manager,
	events notifications.Publisher,
	opts DailyImageOptions,
) *DailyImageService {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if events == nil {
		events = notifications.NopPublisher{}
	}
	return &DailyImageService{
		db:        db,
		images:    images,
		composer:  composer,
		generator: generator,
		uploader:  uploader,
		flags:     flags,
		events:    events,
		opts:      opts,
		now:       time.Now,
	}
}

// SetClock replaces the time source.
func (s *DailyImageService) SetClock(now func() time.Time) {
	s.now = now
}

// Today is the current calendar date in the configured timezone.
func (s *DailyImageService) Today() string {
	return s.now().In(s.opts.Location).Format(models.DateLayout)
}

// Latest returns the most recent image.
func (s *DailyImageService) Latest(ctx context.Context) (*models.DailyImage, error) {
	return s.images.Latest(ctx)
}

// History returns up to limit images, newest first.
func (s *DailyImageService) History(ctx context.Context, limit int) ([]models.DailyImage, error) {
	return s.images.List(ctx, limit)
}

// Run produces today's image. If one is already recorded it is returned
// without any external call. A failed run leaves nothing behind and may be
// retried.
func (s *DailyImageService) Run(ctx context.Context) (res *DailyImageResult, err error) {
	ctx = middleware.WithJobRunID(ctx, uuid.NewString())
	date := s.Today()

	span, ctx := observability.NewSpan(ctx, "daily_image.run", attribute.String("generation_date", date))
	defer span.End()

	outcome := "failed"
	defer func() {
		if err != nil {
			span.SetError(err)
			slog.ErrorContext(ctx, "Daily image run failed", slog.String("generation_date", date), slog.Any("error", err))
		}
		observability.DailyImageRuns.WithLabelValues(outcome).Inc()
	}()

	existing, err := s.images.GetByDate(ctx, date)
	if err == nil {
		outcome = "existing"
		return &DailyImageResult{Image: existing}, nil
	}
	if !models.IsCode(err, models.CodeNotFound) {
		return nil, err
	}

	comp, err := s.compose(ctx)
	if err != nil {
		return nil, err
	}
	span.AddAttributes(attribute.String("archetype", comp.Archetype))

	raw, err := s.generate(ctx, comp.Prompt)
	if err != nil {
		return nil, err
	}

	format := imageproc.FormatPNG
	if s.flags.Enabled(featureflags.DailyImageWebP, date) {
		format = imageproc.FormatWebP
	}
	processed, err := imageproc.Normalize(raw.Data, imageproc.Options{MaxDimension: s.opts.MaxDimension, Format: format})
	if err != nil {
		return nil, models.NewGenerationFailedError("Image backend returned an invalid image", err)
	}

	key := fmt.Sprintf("crime-%s.%s", date, processed.Ext)
	publicURL, err := s.upload(ctx, key, processed)
	if err != nil {
		return nil, err
	}

	img, created, err := s.persist(ctx, &models.DailyImage{
		GenerationDate:  date,
		FoodCombination: comp.DishTitle,
		PublicURL:       publicURL,
	})
	if err != nil {
		return nil, err
	}

	if created {
		outcome = "created"
		slog.InfoContext(ctx, "Daily image created",
			slog.String("generation_date", date),
			slog.String("food_combination", comp.DishTitle),
			slog.String("public_url", publicURL))
		if perr := s.events.Publish(ctx, notifications.EventDailyImageCreated, img.ToResponse()); perr != nil {
			slog.WarnContext(ctx, "Failed to publish event", slog.String("event", notifications.EventDailyImageCreated), slog.Any("error", perr))
		}
	} else {
		outcome = "raced"
		slog.InfoContext(ctx, "Daily image recorded by a concurrent run", slog.String("generation_date", date))
	}
	return &DailyImageResult{Image: img, Created: created, Archetype: comp.Archetype}, nil
}

func (s *DailyImageService) compose(ctx context.Context) (*prompt.Composition, error) {
	defer observability.TrackStage("compose")()
	comp, err := s.composer.Compose(ctx)
	if err != nil {
		return nil, asStoreError(err)
	}
	return comp, nil
}

func (s *DailyImageService) generate(ctx context.Context, text string) (*imagegen.Image, error) {
	defer observability.TrackStage("generate")()
	span, ctx := observability.NewSpan(ctx, "daily_image.generate")
	defer span.End()

	if s.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.GenerationTimeout)
		defer cancel()
	}

	img, err := s.generator.Generate(ctx, text)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		span.SetError(err)
		return nil, models.NewGenerationFailedError("Image generation timed out", err)
	case err != nil:
		span.SetError(err)
		return nil, models.NewGenerationFailedError("Failed to generate image", err)
	case img == nil || len(img.Data) == 0:
		return nil, models.NewGenerationFailedError("Failed to generate image", imagegen.ErrNoImage)
	}
	return img, nil
}

func (s *DailyImageService) upload(ctx context.Context, key string, img *imageproc.Result) (string, error) {
	defer observability.TrackStage("upload")()
	span, ctx := observability.NewSpan(ctx, "daily_image.upload", attribute.String("key", key))
	defer span.End()

	if s.opts.UploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.UploadTimeout)
		defer cancel()
	}

	url, err := s.uploader.Upload(ctx, key, img.Data, img.ContentType)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		span.SetError(err)
		return "", models.NewUploadFailedError("Image upload timed out", err)
	case err != nil:
		span.SetError(err)
		return "", models.NewUploadFailedError("Failed to upload image", err)
	case url == "":
		return "", models.NewUploadFailedError("Upload did not return a public URL", storage.ErrEmptyURL)
	}
	observability.DailyImageBytes.Observe(float64(len(img.Data)))
	return url, nil
}

// persist inserts img unless the day is already taken, in which case the
// stored row wins and created is false.
func (s *DailyImageService) persist(ctx context.Context, img *models.DailyImage) (out *models.DailyImage, created bool, err error) {
	defer observability.TrackStage("persist")()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.images.WithTx(tx)
		created, err = repo.InsertIfAbsent(ctx, img)
		if err != nil {
			return err
		}
		if created {
			out = img
			return nil
		}
		out, err = repo.GetByDate(ctx, img.GenerationDate)
		return err
	})
	if err != nil {
		return nil, false, asStoreError(err)
	}
	return out, created, nil
}
