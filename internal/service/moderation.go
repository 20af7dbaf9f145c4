package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"foodcrimes/internal/models"
	"foodcrimes/internal/notifications"
	"foodcrimes/internal/observability"
	"foodcrimes/internal/repository"

	"gorm.io/gorm"
)

// ModerationService moves suggestions through the review queue.
type ModerationService struct {
	db          *gorm.DB
	suggestions repository.SuggestionRepository
	catalog     repository.CatalogRepository
	events      notifications.Publisher
}

type SubmitInput struct {
	Item   string
	Status string
	Date   string
	Type   string
}

type ApproveInput struct {
	ID   uint
	Item string
	Type string
}

// ApproveResult describes what an approval changed.
type ApproveResult struct {
	Item  string
	Kind  models.CatalogKind
	Added bool
}

type UpdateInput struct {
	ID     uint
	Item   string
	Status string
}

func NewModerationService(
	db *gorm.DB,
	suggestions repository.SuggestionRepository,
	catalog repository.CatalogRepository,
	events notifications.Publisher,
) *ModerationService {
	if events == nil {
		events = notifications.NopPublisher{}
	}
	return &ModerationService{db: db, suggestions: suggestions, catalog: catalog, events: events}
}

// Submit queues a new suggestion. A missing type means food.
func (s *ModerationService) Submit(ctx context.Context, in SubmitInput) (sug *models.Suggestion, err error) {
	defer func() { observability.RecordModeration("submit", err) }()

	item := strings.TrimSpace(in.Item)
	date := strings.TrimSpace(in.Date)
	if item == "" || strings.TrimSpace(in.Status) == "" || date == "" {
		return nil, models.NewValidationError("Missing required fields: item, status and date")
	}
	status, ok := models.ParseSuggestionStatus(in.Status)
	if !ok {
		return nil, models.NewValidationError(fmt.Sprintf("Invalid status %q", in.Status))
	}
	kind := models.CatalogFood
	if strings.TrimSpace(in.Type) != "" {
		if kind, ok = models.ParseCatalogKind(in.Type); !ok {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid type %q: must be food or preparation", in.Type))
		}
	}

	sug = &models.Suggestion{Item: item, Status: status, Date: date, Type: kind}
	if err := s.suggestions.Create(ctx, sug); err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.EventSuggestionSubmitted, sug)
	return sug, nil
}

// List returns the queue, optionally narrowed to one status.
func (s *ModerationService) List(ctx context.Context, status string) ([]models.Suggestion, error) {
	var filter models.SuggestionStatus
	if strings.TrimSpace(status) != "" {
		parsed, ok := models.ParseSuggestionStatus(status)
		if !ok {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid status %q", status))
		}
		filter = parsed
	}
	return s.suggestions.List(ctx, filter)
}

// Approve moves a suggestion into its catalog. The catalog insert and the
// queue removal commit together or not at all. A blank item falls back to the
// suggestion's own text.
func (s *ModerationService) Approve(ctx context.Context, in ApproveInput) (res *ApproveResult, err error) {
	defer func() { observability.RecordModeration("approve", err) }()

	kind, ok := models.ParseCatalogKind(in.Type)
	if !ok {
		return nil, models.NewInvalidArgumentError("Invalid type. Must be 'food' or 'preparation'.")
	}
	if in.ID == 0 {
		return nil, models.NewValidationError("Missing suggestion id")
	}

	res = &ApproveResult{Kind: kind}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sug, err := s.suggestions.WithTx(tx).GetByID(ctx, in.ID)
		if err != nil {
			return err
		}
		res.Item = strings.TrimSpace(in.Item)
		if res.Item == "" {
			res.Item = sug.Item
		}
		if res.Added, err = s.catalog.WithTx(tx).InsertIfAbsent(ctx, kind, res.Item); err != nil {
			return err
		}
		return s.suggestions.WithTx(tx).Delete(ctx, sug.ID)
	})
	if err != nil {
		return nil, asStoreError(err)
	}

	slog.InfoContext(ctx, "Suggestion approved",
		slog.Uint64("suggestion_id", uint64(in.ID)),
		slog.String("list", kind.ListName()),
		slog.Bool("added", res.Added))
	s.publish(ctx, notifications.EventSuggestionApproved, map[string]any{
		"id": in.ID, "item": res.Item, "type": kind, "added": res.Added,
	})
	return res, nil
}

// Reject removes a suggestion from the queue.
func (s *ModerationService) Reject(ctx context.Context, id uint) (err error) {
	defer func() { observability.RecordModeration("reject", err) }()

	if id == 0 {
		return models.NewValidationError("Missing suggestion id")
	}
	if err := s.suggestions.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, notifications.EventSuggestionRejected, map[string]any{"id": id})
	return nil
}

// Update edits a suggestion in place. Blank fields keep their current value.
func (s *ModerationService) Update(ctx context.Context, in UpdateInput) (sug *models.Suggestion, err error) {
	defer func() { observability.RecordModeration("update", err) }()

	if in.ID == 0 {
		return nil, models.NewValidationError("Missing suggestion id")
	}
	var status models.SuggestionStatus
	if strings.TrimSpace(in.Status) != "" {
		parsed, ok := models.ParseSuggestionStatus(in.Status)
		if !ok {
			return nil, models.NewValidationError(fmt.Sprintf("Invalid status %q", in.Status))
		}
		status = parsed
	}

	sug, err = s.suggestions.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}
	if item := strings.TrimSpace(in.Item); item != "" {
		sug.Item = item
	}
	if status != "" {
		sug.Status = status
	}
	if err := s.suggestions.Update(ctx, sug); err != nil {
		return nil, err
	}
	s.publish(ctx, notifications.EventSuggestionUpdated, sug)
	return sug, nil
}

func (s *ModerationService) publish(ctx context.Context, eventType string, payload any) {
	if err := s.events.Publish(ctx, eventType, payload); err != nil {
		slog.WarnContext(ctx, "Failed to publish event", slog.String("event", eventType), slog.Any("error", err))
	}
}

// asStoreError keeps AppErrors as they are and wraps anything else, such as a
// failed commit, as a StoreError.
func asStoreError(err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewStoreError(err)
}
