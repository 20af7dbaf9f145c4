package server

import (
	"fmt"

	"foodcrimes/internal/models"
	"foodcrimes/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SuggestionRequest is the body of POST /api/suggestions.
type SuggestionRequest struct {
	Item   string `json:"item"`
	Status string `json:"status"`
	Date   string `json:"date"`
	Type   string `json:"type,omitempty"`
}

// DuplicateCheckRequest is the body of POST /api/suggestions/check_duplicates.
type DuplicateCheckRequest struct {
	Text string `json:"text"`
}

// DuplicateCheckResponse lists words already present in a catalog.
type DuplicateCheckResponse struct {
	Duplicates []models.Duplicate `json:"duplicates"`
}

// ApproveRequest is the body of POST /api/suggestions/approve.
type ApproveRequest struct {
	ID   uint   `json:"id"`
	Item string `json:"item"`
	Type string `json:"type"`
}

// RejectRequest is the body of POST /api/suggestions/reject.
type RejectRequest struct {
	ID uint `json:"id"`
}

// UpdateRequest is the body of POST /api/suggestions/update.
type UpdateRequest struct {
	ID     uint   `json:"id"`
	Item   string `json:"item"`
	Status string `json:"status"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}

// GetSuggestions handles GET /api/suggestions
// @Summary List suggestions
// @Description Admin only. Optional status filter.
// @Tags suggestions
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} models.Suggestion
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Security BasicAuth
// @Router /api/suggestions [get]
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	items, err := s.moderationService.List(c.UserContext(), c.Query("status"))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}

// CreateSuggestion handles POST /api/suggestions
// @Summary Submit a suggestion
// @Tags suggestions
// @Accept json
// @Produce json
// @Param body body SuggestionRequest true "Suggestion"
// @Success 201 {object} models.Suggestion
// @Failure 400 {object} models.ErrorResponse
// @Router /api/suggestions [post]
func (s *Server) CreateSuggestion(c *fiber.Ctx) error {
	var req SuggestionRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	sug, err := s.moderationService.Submit(c.UserContext(), service.SubmitInput{
		Item:   req.Item,
		Status: req.Status,
		Date:   req.Date,
		Type:   req.Type,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(sug)
}

// CheckDuplicates handles POST /api/suggestions/check_duplicates
// @Summary Report words already in the catalogs
// @Tags suggestions
// @Accept json
// @Produce json
// @Param body body DuplicateCheckRequest true "Free text"
// @Success 200 {object} DuplicateCheckResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /api/suggestions/check_duplicates [post]
func (s *Server) CheckDuplicates(c *fiber.Ctx) error {
	var req DuplicateCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	dups, err := s.duplicateService.Check(c.UserContext(), req.Text)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(DuplicateCheckResponse{Duplicates: dups})
}

// ApproveSuggestion handles POST /api/suggestions/approve
// @Summary Approve a suggestion into a catalog
// @Tags suggestions
// @Accept json
// @Produce json
// @Param body body ApproveRequest true "Approval"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Router /api/suggestions/approve [post]
func (s *Server) ApproveSuggestion(c *fiber.Ctx) error {
	var req ApproveRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	res, err := s.moderationService.Approve(c.UserContext(), service.ApproveInput{
		ID:   req.ID,
		Item: req.Item,
		Type: req.Type,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	msg := fmt.Sprintf("'%s' approved and added to %s.", res.Item, res.Kind.ListName())
	if !res.Added {
		msg = fmt.Sprintf("'%s' approved; it was already in %s.", res.Item, res.Kind.ListName())
	}
	return c.JSON(MessageResponse{Message: msg})
}

// RejectSuggestion handles POST /api/suggestions/reject
// @Summary Reject a suggestion
// @Tags suggestions
// @Accept json
// @Produce json
// @Param body body RejectRequest true "Rejection"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Router /api/suggestions/reject [post]
func (s *Server) RejectSuggestion(c *fiber.Ctx) error {
	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	if err := s.moderationService.Reject(c.UserContext(), req.ID); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Suggestion rejected."})
}

// UpdateSuggestion handles POST /api/suggestions/update
// @Summary Edit a suggestion
// @Tags suggestions
// @Accept json
// @Produce json
// @Param body body UpdateRequest true "Changes"
// @Success 200 {object} models.Suggestion
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Security BasicAuth
// @Router /api/suggestions/update [post]
func (s *Server) UpdateSuggestion(c *fiber.Ctx) error {
	var req UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	sug, err := s.moderationService.Update(c.UserContext(), service.UpdateInput{
		ID:     req.ID,
		Item:   req.Item,
		Status: req.Status,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(sug)
}
