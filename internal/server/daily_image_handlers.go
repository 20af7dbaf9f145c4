package server

import (
	"foodcrimes/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultHistoryLimit = 7
	maxHistoryLimit     = 60
)

// GenerateResponse is returned by POST /generate-daily-image.
type GenerateResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	ImageURL  string `json:"image_url"`
	FoodCombo string `json:"food_combo"`
}

// GenerateDailyImage handles POST /generate-daily-image
// @Summary Generate today's image
// @Description Admin only. Returns 200 with the existing record when today's image was already generated.
// @Tags daily-image
// @Produce json
// @Success 201 {object} GenerateResponse
// @Success 200 {object} GenerateResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Security BasicAuth
// @Router /generate-daily-image [post]
func (s *Server) GenerateDailyImage(c *fiber.Ctx) error {
	res, err := s.dailyImageService.Run(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	resp := GenerateResponse{
		Success:   true,
		Message:   "Daily image generated and saved successfully.",
		ImageURL:  res.Image.PublicURL,
		FoodCombo: res.Image.FoodCombination,
	}
	status := fiber.StatusCreated
	if !res.Created {
		resp.Message = "Today's image has already been generated."
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(resp)
}

// GetDailyImage handles GET /api/daily-image
// @Summary Latest daily image
// @Tags daily-image
// @Produce json
// @Success 200 {object} models.DailyImageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/daily-image [get]
func (s *Server) GetDailyImage(c *fiber.Ctx) error {
	img, err := s.dailyImageService.Latest(c.UserContext())
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(img.ToResponse())
}

// GetDailyImages handles GET /api/daily-images
// @Summary Daily image history, newest first
// @Tags daily-image
// @Produce json
// @Param limit query int false "Number of images (default 7, max 60)"
// @Success 200 {array} models.DailyImageResponse
// @Router /api/daily-images [get]
func (s *Server) GetDailyImages(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	images, err := s.dailyImageService.History(c.UserContext(), limit)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	out := make([]models.DailyImageResponse, 0, len(images))
	for _, img := range images {
		out = append(out, img.ToResponse())
	}
	return c.JSON(out)
}
