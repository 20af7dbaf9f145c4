package server

import (
	"foodcrimes/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFoods handles GET /api/foods
// @Summary List foods
// @Tags catalog
// @Produce json
// @Success 200 {array} models.CatalogItem
// @Failure 500 {object} models.ErrorResponse
// @Router /api/foods [get]
func (s *Server) GetFoods(c *fiber.Ctx) error {
	return s.listCatalog(c, models.CatalogFood)
}

// GetPreparations handles GET /api/preparations
// @Summary List preparations
// @Tags catalog
// @Produce json
// @Success 200 {array} models.CatalogItem
// @Failure 500 {object} models.ErrorResponse
// @Router /api/preparations [get]
func (s *Server) GetPreparations(c *fiber.Ctx) error {
	return s.listCatalog(c, models.CatalogPreparation)
}

func (s *Server) listCatalog(c *fiber.Ctx, kind models.CatalogKind) error {
	items, err := s.catalogRepo.List(c.UserContext(), kind)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(items)
}
