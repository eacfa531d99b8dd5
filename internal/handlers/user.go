package handlers

import (
	"strings"

	"github.com/filoshare/backend/internal/database"
	"github.com/filoshare/backend/internal/middleware"
	"github.com/filoshare/backend/internal/models"
	"github.com/gofiber/fiber/v2"
)

// UserHandler serves profile and user lookup
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me returns the caller's profile including storage accounting
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"message": "Unauthorized",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user": fiber.Map{
			"id":           user.ID,
			"name":         user.Name,
			"email":        user.Email,
			"plan":         user.Plan,
			"storageUsed":  user.StorageUsed,
			"storageLimit": user.StorageLimit,
			"createdAt":    user.CreatedAt,
		},
	})
}

// Search finds users by name or email fragment, excluding the caller
func (h *UserHandler) Search(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	q := strings.TrimSpace(c.Query("q"))
	if len(q) < 2 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Search query must be at least 2 characters",
		})
	}

	pattern := "%" + strings.ToLower(q) + "%"

	var users []models.User
	if err := database.DB.
		Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?) AND id <> ?", pattern, pattern, userID).
		Limit(20).
		Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Search failed",
		})
	}

	results := make([]models.PublicUser, 0, len(users))
	for i := range users {
		results = append(results, users[i].Public())
	}

	return c.JSON(fiber.Map{
		"success": true,
		"users":   results,
	})
}
