package handlers

import (
	"fmt"
	"log"

	"github.com/filoshare/backend/internal/config"
	"github.com/filoshare/backend/internal/database"
	"github.com/filoshare/backend/internal/models"
	"github.com/filoshare/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// ContactHandler serves the public contact form
type ContactHandler struct {
	cfg   *config.Config
	email *services.EmailService
}

func NewContactHandler(cfg *config.Config, email *services.EmailService) *ContactHandler {
	return &ContactHandler{cfg: cfg, email: email}
}

// Send stores the message and forwards it to the support inbox
func (h *ContactHandler) Send(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil || req.Name == "" || req.Email == "" || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "All fields are required",
		})
	}

	record := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := database.DB.Create(&record).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to store message",
		})
	}

	if h.cfg.SupportEmail != "" {
		body := fmt.Sprintf(
			"<h2>New Contact Message</h2>"+
				"<p><b>Name:</b> %s</p>"+
				"<p><b>Email:</b> %s</p>"+
				"<p><b>Message:</b></p><p>%s</p>",
			req.Name, req.Email, req.Message,
		)
		// Fire and forget: a mail outage should not fail the form
		if err := h.email.SendEmail(h.cfg.SupportEmail, "New Contact Form Message - FiloShare", body, true); err != nil {
			log.Printf("contact: failed to forward message: %v", err)
		}
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Message sent successfully",
	})
}
