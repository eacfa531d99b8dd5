package handlers

import (
	"errors"

	"github.com/filoshare/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// serviceError maps service sentinels onto HTTP responses so every
// handler reports the same status for the same condition
func serviceError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	message := err.Error()

	switch {
	case errors.Is(err, services.ErrNotFound):
		status, message = fiber.StatusNotFound, "Not found"
	case errors.Is(err, services.ErrForbidden):
		status, message = fiber.StatusForbidden, "Not allowed"
	case errors.Is(err, services.ErrValidation):
		status, message = fiber.StatusBadRequest, "Invalid request"
	case errors.Is(err, services.ErrNoFiles):
		status, message = fiber.StatusBadRequest, "No files uploaded"
	case errors.Is(err, services.ErrStorageFull):
		status, message = fiber.StatusBadRequest, "Storage full, upgrade your plan to upload more files"
	case errors.Is(err, services.ErrExpired):
		status, message = fiber.StatusGone, "Link expired"
	case errors.Is(err, services.ErrPasswordRequired):
		status, message = fiber.StatusUnauthorized, "Password required"
	case errors.Is(err, services.ErrWrongPassword):
		status, message = fiber.StatusUnauthorized, "Incorrect password"
	case errors.Is(err, services.ErrSignatureMismatch):
		status, message = fiber.StatusBadRequest, "Payment verification failed"
	case errors.Is(err, services.ErrSameUser):
		status, message = fiber.StatusBadRequest, "Cannot start a chat with yourself"
	case errors.Is(err, services.ErrNotRoomMember):
		status, message = fiber.StatusForbidden, "Not a room member"
	case errors.Is(err, services.ErrUploadFailed):
		status, message = fiber.StatusInternalServerError, "Upload failed"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"message": message,
	})
}
