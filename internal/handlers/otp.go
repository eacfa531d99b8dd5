package handlers

import (
	"fmt"
	"strings"

	"github.com/filoshare/backend/internal/database"
	"github.com/filoshare/backend/internal/models"
	"github.com/filoshare/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// OTPHandler runs the email-OTP-gated registration flow
type OTPHandler struct {
	otp   *services.OTPService
	email *services.EmailService
}

func NewOTPHandler(otp *services.OTPService, email *services.EmailService) *OTPHandler {
	return &OTPHandler{otp: otp, email: email}
}

// Send issues a registration code to the given address
func (h *OTPHandler) Send(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Email is required",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	code, err := h.otp.Issue(email)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to issue OTP",
		})
	}

	body := fmt.Sprintf("<h2>Your OTP is: %s</h2><p>Valid for 5 minutes.</p>", code)
	if err := h.email.SendEmail(email, "Your OTP for FiloShare registration", body, true); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to send OTP email",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "OTP sent successfully",
	})
}

// VerifyRegister checks the code and creates the account
func (h *OTPHandler) VerifyRegister(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		OTP      string `json:"otp"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Invalid request body",
		})
	}
	if req.Name == "" || req.Email == "" || req.OTP == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "All fields are required",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := h.otp.Verify(email, req.OTP); err != nil {
		message := "Invalid OTP"
		if err == services.ErrOTPExpired {
			message = "OTP expired"
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}

	var existing models.User
	if err := database.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"message": "User already exists",
		})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create user",
		})
	}

	user := models.User{
		Name:         req.Name,
		Email:        email,
		Password:     string(hashed),
		Plan:         "FREE",
		StorageLimit: models.Plans["FREE"].StorageLimit,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create user",
		})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Registered successfully",
		"user":    user.Public(),
	})
}
