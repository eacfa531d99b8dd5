package handlers

import (
	"github.com/filoshare/backend/internal/config"
	"github.com/filoshare/backend/internal/middleware"
	"github.com/filoshare/backend/internal/services"
	"github.com/gofiber/fiber/v2"
)

// PaymentHandler serves the plan purchase flow
type PaymentHandler struct {
	cfg      *config.Config
	payments *services.PaymentService
}

func NewPaymentHandler(cfg *config.Config, payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, payments: payments}
}

// CreateOrder opens a Razorpay order for a paid plan
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		PlanName string `json:"planName"`
	}
	if err := c.BodyParser(&req); err != nil || req.PlanName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Plan name is required",
		})
	}

	payment, order, err := h.payments.CreateOrder(userID, req.PlanName)
	if err != nil {
		if err == services.ErrValidation {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"success": false,
				"message": "Invalid plan",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Failed to create order",
		})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"message":   "Order created",
		"order":     order,
		"paymentId": payment.ID,
		"key":       h.cfg.RazorpayKeyID,
	})
}

// Verify checks the payment signature and upgrades the plan
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	var req struct {
		RazorpayOrderID   string `json:"razorpay_order_id"`
		RazorpayPaymentID string `json:"razorpay_payment_id"`
		RazorpaySignature string `json:"razorpay_signature"`
		PlanName          string `json:"planName"`
	}
	if err := c.BodyParser(&req); err != nil ||
		req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" ||
		req.RazorpaySignature == "" || req.PlanName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"message": "Missing payment details",
		})
	}

	payment, user, err := h.payments.VerifyPayment(userID, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature, req.PlanName)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Payment verified & plan upgraded",
		"payment": payment,
		"user": fiber.Map{
			"id":           user.ID,
			"plan":         user.Plan,
			"storageUsed":  user.StorageUsed,
			"storageLimit": user.StorageLimit,
		},
	})
}

// MyPayments lists the caller's payment history
func (h *PaymentHandler) MyPayments(c *fiber.Ctx) error {
	userID := middleware.GetCurrentUserID(c)

	payments, err := h.payments.ListPayments(userID)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"payments": payments,
	})
}
