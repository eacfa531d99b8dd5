package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/filoshare/backend/internal/config"
	"github.com/filoshare/backend/internal/models"
	razorpay "github.com/razorpay/razorpay-go"
	"gorm.io/gorm"
)

// PaymentService handles Razorpay plan purchases
type PaymentService struct {
	db     *gorm.DB
	cfg    *config.Config
	client *razorpay.Client
}

func NewPaymentService(db *gorm.DB, cfg *config.Config) *PaymentService {
	return &PaymentService{
		db:     db,
		cfg:    cfg,
		client: razorpay.NewClient(cfg.RazorpayKeyID, cfg.RazorpayKeySecret),
	}
}

// CreateOrder creates a Razorpay order for a paid plan and records it
func (s *PaymentService) CreateOrder(userID uint, planName string) (*models.Payment, map[string]interface{}, error) {
	plan, ok := models.Plans[planName]
	if !ok {
		return nil, nil, ErrValidation
	}
	if plan.Amount <= 0 {
		return nil, nil, ErrValidation
	}

	order, err := s.client.Order.Create(map[string]interface{}{
		"amount":   plan.Amount * 100, // paise
		"currency": "INR",
		"receipt":  fmt.Sprintf("receipt_%d", time.Now().UnixMilli()),
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	orderID, _ := order["id"].(string)

	payment := &models.Payment{
		UserID:          userID,
		PlanName:        plan.Name,
		Amount:          plan.Amount,
		Currency:        "INR",
		RazorpayOrderID: orderID,
		Status:          models.PaymentCreated,
	}
	if err := s.db.Create(payment).Error; err != nil {
		return nil, nil, err
	}

	return payment, order, nil
}

// verifySignature checks the Razorpay HMAC-SHA256 over "orderID|paymentID"
func (s *PaymentService) verifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.cfg.RazorpayKeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyPayment checks the callback signature. A valid signature marks
// the order PAID and upgrades the user's plan and storage limit; an
// invalid one marks it FAILED.
func (s *PaymentService) VerifyPayment(userID uint, orderID, paymentID, signature, planName string) (*models.Payment, *models.User, error) {
	plan, ok := models.Plans[planName]
	if !ok {
		return nil, nil, ErrValidation
	}

	var payment models.Payment
	if err := s.db.Where("razorpay_order_id = ?", orderID).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	if !s.verifySignature(orderID, paymentID, signature) {
		s.db.Model(&payment).Updates(map[string]interface{}{
			"status":              models.PaymentFailed,
			"razorpay_payment_id": paymentID,
			"razorpay_signature":  signature,
		})
		return nil, nil, ErrSignatureMismatch
	}

	if err := s.db.Model(&payment).Updates(map[string]interface{}{
		"status":              models.PaymentPaid,
		"razorpay_payment_id": paymentID,
		"razorpay_signature":  signature,
	}).Error; err != nil {
		return nil, nil, err
	}
	payment.Status = models.PaymentPaid

	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, nil, err
	}
	if err := s.db.Model(&user).Updates(map[string]interface{}{
		"plan":          plan.Name,
		"storage_limit": plan.StorageLimit,
	}).Error; err != nil {
		return nil, nil, err
	}
	user.Plan = plan.Name
	user.StorageLimit = plan.StorageLimit

	return &payment, &user, nil
}

// ListPayments returns the user's payment history, newest first
func (s *PaymentService) ListPayments(userID uint) ([]models.Payment, error) {
	var payments []models.Payment
	err := s.db.Where("user_id = ?", userID).Order("created_at desc").Find(&payments).Error
	return payments, err
}
