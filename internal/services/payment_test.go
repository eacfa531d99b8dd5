package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/filoshare/backend/internal/config"
	"github.com/filoshare/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testRazorpaySecret = "test_secret_key"

func newPaymentService(db *gorm.DB) *PaymentService {
	cfg := &config.Config{
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: testRazorpaySecret,
	}
	return NewPaymentService(db, cfg)
}

func signOrder(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testRazorpaySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func seedOrder(t *testing.T, db *gorm.DB, userID uint, orderID, planName string) *models.Payment {
	t.Helper()
	payment := &models.Payment{
		UserID:          userID,
		PlanName:        planName,
		Amount:          models.Plans[planName].Amount,
		Currency:        "INR",
		RazorpayOrderID: orderID,
		Status:          models.PaymentCreated,
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func TestVerifyPaymentValidSignature(t *testing.T) {
	db := newTestDB(t)
	payments := newPaymentService(db)
	user := newTestUser(t, db, "payer@example.com", 0, models.GB)

	seedOrder(t, db, user.ID, "order_abc", "PRO_10GB")

	sig := signOrder("order_abc", "pay_xyz")
	payment, upgraded, err := payments.VerifyPayment(user.ID, "order_abc", "pay_xyz", sig, "PRO_10GB")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, payment.Status)
	assert.Equal(t, "PRO_10GB", upgraded.Plan)
	assert.Equal(t, models.Plans["PRO_10GB"].StorageLimit, upgraded.StorageLimit)

	var freshUser models.User
	require.NoError(t, db.First(&freshUser, user.ID).Error)
	assert.Equal(t, "PRO_10GB", freshUser.Plan)
	assert.Equal(t, int64(10*models.GB), freshUser.StorageLimit)
}

func TestVerifyPaymentBadSignature(t *testing.T) {
	db := newTestDB(t)
	payments := newPaymentService(db)
	user := newTestUser(t, db, "payer2@example.com", 0, models.GB)

	seedOrder(t, db, user.ID, "order_bad", "PRO_10GB")

	_, _, err := payments.VerifyPayment(user.ID, "order_bad", "pay_xyz", "not-a-signature", "PRO_10GB")
	assert.ErrorIs(t, err, ErrSignatureMismatch)

	// The order is marked failed, the user keeps their plan
	var payment models.Payment
	require.NoError(t, db.Where("razorpay_order_id = ?", "order_bad").First(&payment).Error)
	assert.Equal(t, models.PaymentFailed, payment.Status)

	var freshUser models.User
	require.NoError(t, db.First(&freshUser, user.ID).Error)
	assert.Equal(t, "FREE", freshUser.Plan)
	assert.Equal(t, int64(models.GB), freshUser.StorageLimit)
}

func TestVerifyPaymentUnknownOrder(t *testing.T) {
	db := newTestDB(t)
	payments := newPaymentService(db)
	user := newTestUser(t, db, "payer3@example.com", 0, models.GB)

	sig := signOrder("order_missing", "pay_xyz")
	_, _, err := payments.VerifyPayment(user.ID, "order_missing", "pay_xyz", sig, "PRO_10GB")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVerifyPaymentUnknownPlan(t *testing.T) {
	db := newTestDB(t)
	payments := newPaymentService(db)
	user := newTestUser(t, db, "payer4@example.com", 0, models.GB)

	_, _, err := payments.VerifyPayment(user.ID, "order_abc", "pay_xyz", "sig", "ULTRA_1TB")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateOrderRejectsFreePlan(t *testing.T) {
	db := newTestDB(t)
	payments := newPaymentService(db)
	user := newTestUser(t, db, "payer5@example.com", 0, models.GB)

	_, _, err := payments.CreateOrder(user.ID, "FREE")
	assert.ErrorIs(t, err, ErrValidation)

	_, _, err = payments.CreateOrder(user.ID, "NOPE")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListPayments(t *testing.T) {
	db := newTestDB(t)
	payments := newPaymentService(db)
	user := newTestUser(t, db, "payer6@example.com", 0, models.GB)
	other := newTestUser(t, db, "payer7@example.com", 0, models.GB)

	seedOrder(t, db, user.ID, "order_1", "PRO_10GB")
	seedOrder(t, db, user.ID, "order_2", "PRO_50GB")
	seedOrder(t, db, other.ID, "order_3", "PRO_10GB")

	history, err := payments.ListPayments(user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
	for _, p := range history {
		assert.Equal(t, user.ID, p.UserID)
	}
}
