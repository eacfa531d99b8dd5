package models

import (
	"time"
)

// PaymentStatus tracks the lifecycle of a plan purchase
type PaymentStatus string

const (
	PaymentCreated PaymentStatus = "CREATED"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// Payment records one Razorpay order for a plan purchase
type Payment struct {
	ID                uint          `gorm:"column:id;primaryKey" json:"id"`
	UserID            uint          `gorm:"column:user_id;index;not null" json:"userId"`
	PlanName          string        `gorm:"column:plan_name;size:50;not null" json:"planName"`
	Amount            int64         `gorm:"column:amount;not null" json:"amount"`
	Currency          string        `gorm:"column:currency;size:10;default:INR" json:"currency"`
	RazorpayOrderID   string        `gorm:"column:razorpay_order_id;uniqueIndex;size:255;not null" json:"razorpayOrderId"`
	RazorpayPaymentID *string       `gorm:"column:razorpay_payment_id;size:255" json:"razorpayPaymentId"`
	RazorpaySignature *string       `gorm:"column:razorpay_signature;size:255" json:"-"`
	Status            PaymentStatus `gorm:"column:status;size:20;default:CREATED" json:"status"`
	CreatedAt         time.Time     `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt         time.Time     `gorm:"column:updated_at" json:"updatedAt"`
}

func (Payment) TableName() string {
	return "payments"
}
