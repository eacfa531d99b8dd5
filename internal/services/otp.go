package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/filoshare/backend/internal/database"
	"github.com/redis/go-redis/v9"
)

// OTPService stores registration codes in Redis with a 5 minute TTL.
// Expiry is enforced by the key TTL itself, matching the "valid for
// 5 minutes" promise in the email.
type OTPService struct{}

func NewOTPService() *OTPService {
	return &OTPService{}
}

// GenerateCode returns a 6-digit numeric code
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Issue creates and stores a fresh code for the email, replacing any
// outstanding one
func (s *OTPService) Issue(email string) (string, error) {
	code, err := GenerateCode()
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	if err := database.Redis.Set(ctx, database.CacheKeyOTP+email, code, database.OTPTTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks a submitted code and consumes it on success
func (s *OTPService) Verify(email, code string) error {
	ctx := context.Background()
	stored, err := database.Redis.Get(ctx, database.CacheKeyOTP+email).Result()
	if err == redis.Nil {
		return ErrOTPExpired
	}
	if err != nil {
		return err
	}
	if stored != code {
		return ErrOTPInvalid
	}
	return database.Redis.Del(ctx, database.CacheKeyOTP+email).Err()
}
