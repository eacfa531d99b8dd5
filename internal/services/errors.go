package services

import "errors"

var (
	// common errors
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("not allowed")
	ErrValidation = errors.New("validation error")

	// quota / upload errors
	ErrStorageFull  = errors.New("storage full")
	ErrNoFiles      = errors.New("no files uploaded")
	ErrUploadFailed = errors.New("upload failed")

	// link gating errors
	ErrExpired          = errors.New("link expired")
	ErrPasswordRequired = errors.New("password required")
	ErrWrongPassword    = errors.New("incorrect password")

	// payment errors
	ErrSignatureMismatch = errors.New("payment verification failed")

	// otp errors
	ErrOTPInvalid = errors.New("invalid otp")
	ErrOTPExpired = errors.New("otp expired")

	// chat errors
	ErrNotRoomMember = errors.New("not a room member")
	ErrSameUser      = errors.New("cannot start a chat with yourself")
)
