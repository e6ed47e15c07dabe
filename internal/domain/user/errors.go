package user

import "errors"

var (
	ErrInvalidToken            = errors.New("invalid or expired token")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrReviewerAccessRequired  = errors.New("HR or admin access required")
	ErrForeignEmployee         = errors.New("employees may only act on their own records")
)
