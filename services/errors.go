package services

import "errors"

var (
	ErrTrophyKindNotFound   = errors.New("trophy kind not found")
	ErrInvalidReviewRequest = errors.New("invalid review request")
	ErrInvalidUser          = errors.New("invalid user")
)
