package utils

import "errors"

// Common application errors used across services.
var (
	ErrInvalidToken       = errors.New("INVALID_TOKEN")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrEmailTaken         = errors.New("EMAIL_TAKEN")
	ErrForbidden          = errors.New("FORBIDDEN")

	ErrCategoryNotFound  = errors.New("CATEGORY_NOT_FOUND")
	ErrCategoryNotEmpty  = errors.New("CATEGORY_NOT_EMPTY")
	ErrDuplicateCategory = errors.New("DUPLICATE_CATEGORY")
	ErrProductNotFound   = errors.New("PRODUCT_NOT_FOUND")
	ErrProductInactive   = errors.New("PRODUCT_INACTIVE")

	ErrDealNotFound   = errors.New("DEAL_NOT_FOUND")
	ErrDealNotOpen    = errors.New("DEAL_NOT_OPEN")
	ErrDealExpired    = errors.New("DEAL_EXPIRED")
	ErrDealFull       = errors.New("DEAL_FULL")
	ErrAlreadyJoined  = errors.New("ALREADY_JOINED")
	ErrNotParticipant = errors.New("NOT_PARTICIPANT")
	ErrNotDealCreator = errors.New("NOT_DEAL_CREATOR")
)
