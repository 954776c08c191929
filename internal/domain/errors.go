package domain

import "errors"

var (
	ErrUnknownField         = errors.New("unknown allocation field")
	ErrPercentOutOfRange    = errors.New("percentage must be between 0 and 100")
	ErrIncompleteAllocation = errors.New("percentages must sum to exactly 100")
	ErrOverAllocation       = errors.New("percentages exceed 100")
	ErrInvalidAmount        = errors.New("invalid total amount")
	ErrWalletNotConnected   = errors.New("please connect your wallet first")
	ErrInvalidAddress       = errors.New("invalid Flow address format")
	ErrCooldown             = errors.New("transaction in cooldown period")
	ErrInsufficientBalance  = errors.New("insufficient FLOW balance")
	ErrNotFound             = errors.New("not found")
	ErrInvalidPage          = errors.New("invalid page")
	ErrNoYieldAvailable     = errors.New("no yield available to compound")
	ErrStalePosition        = errors.New("LP position changed since it was read")
	ErrInvalidInterval      = errors.New("invalid auto-compound interval")
)
