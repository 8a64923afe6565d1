package errors

import "errors"

var (
	ErrMalformedInstruction   = errors.New("malformed instruction")
	ErrMissingSignature       = errors.New("missing required signature")
	ErrWrongOwner             = errors.New("account is not owned by this program")
	ErrUninitialized          = errors.New("account is not initialized")
	ErrAlreadyInitialized     = errors.New("account is already initialized")
	ErrInvalidFeePercentage   = errors.New("fee percentage must be between 0 and 100")
	ErrInvalidPrice           = errors.New("price must be positive unless free issuance")
	ErrArithmeticOverflow     = errors.New("arithmetic overflow")
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrRentExemptionViolation = errors.New("account is not rent exempt")
	ErrInvalidAccountData     = errors.New("invalid account data")
	ErrInvalidAmount          = errors.New("amount must be positive")
	ErrConcurrentModification = errors.New("account modified concurrently")
	ErrAccountNotFound        = errors.New("account not found")
	ErrAccountExists          = errors.New("account already exists")
	ErrInvalidPubkey          = errors.New("invalid pubkey")
	ErrIdempotencyKeyConflict = errors.New("idempotency key reused with different request")
)
