package op

import "fmt"

// Result represents an operation result code.
type Result int

// Operation result codes. Failure strings match the historic contract
// messages, so external tooling keyed on them keeps working.
const (
	// Success (0)
	Success Result = 0

	// Authorization failures (100-199)
	OnlyAdmin      Result = 100
	NotWhitelisted Result = 101

	// Precondition failures (200-299)
	ValueMustBeZero Result = 200
	InvalidAddress  Result = 201

	// State failures (300-399)
	AlreadyWhitelisted   Result = 300
	AlreadyBlacklisted   Result = 301
	AlreadySupported     Result = 302
	PairNotSupported     Result = 303
	RequestNotFound      Result = 304
	RequestAlreadyExists Result = 305

	// Malformed operation, rejected before apply (-299 to -200)
	Malformed Result = -299

	// Internal failures (-199 to -100)
	InternalError Result = -199
)

// String returns the failure message for the result code.
func (r Result) String() string {
	switch r {
	case Success:
		return "Success"
	case OnlyAdmin:
		return "Only admin"
	case NotWhitelisted:
		return "User isn't whitelisted"
	case ValueMustBeZero:
		return "Amount must be 0"
	case InvalidAddress:
		return "Invalid address"
	case AlreadyWhitelisted:
		return "User is already whitelisted"
	case AlreadyBlacklisted:
		return "User is already blacklisted"
	case AlreadySupported:
		return "This pair is already supported"
	case PairNotSupported:
		return "This pair isn't supported"
	case RequestNotFound:
		return "Request not found"
	case RequestAlreadyExists:
		return "Request already exists"
	case Malformed:
		return "Malformed operation"
	case InternalError:
		return "Internal error"
	default:
		return fmt.Sprintf("Unknown(%d)", r)
	}
}

// IsSuccess returns true if the operation was applied.
func (r Result) IsSuccess() bool {
	return r == Success
}

// IsAuth returns true if this is an authorization failure.
func (r Result) IsAuth() bool {
	return r >= 100 && r < 200
}

// IsPrecondition returns true if this is a precondition failure.
func (r Result) IsPrecondition() bool {
	return r >= 200 && r < 300
}

// IsStateFailure returns true if the operation was well-formed and authorized
// but rejected by the current state.
func (r Result) IsStateFailure() bool {
	return r >= 300 && r < 400
}

// IsInternal returns true for failures that indicate a bug or infrastructure
// problem rather than a caller mistake.
func (r Result) IsInternal() bool {
	return r >= -199 && r <= -100
}
