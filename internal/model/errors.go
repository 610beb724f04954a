package model

import "errors"

// Policy and ledger errors. Every operation failing with one of these leaves
// the token state unchanged.
var (
	// ErrUnauthorized is returned when the caller is not the owner, or when
	// the contract or burn account is used as a sender.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInsufficientBalance is returned when the sender cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInsufficientAllowance is returned when a spender exceeds its approval.
	ErrInsufficientAllowance = errors.New("insufficient allowance")

	// ErrFeeTooHigh is returned when a fee schedule breaks a ceiling.
	ErrFeeTooHigh = errors.New("fee too high")

	// ErrLimitTooLow is returned when a limit percentage is below its floor.
	ErrLimitTooLow = errors.New("limit too low")

	// ErrTransactionLimitExceeded is returned when a buy or sell exceeds maxTx.
	ErrTransactionLimitExceeded = errors.New("transaction limit exceeded")

	// ErrWalletLimitExceeded is returned when a buy would push the buyer over maxBalance.
	ErrWalletLimitExceeded = errors.New("wallet limit exceeded")

	// ErrAlreadyLaunched is returned by a second launch.
	ErrAlreadyLaunched = errors.New("already launched")

	// ErrInvalidAddress is returned for empty or zero addresses.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrBelowSwapThreshold is returned by a swap-back while pending fees are
	// below the configured threshold.
	ErrBelowSwapThreshold = errors.New("pending fees below swap-back threshold")
)

// Reason returns a short stable label for err, used in metrics and the journal.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrInsufficientAllowance):
		return "insufficient_allowance"
	case errors.Is(err, ErrFeeTooHigh):
		return "fee_too_high"
	case errors.Is(err, ErrLimitTooLow):
		return "limit_too_low"
	case errors.Is(err, ErrTransactionLimitExceeded):
		return "transaction_limit_exceeded"
	case errors.Is(err, ErrWalletLimitExceeded):
		return "wallet_limit_exceeded"
	case errors.Is(err, ErrAlreadyLaunched):
		return "already_launched"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, ErrBelowSwapThreshold):
		return "below_threshold"
	default:
		return "internal"
	}
}
