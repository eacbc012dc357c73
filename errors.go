// FILE: errors.go
package mtmrunner

import (
	"errors"
	"fmt"
)

// Sentinel errors. Wrap with fmt.Errorf("%w: ...", ErrX) at the call site when
// more detail is useful; callers should match with errors.Is.
var (
	ErrConfigInvalid     = errors.New("mtmrunner: invalid config")
	ErrTradeNotClosed    = errors.New("mtmrunner: trade not yet closed")
	ErrInvalidTradeState = errors.New("mtmrunner: invalid trade state")
	ErrUnsupportedMode   = errors.New("mtmrunner: unsupported mode")
	ErrDirectionMismatch = errors.New("mtmrunner: cannot compare trades with different directions")
	ErrMismatchedInputs  = errors.New("mtmrunner: buy and sell signal rows must be the same length and aligned by timestamp")
)

func configError(reason string) error {
	return fmt.Errorf("%w: %s", ErrConfigInvalid, reason)
}

func tradeNotClosedError(symbol string, entryPriceStr string) error {
	return fmt.Errorf("%w: symbol=%s entry_price=%s", ErrTradeNotClosed, symbol, entryPriceStr)
}

func invalidTradeStateError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidTradeState, reason)
}

func unsupportedModeError(mode fmt.Stringer) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
}
