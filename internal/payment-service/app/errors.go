package app

import (
	"errors"
	"fmt"
)

// ErrPaymentApplication marks data the payment service expects to exist but
// could not find: a customer's ledger, or the payment being cancelled. It is
// never dropped by listeners.
var ErrPaymentApplication = errors.New("payment application error")

type applicationError struct {
	msg string
}

func (e *applicationError) Error() string { return e.msg }

func (e *applicationError) Unwrap() error { return ErrPaymentApplication }

func applicationErrorf(format string, args ...any) error {
	return &applicationError{msg: fmt.Sprintf(format, args...)}
}
