package password

import "errors"

var ErrTooShort = errors.New("password_too_short")
