package gorm

import "errors"

// ErrDuplicateUser is returned when a profile with the requested name
// already exists. The caller shows it to the end user; it is not fatal.
var ErrDuplicateUser = errors.New("user already exists")
