package store

import (
	"errors"
	"fmt"
)

// Base sentinel errors. Entity-specific sentinels wrap these so callers can
// match either the broad class or the exact entity.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

// Entity-specific sentinels.
var (
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrWordBookNotFound = fmt.Errorf("wordbook %w", ErrNotFound)
	ErrCardNotFound     = fmt.Errorf("card %w", ErrNotFound)
	ErrTagNotFound      = fmt.Errorf("tag %w", ErrNotFound)
	ErrProfileNotFound  = fmt.Errorf("profile %w", ErrNotFound)
)
