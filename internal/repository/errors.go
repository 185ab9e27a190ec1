package repository

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// セッションIDを2回目に付けようとした
	ErrAlreadyAttached = errors.New("gateway session already attached")
)
