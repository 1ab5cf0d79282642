package repository

import "errors"

var (
	ErrSecretNotFound = errors.New("subscription secret not found")
	ErrTaskNotFound   = errors.New("task not found")
)
