package app

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAlreadyRegistered = errors.New("email already registered")
	ErrMessageEmpty      = errors.New("message content is empty")
	ErrLLMConfig         = errors.New("llm config is invalid")
	ErrLLMUnavailable    = errors.New("llm request failed")
)
