package erpnext

import "fmt"

// AuthError means the token exchange failed or returned no token.
type AuthError struct {
	Cause error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("Authentication failed: %s", e.Cause)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// FetchError means an authorized resource query failed.
type FetchError struct {
	Resource string
	Cause    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Failed to fetch %s: %s", e.Resource, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}
