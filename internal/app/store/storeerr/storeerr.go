// internal/app/store/storeerr/storeerr.go
package storeerr

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Sentinel errors shared by the stores and the membership controller.
// Callers test with errors.Is.
var (
	// ErrNotFound means the referenced event or membership record does not
	// exist for the requested operation.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable wraps transient backend failures on read or write.
	ErrUnavailable = errors.New("store unavailable")

	// ErrPermissionDenied means the acting user may not perform the action.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAlreadyRequested means a membership record already exists for the
	// (event, user) pair and a second join request was refused.
	ErrAlreadyRequested = errors.New("join request already exists")
)

// Wrap maps a mongo driver error into the shared taxonomy, keeping the
// original error in the chain. A nil error stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if isTransient(err) {
		return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, mongo.ErrClientDisconnected) {
		return true
	}
	return mongo.IsTimeout(err) || mongo.IsNetworkError(err)
}
