package constants

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIdentity is returned when no usable member key (phone or
	// token-derived) can be built for an incoming identifier.
	ErrInvalidIdentity = errors.New("invalid identity: no usable member key")

	ErrMemberNotFound = errors.New("member not found")
	ErrGroupNotFound  = errors.New("group not found")

	// ErrInsufficientPoints is returned when a redemption asks for more
	// points than the member holds.
	ErrInsufficientPoints = errors.New("insufficient points for redemption")
)

// StorageError wraps a document-store failure with operation context.
type StorageError struct {
	Op      string
	GroupID string
	Key     string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error during %s (group=%s key=%s): %v", e.Op, e.GroupID, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError builds a StorageError for the given store operation.
func NewStorageError(op, groupID, key string, err error) *StorageError {
	return &StorageError{Op: op, GroupID: groupID, Key: key, Err: err}
}

const (
	MsgMemberNotFound     = "Member not found in this group"
	MsgGroupNotFound      = "Group not found"
	MsgInvalidIdentity    = "Could not build a usable identity for sender"
	MsgEventRejected      = "Event rejected"
	MsgInvalidRequestBody = "Invalid request body"
	MsgInsufficientPoints = "Not enough points for this redemption"
)
