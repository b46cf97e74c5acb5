package repository

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrInvalidPaginationToken is returned when a pagination token cannot be decoded.
	ErrInvalidPaginationToken = errors.New("token is invalid")
)

const (
	// DefaultPaginationLimit is the default number of items per page.
	DefaultPaginationLimit = 10
	maxPaginationLimit     = 100
)

// Paginator is a cursor over products ordered by most recent update.
type Paginator struct {
	LastID        uuid.UUID
	LastUpdatedAt time.Time
}

// Encode encodes the cursor into an opaque base64 token.
func (t Paginator) Encode() string {
	key := fmt.Sprintf("%s,%s", t.LastUpdatedAt.Format(time.RFC3339Nano), t.LastID)
	return base64.StdEncoding.EncodeToString([]byte(key))
}

// DecodePageToken decodes a token produced by Encode.
func DecodePageToken(encodedToken string) (*Paginator, error) {
	bytes, err := base64.StdEncoding.DecodeString(encodedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 token: %w", err)
	}
	tokenParts := strings.Split(string(bytes), ",")
	if len(tokenParts) != 2 {
		return nil, fmt.Errorf("invalid token format: %w", ErrInvalidPaginationToken)
	}

	updatedAt, err := time.Parse(time.RFC3339Nano, tokenParts[0])
	if err != nil {
		return nil, fmt.Errorf("failed to parse token timestamp: %w", err)
	}
	id, err := uuid.Parse(tokenParts[1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ID: %w", err)
	}

	return &Paginator{
		LastID:        id,
		LastUpdatedAt: updatedAt,
	}, nil
}
