package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrInvalidURL is returned for empty or non-absolute product URLs.
	ErrInvalidURL = errors.New("invalid product url")
)

// ParseProductURL validates a raw product URL and returns its normalized form.
// Scheme and host are lowercased and the fragment is dropped.
func ParseProductURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute url", ErrInvalidURL, raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""

	return u.String(), nil
}

// IdentityFromURL derives the product id from its normalized URL.
func IdentityFromURL(productURL string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(productURL))
}
