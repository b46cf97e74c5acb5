package model

import (
	"net/url"
	"strings"
)

// Platform is the storefront a product is sold on.
type Platform string

const (
	PlatformAmazon   Platform = "amazon"
	PlatformFlipkart Platform = "flipkart"
	PlatformOther    Platform = "other"
)

// ParsePlatform maps a free-form platform label (e.g. "Amazon") to a Platform.
func ParsePlatform(label string) Platform {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "amazon":
		return PlatformAmazon
	case "flipkart":
		return PlatformFlipkart
	default:
		return PlatformOther
	}
}

// DetectPlatform guesses the platform from the product URL host.
func DetectPlatform(productURL string) Platform {
	u, err := url.Parse(productURL)
	if err != nil {
		return PlatformOther
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case strings.Contains(host, "amazon."), strings.Contains(host, "amzn."), host == "a.co":
		return PlatformAmazon
	case strings.Contains(host, "flipkart"):
		return PlatformFlipkart
	default:
		return PlatformOther
	}
}
