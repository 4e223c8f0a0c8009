package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Default text colors applied when a banner is created without them.
const (
	DefaultTitleColor    = "#ffffff"
	DefaultSubtitleColor = "#FFD600"
	DefaultDescColor     = "#f1f1f1"
)

var (
	ErrInvalidBanner  = errors.New("invalid banner")
	ErrBannerNotFound = errors.New("banner not found")
)

// Banner is a homepage hero slide.
type Banner struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle"`
	Desc          string    `json:"desc"`
	Image         string    `json:"image"`
	Status        bool      `json:"status"`
	TitleColor    string    `json:"titleColor"`
	SubtitleColor string    `json:"subtitleColor"`
	DescColor     string    `json:"descColor"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewBanner creates a new Banner and validates it. Title and image are required.
func NewBanner(b Banner, now time.Time) (*Banner, error) {
	b.Title = strings.TrimSpace(b.Title)
	b.Image = strings.TrimSpace(b.Image)
	if b.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidBanner)
	}
	if b.Image == "" {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidBanner)
	}

	if b.TitleColor == "" {
		b.TitleColor = DefaultTitleColor
	}
	if b.SubtitleColor == "" {
		b.SubtitleColor = DefaultSubtitleColor
	}
	if b.DescColor == "" {
		b.DescColor = DefaultDescColor
	}
	b.ID = ""
	b.CreatedAt = now
	b.UpdatedAt = now
	return &b, nil
}
