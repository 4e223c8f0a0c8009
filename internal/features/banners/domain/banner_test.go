package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBanner(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		in          Banner
		expectedErr error
	}{
		{
			name: "Valid",
			in:   Banner{Title: "Cold Pressed Oils", Image: "/uploads/banners/oils.jpg", Status: true},
		},
		{
			name:        "Missing title",
			in:          Banner{Image: "/uploads/banners/oils.jpg"},
			expectedErr: ErrInvalidBanner,
		},
		{
			name:        "Missing image",
			in:          Banner{Title: "  Diwali Sale "},
			expectedErr: ErrInvalidBanner,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBanner(tt.in, now)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, b)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.in.Title, b.Title)
			assert.Equal(t, now, b.CreatedAt)
		})
	}
}

func TestNewBanner_DefaultColors(t *testing.T) {
	b, err := NewBanner(Banner{Title: "Ghee", Image: "/g.jpg", DescColor: "#000000"}, time.Now())
	require.NoError(t, err)

	assert.Equal(t, DefaultTitleColor, b.TitleColor)
	assert.Equal(t, DefaultSubtitleColor, b.SubtitleColor)
	assert.Equal(t, "#000000", b.DescColor)
}
