package usecase

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFromFilename(t *testing.T) {
	preprocessor := NewQueryPreprocessor()

	tests := []struct {
		name     string
		filename string
		want     string
	}{
		{
			name:     "strips camera prefix, counter and view words",
			filename: "IMG_2041_sony-wh-1000xm5_front.jpg",
			want:     "sony-wh-1000xm5",
		},
		{
			name:     "phone capture with only timestamps",
			filename: "PXL_20240101_123456.jpg",
			want:     "",
		},
		{
			name:     "directory and copy suffix removed",
			filename: "/home/me/Photos/Dyson V15 Detect (copy).png",
			want:     "Dyson V15 Detect",
		},
		{
			name:     "windows path with dotted name",
			filename: `C:\Users\me\lego.set.10497.heic`,
			want:     "lego set 10497",
		},
		{
			name:     "keeps numbers that are not camera counters",
			filename: "iphone 15 pro.jpg",
			want:     "iphone 15 pro",
		},
		{
			name:     "dated filename",
			filename: "2024-03-09 kitchenaid mixer.jpeg",
			want:     "kitchenaid mixer",
		},
		{
			name:     "empty filename",
			filename: "",
			want:     "",
		},
		{
			name:     "extension only",
			filename: ".jpg",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessor.FromFilename(tt.filename)
			if got != tt.want {
				t.Errorf("FromFilename(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	preprocessor := NewQueryPreprocessor()

	t.Run("collapses whitespace", func(t *testing.T) {
		got := preprocessor.Normalize("  sony \t wh-1000xm5\n headphones ")
		if got != "sony wh-1000xm5 headphones" {
			t.Errorf("Normalize() = %q, want %q", got, "sony wh-1000xm5 headphones")
		}
	})

	t.Run("limits very long queries", func(t *testing.T) {
		long := strings.Repeat("headphones ", 20)
		got := preprocessor.Normalize(long)

		if len(got) > maxQueryLength {
			t.Errorf("len(Normalize()) = %d, want <= %d", len(got), maxQueryLength)
		}
		if strings.HasSuffix(got, " ") || !strings.HasSuffix(got, "headphones") {
			t.Errorf("Normalize() = %q, want to end at a word boundary", got)
		}
	})

	t.Run("never splits a multi-byte character", func(t *testing.T) {
		long := "a" + strings.Repeat("é", 60)
		got := preprocessor.Normalize(long)

		if !utf8.ValidString(got) {
			t.Errorf("Normalize() = %q, want valid UTF-8", got)
		}
		if len(got) != maxQueryLength-1 {
			t.Errorf("len(Normalize()) = %d, want %d", len(got), maxQueryLength-1)
		}
	})
}
