package usecase

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"
)

// QueryPreprocessor turns photo filenames and typed text into catalog search phrases
type QueryPreprocessor struct{}

// Compiled regex patterns for query preprocessing
var (
	// Separators cameras and people put in filenames
	filenameSeparatorPattern = regexp.MustCompile(`[_+.,()\[\]]+`)

	// Camera and phone prefixes like IMG_1234, DSC01234, PXL_20240101_123456
	cameraPrefixPattern = regexp.MustCompile(`(?i)^(img|dsc|dscn|pxl|mvimg|photo|image|screenshot|scan)\d*$`)

	// Dates and timestamps like 20240101, 2024-01-01, 123456789
	timestampPattern = regexp.MustCompile(`^\d{6,}$|^\d{4}-\d{2}-\d{2}$`)

	numberPattern = regexp.MustCompile(`^\d+$`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// queryNoiseWords describe the photo, not the product
var queryNoiseWords = map[string]bool{
	"copy":       true,
	"final":      true,
	"edited":     true,
	"cropped":    true,
	"front":      true,
	"back":       true,
	"side":       true,
	"closeup":    true,
	"picture":    true,
	"pic":        true,
	"shot":       true,
	"upload":     true,
	"screenshot": true,
}

const maxQueryLength = 100

// NewQueryPreprocessor creates a new query preprocessor
func NewQueryPreprocessor() *QueryPreprocessor {
	return &QueryPreprocessor{}
}

// FromFilename derives a search phrase from an uploaded photo's filename.
// "IMG_2041_sony-wh-1000xm5_front.jpg" becomes "sony-wh-1000xm5".
func (p *QueryPreprocessor) FromFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = filenameSeparatorPattern.ReplaceAllString(base, " ")

	var kept []string
	afterPrefix := false
	for _, word := range strings.Fields(base) {
		low := strings.ToLower(word)
		if cameraPrefixPattern.MatchString(low) {
			afterPrefix = true
			continue
		}
		// The frame counter that follows a camera prefix
		if afterPrefix && numberPattern.MatchString(low) {
			afterPrefix = false
			continue
		}
		afterPrefix = false
		if timestampPattern.MatchString(low) || queryNoiseWords[low] {
			continue
		}
		kept = append(kept, word)
	}
	return p.Normalize(strings.Join(kept, " "))
}

// Normalize collapses whitespace and limits length, cutting at a word boundary when possible.
func (p *QueryPreprocessor) Normalize(query string) string {
	cleaned := strings.TrimSpace(multiSpacePattern.ReplaceAllString(query, " "))
	if len(cleaned) > maxQueryLength {
		cut := maxQueryLength
		for cut > 0 && !utf8.RuneStart(cleaned[cut]) {
			cut--
		}
		cleaned = cleaned[:cut]
		if lastSpace := strings.LastIndex(cleaned, " "); lastSpace > maxQueryLength/2 {
			cleaned = cleaned[:lastSpace]
		}
	}
	return cleaned
}
