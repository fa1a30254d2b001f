package domain

import (
	"regexp"
	"strings"
)

var (
	domainSuffixRegex = regexp.MustCompile(`(?i)\.(com|net|org)$`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
	apostropheFolder  = strings.NewReplacer("’", "'", "‘", "'")
	bjWordRegex       = regexp.MustCompile(`\bbj`)
)

// membershipRetailers sell only to paying members.
var membershipRetailers = []string{"costco", "sam's club", "bjs", "bj's"}

// preferredRetailers are ranked ahead of other merchants, best first.
var preferredRetailers = []string{
	"costco",
	"amazon",
	"walmart",
	"target",
	"best buy",
	"home depot",
	"lowe's",
}

// unrankedRetailer is the rank of any merchant not in preferredRetailers.
const unrankedRetailer = 999

// NormalizeRetailer folds merchant name variants ("Costco.com", "COSTCO Wholesale",
// "Sam’s Club") onto one display form.
func NormalizeRetailer(source string) string {
	s := strings.TrimSpace(apostropheFolder.Replace(source))
	if s == "" {
		return s
	}
	s = domainSuffixRegex.ReplaceAllString(s, "")
	s = strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))

	low := strings.ToLower(s)
	switch {
	case strings.Contains(low, "costco"):
		return "Costco"
	case strings.Contains(low, "sam") && strings.Contains(low, "club"):
		return "Sam's Club"
	case bjWordRegex.MatchString(low):
		return "BJ's"
	}
	return s
}

// IsMembershipRetailer reports whether the merchant requires a paid membership.
func IsMembershipRetailer(source string) bool {
	low := strings.ToLower(strings.TrimSpace(apostropheFolder.Replace(source)))
	if low == "" {
		return false
	}
	for _, m := range membershipRetailers {
		if strings.Contains(low, m) {
			return true
		}
	}
	return false
}

// PreferredRank orders merchants; lower is better.
func PreferredRank(source string) int {
	low := strings.ToLower(strings.TrimSpace(source))
	if low == "" {
		return unrankedRetailer
	}
	for i, pref := range preferredRetailers {
		if strings.Contains(low, pref) {
			return i
		}
	}
	return unrankedRetailer
}
