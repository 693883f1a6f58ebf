package services

import (
	"strconv"
	"strings"

	"review-trophy-service/models"
)

// Neat number trophies only apply from this id onward.
const minNeatNumberID = 1000

// MilestoneTrophy qualifies when every digit after the leading one is zero.
// ex: id=1000, id=2000, id=10000; not id=12000
func MilestoneTrophy() models.TrophyKind {
	return models.TrophyKind{
		ID:          "milestone",
		Title:       "Milestone Trophy",
		Description: "Review request ID has trailing zeroes",
		IconURL:     "rb/images/trophy.png",
		Qualifies:   isMilestone,
	}
}

// PalindromeTrophy qualifies when the review request id reads the same backwards.
// ex: id=1221, id=1111, id=12321
func PalindromeTrophy() models.TrophyKind {
	return models.TrophyKind{
		ID:          "palindrome",
		Title:       "Palindrome Trophy",
		Description: "Review request ID is palindrome",
		IconURL:     "rb/images/fish-trophy.png",
		Qualifies:   isPalindrome,
	}
}

func isMilestone(id int64) bool {
	if id < minNeatNumberID {
		return false
	}
	trailing := strconv.FormatInt(id, 10)[1:]
	return strings.Trim(trailing, "0") == ""
}

func isPalindrome(id int64) bool {
	if id < minNeatNumberID {
		return false
	}
	digits := strconv.FormatInt(id, 10)
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		if digits[i] != digits[j] {
			return false
		}
	}
	return true
}
