package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/rosterhq/roster-api/internal/store"
)

// accentFolder strips combining diacritical marks, so "Đặng" folds to
// "Dang". Vietnamese "Đ/đ" is a standalone letter rather than a
// combining form, so it is special-cased below.
var accentFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldASCII lowercases s, removes accents and drops anything that is
// not a letter or digit.
func foldASCII(s string) string {
	folded, _, err := transform.String(accentFolder, s)
	if err != nil {
		folded = s
	}
	folded = strings.Map(func(r rune) rune {
		switch r {
		case 'Đ', 'đ':
			return 'd'
		}
		return r
	}, folded)

	var b strings.Builder
	for _, r := range strings.ToLower(folded) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// usernameBase derives the username stem from a full name: the last
// name word followed by the initials of the preceding words. "Bui Van
// Manh" becomes "manhbv".
func usernameBase(fullName string) string {
	words := strings.Fields(fullName)
	if len(words) == 0 {
		return "user"
	}

	last := foldASCII(words[len(words)-1])
	var initials strings.Builder
	for _, w := range words[:len(words)-1] {
		folded := foldASCII(w)
		if folded != "" {
			initials.WriteByte(folded[0])
		}
	}

	base := last + initials.String()
	if base == "" {
		return "user"
	}
	return base
}

// generateUsername produces a unique username for a new user: the stem
// from usernameBase plus the lowest numeric suffix (starting at 1) not
// yet present in the store. "Bui Van Manh" yields "manhbv1", then
// "manhbv2" for the next user with the same stem.
func generateUsername(ctx context.Context, users store.UserStore, fullName string) (string, error) {
	base := usernameBase(fullName)

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d", base, n)
		taken, err := users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check username availability: %w", err)
		}
		if !taken {
			return candidate, nil
		}
	}
}
