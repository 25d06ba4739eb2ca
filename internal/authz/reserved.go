package authz

import (
	"errors"
	"regexp"
	"strings"
)

// Имена, которые нельзя занять обычной регистрацией.
var reservedUserNames = map[string]struct{}{
	"admin": {}, "administrator": {}, "system": {}, "root": {},
	"owner": {}, "support": {}, "moderator": {}, "staff": {},
	"api": {}, "null": {}, "undefined": {}, "me": {}, "you": {},
}

func IsReservedUserName(name string) bool {
	_, ok := reservedUserNames[strings.ToLower(name)]
	return ok
}

var (
	userNameRe = regexp.MustCompile(`^[a-z0-9_-]{3,30}$`)
	fullNameRe = regexp.MustCompile(`^[\p{L}\p{M}\s'.-]{1,100}$`)

	ErrBadUserName = errors.New("user name must be 3-30 chars: lowercase letters, digits, _ or -, no leading/trailing or doubled separators")
	ErrBadFullName = errors.New("full name may include letters, spaces, apostrophes, hyphens, and periods")
)

// ValidateUserName — правила handle-а: 3..30, [a-z0-9_-], без
// разделителя на краях и без двойных разделителей, без @ (чтобы не
// выглядело как email).
func ValidateUserName(name string) error {
	if !userNameRe.MatchString(name) {
		return ErrBadUserName
	}
	if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "-") ||
		strings.HasSuffix(name, "_") || strings.HasSuffix(name, "-") {
		return ErrBadUserName
	}
	for _, sep := range []string{"__", "--", "_-", "-_"} {
		if strings.Contains(name, sep) {
			return ErrBadUserName
		}
	}
	return nil
}

// ValidateFullName — имя опционально; пустая строка валидна.
func ValidateFullName(name string) error {
	if name == "" {
		return nil
	}
	if !fullNameRe.MatchString(name) {
		return ErrBadFullName
	}
	return nil
}
