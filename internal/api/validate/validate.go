package validate

import (
	"fmt"
	"regexp"
	"strconv"
)

// UserID must be lowercase letters, digits, underscore or hyphen, 1-64 chars.
var userIdRx = regexp.MustCompile(`^[a-z0-9_\-]{1,64}$`)

func UserID(v string) error {
	if v == "" {
		return fmt.Errorf("userId is required")
	}
	if !userIdRx.MatchString(v) {
		return fmt.Errorf("userId must match %s", userIdRx.String())
	}
	return nil
}

// DisplayName allows up to 80 bytes of free text.
func DisplayName(v string) error {
	if v == "" {
		return fmt.Errorf("displayName is required")
	}
	if len(v) > 80 {
		return fmt.Errorf("displayName exceeds 80 characters")
	}
	return nil
}

// Description caps free-text grant descriptions.
func Description(v string) error {
	if len(v) > 280 {
		return fmt.Errorf("description exceeds 280 characters")
	}
	return nil
}

// Limit parses an optional ?limit= query value, applying a default and a
// hard ceiling. An empty raw value yields def.
func Limit(raw string, def, ceiling int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if n > ceiling {
		n = ceiling
	}
	return n, nil
}

// Scope checks a leaderboard scope query value.
func Scope(v string) error {
	switch v {
	case "weekly", "alltime":
		return nil
	}
	return fmt.Errorf("scope must be weekly or alltime")
}
