package engine

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateSettings checks room bounds before a Game is created.
func ValidateSettings(maxRounds, maxPlayers int) error {
	if maxRounds < MinRounds || maxRounds > MaxRounds {
		return fmt.Errorf("%w: maxRounds must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinRounds, MaxRounds, maxRounds)
	}
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return fmt.Errorf("%w: maxPlayers must be between %d and %d, got %d",
			ErrInvalidConfiguration, MinPlayers, MaxPlayers, maxPlayers)
	}
	return nil
}

// NormalizeName trims a display name and checks its length.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: at most %d characters", ErrNameTooLong, MaxNameLength)
	}
	return name, nil
}
