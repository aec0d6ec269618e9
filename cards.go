package detetive

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedGameData is returned by DecodeCards when a stored column does
// not hold a valid encoded card sequence. Callers recover by substituting an
// empty sequence and logging; it never turns into a failed request.
var ErrMalformedGameData = errors.New("malformed game data")

// EncodeCards serializes an ordered sequence of card names into the text form
// stored in the games table.
func EncodeCards(cards []string) (string, error) {
	if cards == nil {
		cards = []string{}
	}

	b, err := json.Marshal(cards)
	if err != nil {
		return "", fmt.Errorf("encoding cards: %w", err)
	}

	return string(b), nil
}

// DecodeCards is the inverse of EncodeCards. The order of the stored sequence
// is preserved.
func DecodeCards(text string) ([]string, error) {
	var cards []string
	if err := json.Unmarshal([]byte(text), &cards); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGameData, err)
	}

	if cards == nil {
		cards = []string{}
	}

	return cards, nil
}
