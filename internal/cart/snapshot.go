package cart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_restaurant/internal/domain"
)

var ErrInvalidSnapshot = errors.New("invalid cart snapshot")

// Encode serializes lines in display order.
func Encode(lines []domain.CartLine) (string, error) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("marshal cart failed: %w", err)
	}
	return string(data), nil
}

// Decode parses a stored snapshot. Anything that is not a list of lines with
// distinct non-empty ids and positive quantities is rejected as a whole.
func Decode(raw string) ([]domain.CartLine, error) {
	var lines []domain.CartLine
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	seen := make(map[string]struct{}, len(lines))
	for i, l := range lines {
		if l.Item.ID == "" {
			return nil, fmt.Errorf("%w: line %d has no item id", ErrInvalidSnapshot, i)
		}
		if l.Quantity < 1 {
			return nil, fmt.Errorf("%w: line %d has quantity %d", ErrInvalidSnapshot, i, l.Quantity)
		}
		if _, dup := seen[l.Item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item %q", ErrInvalidSnapshot, l.Item.ID)
		}
		seen[l.Item.ID] = struct{}{}
	}
	return lines, nil
}
