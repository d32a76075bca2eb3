package choice

import (
	"fmt"
	"strconv"
	"strings"

	"media-choice-service/internal/domain"
)

// IndexSeparator joins option indexes in saved state and report responses.
// Report consumers expect this exact literal.
const IndexSeparator = "[,]"

// CurrentState projects the selection into a saveable snapshot.
func (e *Engine) CurrentState() domain.State {
	return domain.State{Answers: e.SelectedIndexes()}
}

// RestoreState replays saved selections in order with live exclusivity rules.
// No interacted notification fires and unknown indexes are skipped.
func (e *Engine) RestoreState(indexes []int) {
	for _, i := range indexes {
		e.toggle(i)
	}
}

// FormatIndexes renders indexes as "1[,]3".
func FormatIndexes(indexes []int) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, IndexSeparator)
}

// ParseIndexes is the inverse of FormatIndexes. An empty string is an empty selection.
func ParseIndexes(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int{}, nil
	}
	parts := strings.Split(raw, IndexSeparator)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidState, raw)
		}
		out = append(out, idx)
	}
	return out, nil
}
