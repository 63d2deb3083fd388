package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/weihan-tech/casetrack/internal/repository"
)

// nextCaseNumber computes the next business number for the given year:
// the four-digit year followed by a four-digit sequence, e.g. "20250001".
// It scans the store for the highest existing number with the year prefix
// and increments its sequence; the first case of a year gets 0001.
//
// The scan and the subsequent insert are separate operations, so two
// concurrent creations can compute the same number. The unique constraint
// on cases.case_number catches the collision and the creation path retries
// with a fresh scan. A sequence that passes 9999 silently widens to five
// digits; numbers are never reused.
func nextCaseNumber(ctx context.Context, store repository.Store, year int) (string, error) {
	prefix := strconv.Itoa(year)

	max, err := store.MaxCaseNumberWithPrefix(ctx, prefix)
	if err != nil {
		return "", fmt.Errorf("failed to scan case numbers for %s: %w", prefix, err)
	}
	if max == "" {
		return prefix + "0001", nil
	}

	seq, err := strconv.Atoi(max[len(prefix):])
	if err != nil {
		return "", fmt.Errorf("malformed case number %q: %w", max, err)
	}

	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}
