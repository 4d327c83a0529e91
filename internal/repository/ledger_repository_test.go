package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictList(t *testing.T) {
	requested := []string{"A1", "A2", "A3"}

	// normal case: the re-query found the occupants
	assert.Equal(t, []string{"A2"}, conflictList(requested, []string{"A2"}))

	// the conflicting seats were released between the failed insert and
	// the re-query; an empty conflict list would tell the client nothing
	// was taken, so report the whole request instead
	got := conflictList(requested, nil)
	assert.Equal(t, requested, got)

	// the fallback is a copy, not an alias of the caller's slice
	got[0] = "Z9"
	assert.Equal(t, "A1", requested[0])
}

func TestSeatsUnavailableErrorMessage(t *testing.T) {
	err := &SeatsUnavailableError{Seats: []string{"A1", "B2"}}
	assert.Equal(t, "seats unavailable: A1, B2", err.Error())
}
