package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN("booker", "s3cret", "db.internal", "3306", "tickets")

	assert.True(t, strings.HasPrefix(dsn, "booker:s3cret@tcp(db.internal:3306)/tickets?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "charset=utf8mb4")
}

func TestBuildDSNEmptyPassword(t *testing.T) {
	dsn := buildDSN("booker", "", "localhost", "3306", "tickets")
	assert.True(t, strings.HasPrefix(dsn, "booker@tcp(localhost:3306)/tickets?"), dsn)
}
