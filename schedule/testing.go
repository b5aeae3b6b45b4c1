package schedule

import (
	"database/sql"
	"testing"
	"time"

	chrondtest "github.com/chrond/chrond/internal/testing"
)

// createTestDB creates an in-memory test database.
func createTestDB(t *testing.T) *sql.DB {
	return chrondtest.CreateTestDB(t)
}

func timePtr(t time.Time) *time.Time {
	return &t
}
