package domain

import (
	"time"

	"github.com/google/uuid"
)

// SearchOptions represents search criteria for time entries. A time window
// selects entries whose span overlaps it.
type SearchOptions struct {
	UserID    *uuid.UUID
	CardID    *uuid.UUID
	StartTime *time.Time
	EndTime   *time.Time
	OpenOnly  bool
}
