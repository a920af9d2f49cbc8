package domain

import (
	"pulseboard/internal/repository/sqlite"
)

// TimeEntryMapper handles conversion between domain and database TimeEntry models.
type TimeEntryMapper struct{}

// NewTimeEntryMapper creates a new TimeEntryMapper instance.
func NewTimeEntryMapper() *TimeEntryMapper {
	return &TimeEntryMapper{}
}

// ToDatabase converts a domain TimeEntry to a database TimeEntry.
// Segments are stored separately and are not carried.
func (m *TimeEntryMapper) ToDatabase(domainEntry TimeEntry) sqlite.TimeEntry {
	return sqlite.TimeEntry{
		ID:             domainEntry.ID,
		UserID:         domainEntry.UserID,
		CardID:         domainEntry.CardID,
		StartTime:      domainEntry.StartTime,
		EndTime:        domainEntry.EndTime,
		LastResumeTime: domainEntry.LastResumeTime,
		IsPaused:       domainEntry.IsPaused,
		TotalDuration:  domainEntry.TotalDuration,
		Version:        domainEntry.Version,
		CreatedAt:      domainEntry.StartTime,
		UpdatedAt:      domainEntry.UpdatedAt,
	}
}

// FromDatabase converts a database TimeEntry to a domain TimeEntry.
func (m *TimeEntryMapper) FromDatabase(dbEntry sqlite.TimeEntry) TimeEntry {
	return TimeEntry{
		ID:             dbEntry.ID,
		UserID:         dbEntry.UserID,
		CardID:         dbEntry.CardID,
		StartTime:      dbEntry.StartTime,
		EndTime:        dbEntry.EndTime,
		LastResumeTime: dbEntry.LastResumeTime,
		IsPaused:       dbEntry.IsPaused,
		TotalDuration:  dbEntry.TotalDuration,
		Version:        dbEntry.Version,
		UpdatedAt:      dbEntry.UpdatedAt,
	}
}

// FromDatabaseSlice converts database entries to domain entries, attaching
// each entry's segments when present.
func (m *TimeEntryMapper) FromDatabaseSlice(dbEntries []*sqlite.TimeEntry, segments map[int64][]*sqlite.TimeSegment) []TimeEntry {
	domainEntries := make([]TimeEntry, len(dbEntries))
	for i, entry := range dbEntries {
		domainEntries[i] = m.FromDatabase(*entry)
		domainEntries[i].Segments = m.SegmentsFromDatabase(segments[entry.ID])
	}
	return domainEntries
}

// SegmentsFromDatabase converts stored segments to domain segments.
func (m *TimeEntryMapper) SegmentsFromDatabase(dbSegments []*sqlite.TimeSegment) []Segment {
	if len(dbSegments) == 0 {
		return nil
	}
	segments := make([]Segment, len(dbSegments))
	for i, s := range dbSegments {
		segments[i] = Segment{StartedAt: s.StartedAt, EndedAt: s.EndedAt}
	}
	return segments
}

// SearchOptionsMapper handles conversion between domain and database SearchOptions.
type SearchOptionsMapper struct{}

// NewSearchOptionsMapper creates a new SearchOptionsMapper instance.
func NewSearchOptionsMapper() *SearchOptionsMapper {
	return &SearchOptionsMapper{}
}

// ToDatabase converts domain SearchOptions to database SearchOptions.
func (m *SearchOptionsMapper) ToDatabase(domainOpts SearchOptions) sqlite.SearchOptions {
	return sqlite.SearchOptions{
		UserID:    domainOpts.UserID,
		CardID:    domainOpts.CardID,
		StartTime: domainOpts.StartTime,
		EndTime:   domainOpts.EndTime,
		OpenOnly:  domainOpts.OpenOnly,
	}
}

// Mapper provides a unified interface for all mapping operations.
type Mapper struct {
	TimeEntry     *TimeEntryMapper
	SearchOptions *SearchOptionsMapper
}

// NewMapper creates a new Mapper instance with all sub-mappers.
func NewMapper() *Mapper {
	return &Mapper{
		TimeEntry:     NewTimeEntryMapper(),
		SearchOptions: NewSearchOptionsMapper(),
	}
}
