package domain

import "time"

// Bucket is one calendar-aligned period of a dashboard range with the hours
// worked inside it. Buckets are computed on read and never stored.
type Bucket struct {
	Period string    `json:"period"`
	Time   float64   `json:"time"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}
