// Package submitter tracks the origins of record submissions.
package submitter

// Submitter is a submission source identified by client IP. A banned
// submitter is turned away before any submission processing happens.
type Submitter struct {
	ID     int64  `json:"id"`
	IP     string `json:"ip"`
	Banned bool   `json:"banned"`
}
