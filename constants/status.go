package constants

// JobStatus is the canonical status for rows in analyses.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusAnalyzed JobStatus = "ANALYZED" // extraction produced text
	JobStatusFailed   JobStatus = "FAILED"   // extraction produced a failure; report still stored
)
