package constants

// JobStatus is the canonical status of a stored extraction.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning JobStatus = "RUNNING"  // in progress
	JobStatusOCROK   JobStatus = "OCR_OK"   // text extracted, fields pending
	JobStatusOK      JobStatus = "OK"       // fields extracted
	JobStatusPartial JobStatus = "PARTIAL"  // some pages failed
	JobStatusFailed  JobStatus = "FAILED"   // terminal failure
)
