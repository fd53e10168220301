package jobModel

import "time"

type JobStatus string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"
)

// Job is one queued bulk-import of a knowledge base file. The triggering
// request only ever receives the acknowledgment - progress and results land
// in the shared import status, never back on the request path.
type Job struct {
	Id          string    `json:"id"`
	TraceId     string    `json:"trace_id"`
	FileName    string    `json:"file_name"`
	FilePath    string    `json:"file_path"`
	CreatedTime time.Time `json:"created_time"`
	Status      JobStatus `json:"status"`
}
