package entity

import (
	"time"
)

// JobKind 作业类别
type JobKind string

const (
	JobKindMigration JobKind = "migration"
	JobKindSnapshot  JobKind = "snapshot"
)

// JobState 作业状态，只能按 Starting -> Running -> Complete 单向推进
type JobState int

const (
	JobStateStarting JobState = 3
	JobStateRunning  JobState = 4
	JobStateComplete JobState = 7
)

func (s JobState) String() string {
	switch s {
	case JobStateStarting:
		return "Starting"
	case JobStateRunning:
		return "Running"
	case JobStateComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// 方法返回码
const (
	ReturnCompleted  = 0
	ReturnFailed     = 2
	ReturnJobStarted = 4096
)

// 作业状态文本
const (
	StatusStarting  = "Starting"
	StatusRunning   = "Running"
	StatusCompleted = "Completed"
)

// Job 异步作业
type Job struct {
	ID   string  `json:"id"`
	UUID string  `json:"uuid"`
	Kind JobKind `json:"kind"`

	Domain      string `json:"domain"`
	Destination string `json:"destination,omitempty"`
	DestURI     string `json:"dest_uri,omitempty"`
	ClassPrefix string `json:"class_prefix,omitempty"`

	MigrationType MigrationType `json:"migration_type,omitempty"`
	Transport     Transport     `json:"transport,omitempty"`
	SnapshotType  SnapshotType  `json:"snapshot_type,omitempty"`

	State      JobState `json:"state"`
	Status     string   `json:"status"`
	Error      bool     `json:"error"`
	ReturnCode int      `json:"return_code"`

	StartTime  time.Time `json:"start_time"`
	UpdateTime time.Time `json:"update_time"`
	FinishTime time.Time `json:"finish_time,omitzero"`
}

// Clone 返回作业快照
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	return &c
}

// Done 作业是否已结束
func (j *Job) Done() bool {
	return j.State == JobStateComplete
}

// DescribeJobRequest 查询作业请求
type DescribeJobRequest struct {
	ID string `json:"id"`
}

func (r *DescribeJobRequest) IsValid() error {
	return requireFields(field{"id", r.ID})
}

type DescribeJobResponse struct {
	Job *Job `json:"job"`
}

// ListJobsRequest 列出作业请求，字段为空时不过滤
type ListJobsRequest struct {
	Kind   JobKind `json:"kind,omitempty"`
	Domain string  `json:"domain,omitempty"`
}

type ListJobsResponse struct {
	Jobs []*Job `json:"jobs"`
}
