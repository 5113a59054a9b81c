package model

import (
	"time"
)

// Job 作业表
type Job struct {
	ID   string `gorm:"primaryKey;type:text;column:id" json:"id"` // job-{sonyflake}
	UUID string `gorm:"type:text;not null;uniqueIndex:idx_jobs_uuid;column:uuid" json:"uuid"`
	Kind string `gorm:"type:text;not null;index:idx_jobs_kind;column:kind" json:"kind"` // migration, snapshot

	Domain      string `gorm:"type:text;not null;index:idx_jobs_domain;column:domain" json:"domain"`
	Destination string `gorm:"type:text;column:destination" json:"destination"`
	DestURI     string `gorm:"type:text;column:dest_uri" json:"destURI"`
	ClassPrefix string `gorm:"type:text;column:class_prefix" json:"classPrefix"`

	MigrationType int `gorm:"type:integer;default:0;column:migration_type" json:"migrationType"`
	Transport     int `gorm:"type:integer;default:0;column:transport" json:"transport"`
	SnapshotType  int `gorm:"type:integer;default:0;column:snapshot_type" json:"snapshotType"`

	State      int    `gorm:"type:integer;not null;index:idx_jobs_state;column:state" json:"state"` // 3 starting, 4 running, 7 complete
	Status     string `gorm:"type:text;column:status" json:"status"`
	Error      bool   `gorm:"type:boolean;default:0;column:error" json:"error"`
	ReturnCode int    `gorm:"type:integer;default:0;column:return_code" json:"returnCode"`

	StartTime  time.Time `gorm:"type:datetime;not null;column:start_time" json:"startTime"`
	UpdateTime time.Time `gorm:"type:datetime;not null;column:update_time" json:"updateTime"`
	FinishTime time.Time `gorm:"type:datetime;column:finish_time" json:"finishTime"`
}

// TableName 指定表名
func (Job) TableName() string {
	return "jobs"
}
