// Package idgen 生成作业 ID
//
// 基于 Sonyflake，ID 时间有序且在单机内唯一，格式为 job-{递增数字}。
//
//	id, err := idgen.GenerateJobID()
//	// id: "job-1234567890"
//
//	seq, ok := idgen.ParseJobID(id)
package idgen
