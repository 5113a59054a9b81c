package entity

// SnapshotType 快照类型
type SnapshotType int

const (
	// SnapshotTypeMem 保存内存镜像，域随后停止
	SnapshotTypeMem SnapshotType = 32768
	// SnapshotTypeMemT 保存内存镜像后立即恢复运行
	SnapshotTypeMemT SnapshotType = 32769
)

type CreateSnapshotRequest struct {
	Domain string       `json:"domain"`
	Type   SnapshotType `json:"type"`
}

func (r *CreateSnapshotRequest) IsValid() error {
	return requireFields(field{"domain", r.Domain})
}

type CreateSnapshotResponse struct {
	Job        *Job `json:"job"`
	ReturnCode int  `json:"return_code"`
}

// SnapshotRequest 删除或应用快照
type SnapshotRequest struct {
	Domain string `json:"domain"`
}

func (r *SnapshotRequest) IsValid() error {
	return requireFields(field{"domain", r.Domain})
}
