package entity

import "fmt"

// MigrationType 迁移类型
type MigrationType int

const (
	MigrationTypeOther   MigrationType = 1 // 离线迁移，要求域已关机
	MigrationTypeLive    MigrationType = 2
	MigrationTypeResume  MigrationType = 3
	MigrationTypeRestart MigrationType = 4
)

func (t MigrationType) String() string {
	switch t {
	case MigrationTypeOther:
		return "offline"
	case MigrationTypeLive:
		return "live"
	case MigrationTypeResume:
		return "resume"
	case MigrationTypeRestart:
		return "restart"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Valid 是否是已知的迁移类型
func (t MigrationType) Valid() bool {
	return t >= MigrationTypeOther && t <= MigrationTypeRestart
}

// Transport 迁移使用的 libvirt 传输方式
type Transport int

const (
	TransportOther     Transport = 1
	TransportSSH       Transport = 2
	TransportTLS       Transport = 3
	TransportTLSStrict Transport = 4
	TransportTCP       Transport = 5
	TransportUnix      Transport = 6
)

// MigrationSettings 迁移参数，零值字段使用默认值（live + ssh）
type MigrationSettings struct {
	Type      MigrationType `json:"type,omitempty"`
	Transport Transport     `json:"transport,omitempty"`
	// WithoutRootKey 使用配置中的临时 SSH 私钥而不是 root 的默认密钥
	WithoutRootKey bool `json:"without_root_key,omitempty"`
}

// MigrateRequest 迁移域到目标主机
type MigrateRequest struct {
	Domain      string            `json:"domain"`
	Destination string            `json:"destination"`
	Settings    MigrationSettings `json:"settings"`
}

func (r *MigrateRequest) IsValid() error {
	return requireFields(field{"domain", r.Domain}, field{"destination", r.Destination})
}

// MigrateToSystemRequest 迁移域到目标系统，目标系统以其所在主机名标识
type MigrateToSystemRequest struct {
	Domain            string            `json:"domain"`
	DestinationSystem string            `json:"destination_system"`
	Settings          MigrationSettings `json:"settings"`
}

func (r *MigrateToSystemRequest) IsValid() error {
	return requireFields(field{"domain", r.Domain}, field{"destination_system", r.DestinationSystem})
}

// MigrateResponse 迁移已开始，ReturnCode 为 ReturnJobStarted
type MigrateResponse struct {
	Job        *Job `json:"job"`
	ReturnCode int  `json:"return_code"`
}

// CheckMigratableRequest 迁移前检查
type CheckMigratableRequest struct {
	Domain      string            `json:"domain"`
	Destination string            `json:"destination"`
	Settings    MigrationSettings `json:"settings"`
	// Params 逐行写入检查参数文件，传给检查脚本
	Params []string `json:"params,omitempty"`
}

func (r *CheckMigratableRequest) IsValid() error {
	return requireFields(field{"domain", r.Domain}, field{"destination", r.Destination})
}

// CheckMigratableToSystemRequest 迁移到目标系统前检查
type CheckMigratableToSystemRequest struct {
	Domain            string            `json:"domain"`
	DestinationSystem string            `json:"destination_system"`
	Settings          MigrationSettings `json:"settings"`
	Params            []string          `json:"params,omitempty"`
}

func (r *CheckMigratableToSystemRequest) IsValid() error {
	return requireFields(field{"domain", r.Domain}, field{"destination_system", r.DestinationSystem})
}

type CheckMigratableResponse struct {
	Migratable bool   `json:"migratable"`
	Reason     string `json:"reason,omitempty"`
}
