package libvirt

import (
	"encoding/json"
	"fmt"

	"github.com/digitalocean/go-qemu/qmp"
)

// MigrationStatus 对应 QMP query-migrate 的返回
type MigrationStatus struct {
	Status string `json:"status"`
}

// Active 迁移是否仍在进行
func (s *MigrationStatus) Active() bool {
	switch s.Status {
	case "setup", "active", "pre-switchover", "device", "postcopy-active", "wait-unplug":
		return true
	default:
		return false
	}
}

// queryMigrateCommand 编码 query-migrate 命令
func queryMigrateCommand() (string, error) {
	raw, err := json.Marshal(qmp.Command{Execute: "query-migrate"})
	if err != nil {
		return "", fmt.Errorf("encode query-migrate: %w", err)
	}
	return string(raw), nil
}

// decodeMigrationStatus 解析 query-migrate 的返回，QMP 错误转换为 error
func decodeMigrationStatus(raw string) (*MigrationStatus, error) {
	var resp struct {
		Return MigrationStatus `json:"return"`
		Error  *struct {
			Class string `json:"class"`
			Desc  string `json:"desc"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decode query-migrate response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("query-migrate: %s: %s", resp.Error.Class, resp.Error.Desc)
	}
	return &resp.Return, nil
}

// QueryMigration 通过 libvirt 透传的 QEMU 监视器查询域的迁移状态
// 域未运行时 QEMU 不会返回 status 字段，此时 Status 为空
func (c *Client) QueryMigration(name string) (*MigrationStatus, error) {
	dom, err := c.lookup(name)
	if err != nil {
		return nil, err
	}

	cmd, err := queryMigrateCommand()
	if err != nil {
		return nil, err
	}

	raw, err := c.conn.QEMUDomainMonitorCommand(dom, cmd, 0)
	if err != nil {
		return nil, fmt.Errorf("query-migrate on %s: %w", name, err)
	}
	return decodeMigrationStatus(raw)
}
