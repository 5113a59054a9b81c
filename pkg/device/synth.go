package device

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	// ErrMemoryInconsistent hypervisor 报告的当前内存大于最大内存
	ErrMemoryInconsistent = errors.New("current memory exceeds max memory")
	// ErrVcpuCountMismatch hypervisor 返回的 vCPU 记录少于报告的数量
	ErrVcpuCountMismatch = errors.New("vcpu info count mismatch")
)

// VcpuInfo hypervisor 返回的单个 vCPU 运行信息
type VcpuInfo struct {
	Number  uint32
	State   int32
	CPUTime uint64
	CPU     int32
}

// MemoryFromInfo 根据运行时内存计数生成 "mem" 设备
func MemoryFromInfo(current, maxMem uint64) (*Mem, error) {
	if current > maxMem {
		return nil, fmt.Errorf("%w: %d > %d", ErrMemoryInconsistent, current, maxMem)
	}
	return &Mem{Size: current, MaxSize: maxMem}, nil
}

// VcpusFromInfo 根据运行时 vCPU 信息生成每个 vCPU 的设备
// 只使用前 count 条记录
func VcpusFromInfo(count int, infos []VcpuInfo) ([]*Vcpu, error) {
	if len(infos) < count {
		return nil, fmt.Errorf("%w: got %d, expected %d", ErrVcpuCountMismatch, len(infos), count)
	}

	out := make([]*Vcpu, 0, count)
	for _, info := range infos[:count] {
		out = append(out, &Vcpu{
			Number:  info.Number,
			State:   info.State,
			CPUTime: info.CPUTime,
			CPU:     info.CPU,
		})
	}
	return out, nil
}

// DiskTypeFromFile 根据路径的文件类型判断磁盘类型
func DiskTypeFromFile(path string) DiskType {
	fi, err := os.Stat(path)
	if err != nil {
		return DiskTypeUnknown
	}
	mode := fi.Mode()
	switch {
	case mode&os.ModeDevice != 0 && mode&os.ModeCharDevice == 0:
		return DiskTypePhy
	case mode.IsRegular():
		return DiskTypeFile
	default:
		return DiskTypeUnknown
	}
}

// FQDevID 生成全限定设备 ID：<host>/<dev>
func FQDevID(host, devID string) string {
	return host + "/" + devID
}

// ParseFQDevID 解析全限定设备 ID，在第一个 "/" 处拆分
// host 和 dev 都不能为空
func ParseFQDevID(id string) (host, devID string, ok bool) {
	host, devID, found := strings.Cut(id, "/")
	if !found || host == "" || devID == "" {
		return "", "", false
	}
	return host, devID, true
}
