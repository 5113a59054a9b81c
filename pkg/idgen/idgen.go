package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// JobPrefix 作业 ID 前缀
const JobPrefix = "job"

// Generator 递增 ID 生成器
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if sf == nil {
		// 取不到私有 IP 作为机器 ID 时退化为固定机器 ID
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MachineID: func() (uint16, error) { return 1, nil },
		})
	}
	return &Generator{sf: sf}
}

// GenerateJobID 生成作业 ID（格式：job-{递增 ID}）
func (g *Generator) GenerateJobID() (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("generate job ID: %w", err)
	}
	return fmt.Sprintf("%s-%d", JobPrefix, id), nil
}

// ParseJobID 解析作业 ID 的数字部分
func ParseJobID(id string) (uint64, bool) {
	rest, ok := strings.CutPrefix(id, JobPrefix+"-")
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.ParseUint(rest, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GenerateJobID 使用默认生成器生成作业 ID
func GenerateJobID() (string, error) {
	return DefaultGenerator().GenerateJobID()
}
