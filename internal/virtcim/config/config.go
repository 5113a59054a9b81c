// Package config 加载 virtcim 配置
//
// 优先级：环境变量 > 配置文件（VIRTCIM_CONFIG 指定的 YAML）> 默认值
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultLibvirtURI   = "qemu:///system"
	DefaultAddress      = "0.0.0.0:7780"
	DefaultSaveDir      = "/var/lib/libvirt"
	DefaultChecksDir    = "/usr/libexec/virtcim/migration-checks"
	DefaultCheckTimeout = 10 * time.Second
)

type Config struct {
	// LibvirtURI 本地 hypervisor 连接 URI
	// 环境变量 LIBVIRT_URI
	LibvirtURI string `yaml:"libvirt_uri"`

	// DataDir 存放作业数据库
	// 环境变量 VIRTCIM_DATA_DIR，默认 ~/.local/share/virtcim
	DataDir string `yaml:"data_dir"`

	Address string `yaml:"address"`

	Migration MigrationConfig `yaml:"migration"`

	// SaveDir 快照内存镜像目录，镜像路径为 <SaveDir>/<domain>.save
	SaveDir string `yaml:"save_dir"`
}

// MigrationConfig 迁移相关配置
type MigrationConfig struct {
	// ChecksDir 迁移前检查脚本目录
	ChecksDir string `yaml:"checks_dir"`
	// CheckTimeout 单个检查脚本的超时
	CheckTimeout time.Duration `yaml:"check_timeout"`

	// SSHTmpKey 迁移使用的临时 SSH 私钥路径，为空时禁止使用非 root 密钥迁移
	SSHTmpKey string `yaml:"ssh_tmp_key"`

	// ShutdownPollInterval/ShutdownPollCount restart 迁移等待域关机的轮询间隔和次数
	ShutdownPollInterval time.Duration `yaml:"shutdown_poll_interval"`
	ShutdownPollCount    int           `yaml:"shutdown_poll_count"`

	// UndefineRetryInterval/UndefineRetryCount 迁移后删除本地定义的重试间隔和次数
	UndefineRetryInterval time.Duration `yaml:"undefine_retry_interval"`
	UndefineRetryCount    int           `yaml:"undefine_retry_count"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		LibvirtURI: DefaultLibvirtURI,
		DataDir:    defaultDataDir(),
		Address:    DefaultAddress,
		SaveDir:    DefaultSaveDir,
		Migration: MigrationConfig{
			ChecksDir:             DefaultChecksDir,
			CheckTimeout:          DefaultCheckTimeout,
			ShutdownPollInterval:  time.Second,
			ShutdownPollCount:     60,
			UndefineRetryInterval: time.Second,
			UndefineRetryCount:    10,
		},
	}
}

// New 加载配置
func New() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("VIRTCIM_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DBPath 作业数据库路径
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "virtcim.db")
}

// SavePath 域的快照内存镜像路径
func (c *Config) SavePath(domain string) string {
	return filepath.Join(c.SaveDir, domain+".save")
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.LibvirtURI == "" {
		return errors.New("libvirt uri is required")
	}
	if c.DataDir == "" {
		return errors.New("data dir is required")
	}
	if c.Migration.CheckTimeout <= 0 {
		return fmt.Errorf("invalid check timeout %s", c.Migration.CheckTimeout)
	}
	if c.Migration.ShutdownPollCount < 0 || c.Migration.UndefineRetryCount < 0 {
		return errors.New("poll and retry counts must not be negative")
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if uri := os.Getenv("LIBVIRT_URI"); uri != "" {
		c.LibvirtURI = uri
	}
	if dir := os.Getenv("VIRTCIM_DATA_DIR"); dir != "" {
		c.DataDir = dir
	}
	if addr := os.Getenv("VIRTCIM_ADDRESS"); addr != "" {
		c.Address = addr
	}
	if dir := os.Getenv("VIRTCIM_CHECKS_DIR"); dir != "" {
		c.Migration.ChecksDir = dir
	}
	if v := os.Getenv("VIRTCIM_CHECK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse VIRTCIM_CHECK_TIMEOUT: %w", err)
		}
		c.Migration.CheckTimeout = d
	}
	if dir := os.Getenv("VIRTCIM_SAVE_DIR"); dir != "" {
		c.SaveDir = dir
	}
	if key := os.Getenv("VIRTCIM_SSH_TMP_KEY"); key != "" {
		c.Migration.SSHTmpKey = key
	}
	return nil
}

// defaultDataDir 优先使用用户主目录下的 .local/share/virtcim
func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "virtcim")
	}
	return filepath.Join(".", "data")
}
