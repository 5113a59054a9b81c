// virtcimctl 离线解析 libvirt XML 并运行迁移检查脚本
package main

import (
	"os"

	_ "github.com/jimmicro/version"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
