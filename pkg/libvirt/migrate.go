package libvirt

import (
	"fmt"

	"github.com/digitalocean/go-libvirt"
)

// MigrateDomain 将域迁移到 destURI 指向的 hypervisor
// 使用 peer-to-peer 模式，由源端 libvirtd 直接连接目标端
func (c *Client) MigrateDomain(name, destURI string, flags libvirt.DomainMigrateFlags) error {
	dom, err := c.lookup(name)
	if err != nil {
		return err
	}

	flags |= libvirt.MigratePeer2peer
	_, err = c.conn.DomainMigratePerform3Params(dom, []string{destURI}, []libvirt.TypedParam{}, []byte{}, flags)
	if err != nil {
		return fmt.Errorf("migrate domain %s to %s: %w", name, destURI, err)
	}
	return nil
}
