package libvirt

import (
	"fmt"

	"github.com/digitalocean/go-libvirt"
	"github.com/rs/zerolog/log"
)

// GetStoragePoolXML 获取存储池的 XML 描述
func (c *Client) GetStoragePoolXML(name string) (string, error) {
	pool, err := c.conn.StoragePoolLookupByName(name)
	if err != nil {
		return "", fmt.Errorf("lookup storage pool %s: %w", name, err)
	}
	xml, err := c.conn.StoragePoolGetXMLDesc(pool, 0)
	if err != nil {
		return "", fmt.Errorf("get pool XML: %w", err)
	}
	return xml, nil
}

// DefinePool 定义并启动存储池
// 启动失败时删除刚定义的存储池
func (c *Client) DefinePool(xml string) error {
	pool, err := c.conn.StoragePoolDefineXML(xml, 0)
	if err != nil {
		return fmt.Errorf("define storage pool: %w", err)
	}

	if err := c.conn.StoragePoolCreate(pool, libvirt.StoragePoolCreateNormal); err != nil {
		if uerr := c.conn.StoragePoolUndefine(pool); uerr != nil {
			log.Warn().Err(uerr).Str("pool", pool.Name).Msg("Failed to undefine storage pool after start failure")
		}
		return fmt.Errorf("start storage pool %s: %w", pool.Name, err)
	}

	return nil
}

// DestroyPool 停止并删除存储池定义
func (c *Client) DestroyPool(name string) error {
	pool, err := c.conn.StoragePoolLookupByName(name)
	if err != nil {
		return fmt.Errorf("lookup storage pool %s: %w", name, err)
	}

	if err := c.conn.StoragePoolDestroy(pool); err != nil {
		return fmt.Errorf("destroy storage pool %s: %w", name, err)
	}

	if err := c.conn.StoragePoolUndefine(pool); err != nil {
		return fmt.Errorf("undefine storage pool %s: %w", name, err)
	}

	return nil
}

// CreateVolume 在存储池中创建存储卷，返回卷的路径
func (c *Client) CreateVolume(poolName, xml string) (string, error) {
	pool, err := c.conn.StoragePoolLookupByName(poolName)
	if err != nil {
		return "", fmt.Errorf("lookup storage pool %s: %w", poolName, err)
	}

	vol, err := c.conn.StorageVolCreateXML(pool, xml, 0)
	if err != nil {
		return "", fmt.Errorf("create volume: %w", err)
	}

	path, err := c.conn.StorageVolGetPath(vol)
	if err != nil {
		return "", fmt.Errorf("get volume path: %w", err)
	}
	return path, nil
}

// DeleteVolume 删除存储卷
func (c *Client) DeleteVolume(poolName, volumeName string) error {
	pool, err := c.conn.StoragePoolLookupByName(poolName)
	if err != nil {
		return fmt.Errorf("lookup storage pool %s: %w", poolName, err)
	}

	vol, err := c.conn.StorageVolLookupByName(pool, volumeName)
	if err != nil {
		return fmt.Errorf("lookup volume %s: %w", volumeName, err)
	}

	if err := c.conn.StorageVolDelete(vol, libvirt.StorageVolDeleteNormal); err != nil {
		return fmt.Errorf("delete volume: %w", err)
	}

	return nil
}
