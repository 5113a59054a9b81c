package libvirt

import (
	"fmt"

	"github.com/digitalocean/go-libvirt"
	"github.com/google/uuid"
)

// ListFilters 列出所有网络过滤器名称
func (c *Client) ListFilters() ([]string, error) {
	filters, _, err := c.conn.ConnectListAllNwfilters(1000, 0)
	if err != nil {
		return nil, fmt.Errorf("list nwfilters: %w", err)
	}

	names := make([]string, 0, len(filters))
	for _, f := range filters {
		names = append(names, f.Name)
	}
	return names, nil
}

// GetFilterXML 按名称获取过滤器 XML
func (c *Client) GetFilterXML(name string) (string, error) {
	f, err := c.conn.NwfilterLookupByName(name)
	if err != nil {
		return "", fmt.Errorf("lookup nwfilter %s: %w", name, err)
	}
	return c.filterXML(f)
}

// GetFilterXMLByUUID 按 UUID 获取过滤器 XML
func (c *Client) GetFilterXMLByUUID(id string) (string, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return "", fmt.Errorf("parse nwfilter uuid %q: %w", id, err)
	}

	f, err := c.conn.NwfilterLookupByUUID(libvirt.UUID(parsed))
	if err != nil {
		return "", fmt.Errorf("lookup nwfilter %s: %w", id, err)
	}
	return c.filterXML(f)
}

func (c *Client) filterXML(f libvirt.Nwfilter) (string, error) {
	xml, err := c.conn.NwfilterGetXMLDesc(f, 0)
	if err != nil {
		return "", fmt.Errorf("get nwfilter XML: %w", err)
	}
	return xml, nil
}

// DefineFilter 定义或更新过滤器
func (c *Client) DefineFilter(xml string) error {
	if _, err := c.conn.NwfilterDefineXML(xml); err != nil {
		return fmt.Errorf("define nwfilter: %w", err)
	}
	return nil
}

// UndefineFilter 删除过滤器
func (c *Client) UndefineFilter(name string) error {
	f, err := c.conn.NwfilterLookupByName(name)
	if err != nil {
		return fmt.Errorf("lookup nwfilter %s: %w", name, err)
	}
	if err := c.conn.NwfilterUndefine(f); err != nil {
		return fmt.Errorf("undefine nwfilter %s: %w", name, err)
	}
	return nil
}
