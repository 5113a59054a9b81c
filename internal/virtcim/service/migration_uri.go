package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jimyag/virtcim/internal/virtcim/entity"
)

// DestURI 构造目标 hypervisor 的 libvirt URI
// classPrefix 以 Xen 开头使用 xen 驱动，以 KVM 开头使用 qemu 驱动；
// 不支持的前缀或传输方式返回空字符串
func DestURI(classPrefix, dest, params string, transport entity.Transport) string {
	var driver string
	switch {
	case strings.HasPrefix(classPrefix, "Xen"):
		driver = "xen"
	case strings.HasPrefix(classPrefix, "KVM"):
		driver = "qemu"
	default:
		return ""
	}

	var tport, query string
	switch transport {
	case entity.TransportSSH:
		tport = "ssh"
	case entity.TransportTLS:
		tport = "tls"
		query = "no_verify=1"
	case entity.TransportTLSStrict:
		tport = "tls"
	case entity.TransportUnix:
		tport = "unix"
	case entity.TransportTCP:
		tport = "tcp"
	default:
		return ""
	}

	uri := fmt.Sprintf("%s+%s://%s", driver, tport, dest)
	if driver == "qemu" {
		uri += "/system"
	}

	if query != "" {
		uri += "/?" + query
	}
	if params != "" {
		if query == "" {
			uri += "?" + params
		} else {
			uri += "&" + params
		}
	}
	return uri
}

// ClassPrefixFromURI 根据本地连接 URI 的 scheme 推断 hypervisor 类名前缀
func ClassPrefixFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	driver, _, _ := strings.Cut(u.Scheme, "+")
	switch driver {
	case "xen":
		return "Xen"
	case "qemu":
		return "KVM"
	case "lxc":
		return "LXC"
	default:
		return ""
	}
}

// keyfileParam 迁移使用临时 SSH 私钥时的 URI 参数
func keyfileParam(path string) string {
	return "keyfile=" + path
}
