// Package xmlnode 提供对 libvirt XML 文档的容错访问
//
// 所有解析器都通过 Node 读取属性和文本，缺失的值统一表示为 ("", false)，
// 而不是错误。
package xmlnode

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// ErrEmptyDocument 文档为空或没有根元素
var ErrEmptyDocument = errors.New("empty xml document")

// Node 对 etree 元素的只读封装，零值和 nil 都表示不存在的元素
type Node struct {
	el *etree.Element
}

// Parse 解析完整的 XML 文档，返回根元素
func Parse(doc string) (*Node, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, ErrEmptyDocument
	}

	d := etree.NewDocument()
	d.ReadSettings.ValidateInput = true
	if err := d.ReadFromString(doc); err != nil {
		return nil, fmt.Errorf("read xml: %w", err)
	}
	root := d.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	return wrap(root), nil
}

func wrap(el *etree.Element) *Node {
	if el == nil {
		return nil
	}
	return &Node{el: el}
}

func wrapAll(els []*etree.Element) []*Node {
	if len(els) == 0 {
		return nil
	}
	out := make([]*Node, 0, len(els))
	for _, el := range els {
		out = append(out, &Node{el: el})
	}
	return out
}

func (n *Node) element() *etree.Element {
	if n == nil {
		return nil
	}
	return n.el
}

// Name 返回元素名（不含命名空间前缀）
func (n *Node) Name() string {
	el := n.element()
	if el == nil {
		return ""
	}
	return el.Tag
}

// Attr 获取属性值，属性不存在时返回 ("", false)
// 只比较本地名，忽略命名空间前缀
func (n *Node) Attr(name string) (string, bool) {
	el := n.element()
	if el == nil {
		return "", false
	}
	for _, a := range el.Attr {
		if a.Key == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrValue 获取属性值，不区分缺失和空值
func (n *Node) AttrValue(name string) string {
	v, _ := n.Attr(name)
	return v
}

// Text 获取元素的文本内容
// 没有文本（或只有空白）时返回 ("", false)
func (n *Node) Text() (string, bool) {
	el := n.element()
	if el == nil {
		return "", false
	}
	text := el.Text()
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// TextValue 获取元素文本，缺失时返回空字符串
func (n *Node) TextValue() string {
	v, _ := n.Text()
	return v
}

// Elements 返回所有直接子元素
func (n *Node) Elements() []*Node {
	el := n.element()
	if el == nil {
		return nil
	}
	return wrapAll(el.ChildElements())
}

// Children 返回指定名称的直接子元素，按文档顺序
func (n *Node) Children(name string) []*Node {
	el := n.element()
	if el == nil {
		return nil
	}
	return wrapAll(el.SelectElements(name))
}

// Child 返回第一个指定名称的直接子元素，不存在时返回 nil
func (n *Node) Child(name string) *Node {
	el := n.element()
	if el == nil {
		return nil
	}
	return wrap(el.SelectElement(name))
}

// ChildText 返回第一个指定名称子元素的文本
func (n *Node) ChildText(name string) (string, bool) {
	return n.Child(name).Text()
}

// ChildAttr 返回第一个指定名称子元素的属性
func (n *Node) ChildAttr(child, attr string) (string, bool) {
	return n.Child(child).Attr(attr)
}

// Select 在 n 所在的文档上执行绝对路径查询，例如 "/domain/devices/disk"
// 结果按文档顺序返回，非法路径返回 nil
func (n *Node) Select(path string) []*Node {
	el := n.element()
	if el == nil || !strings.HasPrefix(path, "/") {
		return nil
	}
	p, err := etree.CompilePath(path)
	if err != nil {
		return nil
	}
	return wrapAll(el.FindElementsPath(p))
}
