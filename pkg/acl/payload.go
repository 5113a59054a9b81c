package acl

import (
	"github.com/jimyag/virtcim/pkg/xmlnode"
)

// Payload 规则中协议相关的匹配字段，所有字段均可选
type Payload interface {
	RuleType() RuleType
	payload()
}

// MACMatch 以太网地址匹配
type MACMatch struct {
	SrcMACAddr string `xml:"srcmacaddr,attr,omitempty" json:"srcmacaddr,omitempty"`
	SrcMACMask string `xml:"srcmacmask,attr,omitempty" json:"srcmacmask,omitempty"`
	DstMACAddr string `xml:"dstmacaddr,attr,omitempty" json:"dstmacaddr,omitempty"`
	DstMACMask string `xml:"dstmacmask,attr,omitempty" json:"dstmacmask,omitempty"`
}

func (m *MACMatch) parse(n *xmlnode.Node) {
	m.SrcMACAddr = n.AttrValue("srcmacaddr")
	m.SrcMACMask = n.AttrValue("srcmacmask")
	m.DstMACAddr = n.AttrValue("dstmacaddr")
	m.DstMACMask = n.AttrValue("dstmacmask")
}

// IPMatch IP 地址匹配
type IPMatch struct {
	SrcIPAddr string `xml:"srcipaddr,attr,omitempty" json:"srcipaddr,omitempty"`
	SrcIPMask string `xml:"srcipmask,attr,omitempty" json:"srcipmask,omitempty"`
	DstIPAddr string `xml:"dstipaddr,attr,omitempty" json:"dstipaddr,omitempty"`
	DstIPMask string `xml:"dstipmask,attr,omitempty" json:"dstipmask,omitempty"`
}

func (m *IPMatch) parse(n *xmlnode.Node) {
	m.SrcIPAddr = n.AttrValue("srcipaddr")
	m.SrcIPMask = n.AttrValue("srcipmask")
	m.DstIPAddr = n.AttrValue("dstipaddr")
	m.DstIPMask = n.AttrValue("dstipmask")
}

// IPRange IP 地址区间匹配
type IPRange struct {
	SrcIPFrom string `xml:"srcipfrom,attr,omitempty" json:"srcipfrom,omitempty"`
	SrcIPTo   string `xml:"srcipto,attr,omitempty" json:"srcipto,omitempty"`
	DstIPFrom string `xml:"dstipfrom,attr,omitempty" json:"dstipfrom,omitempty"`
	DstIPTo   string `xml:"dstipto,attr,omitempty" json:"dstipto,omitempty"`
}

func (r *IPRange) parse(n *xmlnode.Node) {
	r.SrcIPFrom = n.AttrValue("srcipfrom")
	r.SrcIPTo = n.AttrValue("srcipto")
	r.DstIPFrom = n.AttrValue("dstipfrom")
	r.DstIPTo = n.AttrValue("dstipto")
}

// PortRange 端口区间匹配
type PortRange struct {
	SrcPortStart string `xml:"srcportstart,attr,omitempty" json:"srcportstart,omitempty"`
	SrcPortEnd   string `xml:"srcportend,attr,omitempty" json:"srcportend,omitempty"`
	DstPortStart string `xml:"dstportstart,attr,omitempty" json:"dstportstart,omitempty"`
	DstPortEnd   string `xml:"dstportend,attr,omitempty" json:"dstportend,omitempty"`
}

func (r *PortRange) parse(n *xmlnode.Node) {
	r.SrcPortStart = n.AttrValue("srcportstart")
	r.SrcPortEnd = n.AttrValue("srcportend")
	r.DstPortStart = n.AttrValue("dstportstart")
	r.DstPortEnd = n.AttrValue("dstportend")
}

// MACPayload <mac>
type MACPayload struct {
	MACMatch
	ProtocolID string `xml:"protocolid,attr,omitempty" json:"protocolid,omitempty"`
	Comment    string `xml:"comment,attr,omitempty" json:"comment,omitempty"`
}

func (*MACPayload) RuleType() RuleType { return RuleTypeMAC }
func (*MACPayload) payload()           {}

// ARPPayload <arp> 和 <rarp>
type ARPPayload struct {
	MACMatch
	HWType        string `xml:"hwtype,attr,omitempty" json:"hwtype,omitempty"`
	ProtocolType  string `xml:"protocoltype,attr,omitempty" json:"protocoltype,omitempty"`
	Opcode        string `xml:"opcode,attr,omitempty" json:"opcode,omitempty"`
	ARPSrcMACAddr string `xml:"arpsrcmacaddr,attr,omitempty" json:"arpsrcmacaddr,omitempty"`
	ARPDstMACAddr string `xml:"arpdstmacaddr,attr,omitempty" json:"arpdstmacaddr,omitempty"`
	ARPSrcIPAddr  string `xml:"arpsrcipaddr,attr,omitempty" json:"arpsrcipaddr,omitempty"`
	ARPDstIPAddr  string `xml:"arpdstipaddr,attr,omitempty" json:"arpdstipaddr,omitempty"`
	Comment       string `xml:"comment,attr,omitempty" json:"comment,omitempty"`
}

func (*ARPPayload) RuleType() RuleType { return RuleTypeARP }
func (*ARPPayload) payload()           {}

// IPPayload <ip> 和 <ipv6>
type IPPayload struct {
	MACMatch
	IPMatch
	Protocol string `xml:"protocol,attr,omitempty" json:"protocol,omitempty"`
	PortRange
	Comment string `xml:"comment,attr,omitempty" json:"comment,omitempty"`
}

func (*IPPayload) RuleType() RuleType { return RuleTypeIP }
func (*IPPayload) payload()           {}

// TCPPayload tcp/udp/sctp 及其 ipv6 变体
type TCPPayload struct {
	SrcMACAddr string `xml:"srcmacaddr,attr,omitempty" json:"srcmacaddr,omitempty"`
	IPMatch
	IPRange
	PortRange
	Comment string `xml:"comment,attr,omitempty" json:"comment,omitempty"`
	State   string `xml:"state,attr,omitempty" json:"state,omitempty"`
}

func (*TCPPayload) RuleType() RuleType { return RuleTypeTCP }
func (*TCPPayload) payload()           {}

// ICMPPayload <icmp> 和 <icmpv6>
type ICMPPayload struct {
	MACMatch
	IPMatch
	IPRange
	Type    string `xml:"type,attr,omitempty" json:"type,omitempty"`
	Code    string `xml:"code,attr,omitempty" json:"code,omitempty"`
	Comment string `xml:"comment,attr,omitempty" json:"comment,omitempty"`
	State   string `xml:"state,attr,omitempty" json:"state,omitempty"`
}

func (*ICMPPayload) RuleType() RuleType { return RuleTypeICMP }
func (*ICMPPayload) payload()           {}

// IGMPPayload igmp/esp/ah/udplite/all 及其 ipv6 变体
type IGMPPayload struct {
	MACMatch
	IPMatch
	IPRange
	Comment string `xml:"comment,attr,omitempty" json:"comment,omitempty"`
	State   string `xml:"state,attr,omitempty" json:"state,omitempty"`
}

func (*IGMPPayload) RuleType() RuleType { return RuleTypeIGMP }
func (*IGMPPayload) payload()           {}

type payloadParser func(n *xmlnode.Node) Payload

func parseMAC(n *xmlnode.Node) Payload {
	p := &MACPayload{}
	p.MACMatch.parse(n)
	p.ProtocolID = n.AttrValue("protocolid")
	p.Comment = n.AttrValue("comment")
	return p
}

func parseARP(n *xmlnode.Node) Payload {
	p := &ARPPayload{}
	p.MACMatch.parse(n)
	p.HWType = n.AttrValue("hwtype")
	p.ProtocolType = n.AttrValue("protocoltype")
	p.Opcode = n.AttrValue("opcode")
	p.ARPSrcMACAddr = n.AttrValue("arpsrcmacaddr")
	p.ARPDstMACAddr = n.AttrValue("arpdstmacaddr")
	p.ARPSrcIPAddr = n.AttrValue("arpsrcipaddr")
	p.ARPDstIPAddr = n.AttrValue("arpdstipaddr")
	p.Comment = n.AttrValue("comment")
	return p
}

func parseIP(n *xmlnode.Node) Payload {
	p := &IPPayload{}
	p.MACMatch.parse(n)
	p.IPMatch.parse(n)
	p.Protocol = n.AttrValue("protocol")
	p.PortRange.parse(n)
	p.Comment = n.AttrValue("comment")
	return p
}

func parseTCP(n *xmlnode.Node) Payload {
	p := &TCPPayload{}
	p.SrcMACAddr = n.AttrValue("srcmacaddr")
	p.IPMatch.parse(n)
	p.IPRange.parse(n)
	p.PortRange.parse(n)
	p.Comment = n.AttrValue("comment")
	p.State = n.AttrValue("state")
	return p
}

func parseICMP(n *xmlnode.Node) Payload {
	p := &ICMPPayload{}
	p.MACMatch.parse(n)
	p.IPMatch.parse(n)
	p.IPRange.parse(n)
	p.Type = n.AttrValue("type")
	p.Code = n.AttrValue("code")
	p.Comment = n.AttrValue("comment")
	p.State = n.AttrValue("state")
	return p
}

func parseIGMP(n *xmlnode.Node) Payload {
	p := &IGMPPayload{}
	p.MACMatch.parse(n)
	p.IPMatch.parse(n)
	p.IPRange.parse(n)
	p.Comment = n.AttrValue("comment")
	p.State = n.AttrValue("state")
	return p
}

// protocols 协议元素名到负载解析函数的映射
var protocols = map[string]payloadParser{
	"mac": parseMAC,

	"arp":  parseARP,
	"rarp": parseARP,

	"ip":   parseIP,
	"ipv6": parseIP,

	"tcp":       parseTCP,
	"tcp-ipv6":  parseTCP,
	"udp":       parseTCP,
	"udp-ipv6":  parseTCP,
	"sctp":      parseTCP,
	"sctp-ipv6": parseTCP,

	"icmp":   parseICMP,
	"icmpv6": parseICMP,

	"igmp":         parseIGMP,
	"igmp-ipv6":    parseIGMP,
	"esp":          parseIGMP,
	"esp-ipv6":     parseIGMP,
	"ah":           parseIGMP,
	"ah-ipv6":      parseIGMP,
	"udplite":      parseIGMP,
	"udplite-ipv6": parseIGMP,
	"all":          parseIGMP,
	"all-ipv6":     parseIGMP,
}

// IsProtocol 判断元素名是否为已知的协议
func IsProtocol(name string) bool {
	_, ok := protocols[name]
	return ok
}
