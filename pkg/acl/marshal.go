package acl

import (
	"encoding/xml"
	"fmt"
)

type filterXML struct {
	XMLName  xml.Name `xml:"filter"`
	Name     string   `xml:"name,attr"`
	Chain    string   `xml:"chain,attr,omitempty"`
	Priority string   `xml:"priority,attr,omitempty"`
	UUID     string   `xml:"uuid,omitempty"`
	Rules    []*Rule  `xml:"rule"`
	Refs     []refXML `xml:"filterref"`
}

type refXML struct {
	Filter string `xml:"filter,attr"`
}

// Marshal 生成 filter XML，用于定义或更新过滤器
func (f *Filter) Marshal() (string, error) {
	if f.Name == "" {
		return "", fmt.Errorf("%w: filter name", ErrMissingAttr)
	}

	doc := filterXML{
		Name:     f.Name,
		Chain:    f.Chain,
		Priority: f.Priority,
		UUID:     f.UUID,
		Rules:    f.Rules,
	}
	for _, ref := range f.Refs {
		doc.Refs = append(doc.Refs, refXML{Filter: ref})
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal filter %s: %w", f.Name, err)
	}
	return string(out), nil
}

// MarshalXML 输出 <rule>，协议负载作为子元素
func (r *Rule) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name = xml.Name{Local: "rule"}
	start.Attr = []xml.Attr{
		{Name: xml.Name{Local: "action"}, Value: r.Action},
		{Name: xml.Name{Local: "direction"}, Value: r.Direction},
	}
	if r.Priority != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "priority"}, Value: r.Priority})
	}
	if r.StateMatch != "" {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: "statematch"}, Value: r.StateMatch})
	}

	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if r.Payload != nil {
		proto := r.ProtocolID
		if proto == "" {
			proto = r.Payload.RuleType().String()
		}
		if err := e.EncodeElement(r.Payload, xml.StartElement{Name: xml.Name{Local: proto}}); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}
