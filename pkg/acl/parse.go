package acl

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/jimyag/virtcim/pkg/xmlnode"
)

// Parse 解析 filter XML
// 任意一条规则或引用不合法时整个过滤器解析失败
func Parse(doc string) (*Filter, error) {
	root, err := xmlnode.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedXML, err)
	}
	if root.Name() != "filter" {
		return nil, fmt.Errorf("%w: unexpected root element <%s>", ErrMalformedXML, root.Name())
	}

	f := &Filter{}
	var ok bool
	if f.Name, ok = root.Attr("name"); !ok {
		return nil, fmt.Errorf("%w: filter name", ErrMissingAttr)
	}
	f.Chain = root.AttrValue("chain")
	f.Priority = root.AttrValue("priority")

	for _, child := range root.Elements() {
		switch child.Name() {
		case "uuid":
			f.UUID = child.TextValue()
		case "rule":
			rule, err := parseRule(child)
			if err != nil {
				return nil, fmt.Errorf("filter %s rule %d: %w", f.Name, len(f.Rules), err)
			}
			f.AppendRule(rule)
		case "filterref":
			ref, ok := child.Attr("filter")
			if !ok {
				return nil, fmt.Errorf("filter %s: %w: filterref filter", f.Name, ErrMissingAttr)
			}
			if !f.AppendRef(ref) {
				log.Debug().Str("filter", f.Name).Str("ref", ref).Msg("Ignoring duplicate filter reference")
			}
		}
	}

	return f, nil
}

func parseRule(n *xmlnode.Node) (*Rule, error) {
	r := &Rule{}
	var ok bool

	if r.Action, ok = n.Attr("action"); !ok {
		return nil, fmt.Errorf("%w: action", ErrMissingAttr)
	}
	if r.Direction, ok = n.Attr("direction"); !ok {
		return nil, fmt.Errorf("%w: direction", ErrMissingAttr)
	}
	r.Priority = n.AttrValue("priority")
	r.StateMatch = n.AttrValue("statematch")

	for _, child := range n.Elements() {
		parse, ok := protocols[child.Name()]
		if !ok {
			continue
		}
		r.ProtocolID = child.Name()
		r.Payload = parse(child)
		break
	}

	if r.Payload == nil {
		log.Debug().Str("action", r.Action).Str("direction", r.Direction).Msg("Rule has no recognized protocol")
	}
	return r, nil
}
