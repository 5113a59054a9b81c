package acl

import (
	"encoding/json"
	"fmt"

	"github.com/jimyag/virtcim/pkg/xmlnode"
)

// UnmarshalJSON 按 protocol_id 还原负载的具体类型
func (r *Rule) UnmarshalJSON(data []byte) error {
	type plain Rule
	var aux struct {
		plain
		Payload json.RawMessage `json:"payload,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Rule(aux.plain)
	r.Payload = nil

	if len(aux.Payload) == 0 || string(aux.Payload) == "null" {
		return nil
	}

	parse, ok := protocols[r.ProtocolID]
	if !ok {
		return fmt.Errorf("%w: unknown protocol %q", ErrMalformedXML, r.ProtocolID)
	}
	p := parse(&xmlnode.Node{})
	if err := json.Unmarshal(aux.Payload, p); err != nil {
		return fmt.Errorf("decode %s payload: %w", r.ProtocolID, err)
	}
	r.Payload = p
	return nil
}
