// Package realtime carries typed event envelopes over a WebSocket side channel.
//
// Every payload is a JSON object with a mandatory "type" tag. Decode maps the
// tag onto a closed set of Go types; tags it does not know become Unknown.
package realtime

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

type EventType string

const (
	TypeCampaignUpdate  EventType = "campaign_update"
	TypeAnalyticsUpdate EventType = "analytics_update"
	TypeClientUpdate    EventType = "client_update"
	TypeSubscribe       EventType = "subscribe"
	TypeUnsubscribe     EventType = "unsubscribe"
)

// Update actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChannelCampaigns is the channel the subscribe helpers target.
const ChannelCampaigns = "campaigns"

var ErrMissingType = errors.New("envelope has no type")

// Envelope is implemented only by the types in this file.
type Envelope interface {
	Type() EventType
	isEnvelope()
}

// Update is the body shared by every *_update envelope.
type Update struct {
	Action string          `json:"action"`
	ID     string          `json:"id"`
	Data   json.RawMessage `json:"data,omitempty"`
}

type CampaignUpdate struct{ Update }
type AnalyticsUpdate struct{ Update }
type ClientUpdate struct{ Update }

type Subscribe struct {
	Channel string `json:"channel"`
}

type Unsubscribe struct {
	Channel string `json:"channel"`
}

// Unknown keeps an envelope whose tag is not one of the known types, or whose
// body did not fit the known type's shape.
type Unknown struct {
	Tag string
	Raw json.RawMessage
}

func (CampaignUpdate) Type() EventType  { return TypeCampaignUpdate }
func (AnalyticsUpdate) Type() EventType { return TypeAnalyticsUpdate }
func (ClientUpdate) Type() EventType    { return TypeClientUpdate }
func (Subscribe) Type() EventType       { return TypeSubscribe }
func (Unsubscribe) Type() EventType     { return TypeUnsubscribe }
func (u Unknown) Type() EventType       { return EventType(u.Tag) }

func (CampaignUpdate) isEnvelope()  {}
func (AnalyticsUpdate) isEnvelope() {}
func (ClientUpdate) isEnvelope()    {}
func (Subscribe) isEnvelope()       {}
func (Unsubscribe) isEnvelope()     {}
func (Unknown) isEnvelope()         {}

// NewUpdate builds the update envelope for t with data marshalled as JSON.
func NewUpdate(t EventType, action, id string, data any) (Envelope, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s data: %w", t, err)
		}
		raw = b
	}
	u := Update{Action: action, ID: id, Data: raw}
	switch t {
	case TypeCampaignUpdate:
		return CampaignUpdate{u}, nil
	case TypeAnalyticsUpdate:
		return AnalyticsUpdate{u}, nil
	case TypeClientUpdate:
		return ClientUpdate{u}, nil
	default:
		return nil, fmt.Errorf("%s is not an update type", t)
	}
}

// Channel names the subscription channel an envelope is delivered on.
func Channel(e Envelope) string {
	switch e.(type) {
	case CampaignUpdate:
		return ChannelCampaigns
	case AnalyticsUpdate:
		return "analytics"
	case ClientUpdate:
		return "clients"
	default:
		return ""
	}
}

type updateWire struct {
	Type EventType `json:"type"`
	Update
}

type channelWire struct {
	Type    EventType `json:"type"`
	Channel string    `json:"channel"`
}

// Encode renders e as a tagged JSON object.
func Encode(e Envelope) ([]byte, error) {
	switch v := e.(type) {
	case CampaignUpdate:
		return json.Marshal(updateWire{Type: v.Type(), Update: v.Update})
	case AnalyticsUpdate:
		return json.Marshal(updateWire{Type: v.Type(), Update: v.Update})
	case ClientUpdate:
		return json.Marshal(updateWire{Type: v.Type(), Update: v.Update})
	case Subscribe:
		return json.Marshal(channelWire{Type: TypeSubscribe, Channel: v.Channel})
	case Unsubscribe:
		return json.Marshal(channelWire{Type: TypeUnsubscribe, Channel: v.Channel})
	case Unknown:
		return v.Raw, nil
	default:
		return nil, fmt.Errorf("unsupported envelope %T", e)
	}
}

// Decode parses a tagged JSON object. Payloads that are not JSON objects or
// lack a type tag are errors. Unrecognised tags, and known tags whose body
// does not match the typed shape, decode to Unknown.
func Decode(data []byte) (Envelope, error) {
	var head struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if head.Type == nil || *head.Type == "" {
		return nil, ErrMissingType
	}

	switch t := EventType(*head.Type); t {
	case TypeCampaignUpdate, TypeAnalyticsUpdate, TypeClientUpdate:
		var w updateWire
		if err := json.Unmarshal(data, &w); err != nil {
			return unknown(t, data), nil
		}
		switch t {
		case TypeCampaignUpdate:
			return CampaignUpdate{w.Update}, nil
		case TypeAnalyticsUpdate:
			return AnalyticsUpdate{w.Update}, nil
		default:
			return ClientUpdate{w.Update}, nil
		}
	case TypeSubscribe, TypeUnsubscribe:
		var w channelWire
		if err := json.Unmarshal(data, &w); err != nil {
			return unknown(t, data), nil
		}
		if t == TypeSubscribe {
			return Subscribe{Channel: w.Channel}, nil
		}
		return Unsubscribe{Channel: w.Channel}, nil
	default:
		return unknown(t, data), nil
	}
}

func unknown(t EventType, data []byte) Unknown {
	raw := make(json.RawMessage, len(data))
	copy(raw, data)
	return Unknown{Tag: string(t), Raw: raw}
}
