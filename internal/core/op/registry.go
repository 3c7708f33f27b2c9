package op

import (
	"encoding/json"
	"errors"
)

// ErrUnknownKind is returned when an operation kind is unknown.
var ErrUnknownKind = errors.New("unknown operation kind")

// FromJSON creates an Operation from a JSON object. The "kind" field selects
// the concrete type; the remaining fields unmarshal into it.
func FromJSON(data []byte) (Operation, error) {
	var raw struct {
		Kind Kind `json:"kind"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	o, err := NewFromKind(raw.Kind)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(data, o); err != nil {
		return nil, err
	}
	return o, nil
}

// NewFromKind creates a zero operation of the given kind.
func NewFromKind(kind Kind) (Operation, error) {
	switch kind {
	case KindSetAdmin:
		return &SetAdmin{}, nil
	case KindWhitelistUser:
		return &WhitelistUser{}, nil
	case KindBlacklistUser:
		return &BlacklistUser{}, nil
	case KindWhitelistPair:
		return &WhitelistPair{}, nil
	case KindBlacklistPair:
		return &BlacklistPair{}, nil
	case KindGetPrice:
		return &GetPrice{}, nil
	case KindUpdate:
		return &Update{}, nil
	case KindHarvestTez:
		return &HarvestTez{}, nil
	default:
		return nil, ErrUnknownKind
	}
}

// ToJSON renders an operation in its wire form, including the kind tag.
func ToJSON(o Operation) ([]byte, error) {
	body, err := json.Marshal(o)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(struct {
		Kind Kind `json:"kind"`
	}{o.Kind()})
	if err != nil {
		return nil, err
	}
	if len(body) == 2 { // "{}"
		return tag, nil
	}
	out := append(tag[:len(tag)-1], ',')
	out = append(out, body[1:]...)
	return out, nil
}

// SupportedKinds returns all operation kinds in registry order.
func SupportedKinds() []Kind {
	return []Kind{
		KindSetAdmin,
		KindWhitelistUser,
		KindBlacklistUser,
		KindWhitelistPair,
		KindBlacklistPair,
		KindGetPrice,
		KindUpdate,
		KindHarvestTez,
	}
}
