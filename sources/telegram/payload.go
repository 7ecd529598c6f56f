package telegram

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Callback payloads travel inside Telegram's 64-byte callback_data
// field as "kind:version:k=v,k=v". The version is bumped whenever a
// kind changes its fields, so stale buttons from old messages are
// rejected instead of misread.
const payloadVersion = 1

const (
	KindSubscriptions = "sub"
	KindPayment       = "pay"
	KindHistory       = "hist"
	KindPaymentDetail = "payd"
	KindRenew         = "renew"
	KindNav           = "nav"
	KindLanguage      = "lang"
	KindAdmin         = "admin"
	KindAdminExtend   = "aext"
	KindAdminService  = "asvc"
)

var (
	ErrMalformedPayload = errors.New("telegram: malformed callback payload")
	ErrStalePayload     = errors.New("telegram: callback payload version mismatch")
)

type Payload struct {
	Kind    string
	Version int
	fields  map[string]string
}

func NewPayload(kind string) Payload {
	return Payload{Kind: kind, Version: payloadVersion, fields: map[string]string{}}
}

func (p Payload) With(key, value string) Payload {
	fields := make(map[string]string, len(p.fields)+1)
	for k, v := range p.fields {
		fields[k] = v
	}
	fields[key] = value
	return Payload{Kind: p.Kind, Version: p.Version, fields: fields}
}

func (p Payload) WithInt(key string, value int) Payload {
	return p.With(key, strconv.Itoa(value))
}

func (p Payload) WithInt64(key string, value int64) Payload {
	return p.With(key, strconv.FormatInt(value, 10))
}

func (p Payload) Get(key string) string {
	return p.fields[key]
}

func (p Payload) GetInt(key string) int {
	value, _ := strconv.Atoi(p.fields[key])
	return value
}

func (p Payload) GetInt64(key string) int64 {
	value, _ := strconv.ParseInt(p.fields[key], 10, 64)
	return value
}

// Encode renders the payload with keys sorted, so equal payloads always
// produce equal strings.
func (p Payload) Encode() string {
	keys := make([]string, 0, len(p.fields))
	for k := range p.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+p.fields[k])
	}

	return fmt.Sprintf("%s:%d:%s", p.Kind, p.Version, strings.Join(pairs, ","))
}

// DecodePayload parses callback data. Field values may contain colons
// (composite ids), so only the first two separators are structural.
func DecodePayload(data string) (Payload, error) {
	parts := strings.SplitN(data, ":", 3)
	if len(parts) != 3 || parts[0] == "" {
		return Payload{}, ErrMalformedPayload
	}

	version, err := strconv.Atoi(parts[1])
	if err != nil {
		return Payload{}, ErrMalformedPayload
	}
	if version != payloadVersion {
		return Payload{}, ErrStalePayload
	}

	payload := Payload{Kind: parts[0], Version: version, fields: map[string]string{}}
	if parts[2] == "" {
		return payload, nil
	}

	for _, pair := range strings.Split(parts[2], ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return Payload{}, ErrMalformedPayload
		}
		payload.fields[k] = v
	}

	return payload, nil
}
