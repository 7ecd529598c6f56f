package telegram

import (
	"errors"
	"testing"
)

func TestPayloadRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		payload Payload
	}{
		{"subscription detail", NewPayload(KindSubscriptions).With("a", "detail").WithInt64("id", 421).WithInt("p", 2)},
		{"history page", NewPayload(KindHistory).WithInt("p", 3)},
		{"payment select with composite id", NewPayload(KindPayment).With("a", "select").With("id", "421:card:m1")},
		{"nav without fields", NewPayload(KindNav).With("a", "menu")},
		{"language choice", NewPayload(KindLanguage).With("l", "ru")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			decoded, err := DecodePayload(tc.payload.Encode())
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if decoded.Kind != tc.payload.Kind {
				t.Errorf("kind %q, want %q", decoded.Kind, tc.payload.Kind)
			}
			for k, v := range tc.payload.fields {
				if decoded.Get(k) != v {
					t.Errorf("field %q = %q, want %q", k, decoded.Get(k), v)
				}
			}
		})
	}
}

func TestPayloadCompositeValueKeepsColons(t *testing.T) {
	encoded := NewPayload(KindPayment).With("a", "select").With("id", "421:card:m1").Encode()

	decoded, err := DecodePayload(encoded)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.Get("id") != "421:card:m1" {
		t.Errorf("composite id mangled: %q", decoded.Get("id"))
	}
}

func TestDecodePayloadRejectsMalformed(t *testing.T) {
	malformed := []string{"", "sub", "sub:1", ":1:a=b", "sub:x:a=b", "sub:1:noequals", "sub:1:=v"}
	for _, data := range malformed {
		if _, err := DecodePayload(data); !errors.Is(err, ErrMalformedPayload) {
			t.Errorf("DecodePayload(%q) = %v, want ErrMalformedPayload", data, err)
		}
	}
}

func TestDecodePayloadRejectsStaleVersion(t *testing.T) {
	if _, err := DecodePayload("sub:99:a=detail"); !errors.Is(err, ErrStalePayload) {
		t.Errorf("expected ErrStalePayload, got %v", err)
	}
}

func TestPayloadNumericAccessors(t *testing.T) {
	decoded, err := DecodePayload(NewPayload(KindSubscriptions).WithInt64("id", 9000000001).WithInt("p", 4).Encode())
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if decoded.GetInt64("id") != 9000000001 {
		t.Errorf("GetInt64 = %d", decoded.GetInt64("id"))
	}
	if decoded.GetInt("p") != 4 {
		t.Errorf("GetInt = %d", decoded.GetInt("p"))
	}
	if decoded.GetInt("missing") != 0 {
		t.Errorf("missing field must read as zero")
	}
}
