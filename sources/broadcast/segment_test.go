package broadcast

import "testing"

func TestParseSegment(t *testing.T) {
	valid := []string{"all", "active_subs", "no_active_subs", "service:1", "service:421", "  all  "}
	for _, raw := range valid {
		if _, err := ParseSegment(raw); err != nil {
			t.Errorf("ParseSegment(%q) unexpectedly failed: %v", raw, err)
		}
	}

	invalid := []string{"", "everyone", "service:", "service:abc", "service:12x", "active", "ALL", "service:-1"}
	for _, raw := range invalid {
		if _, err := ParseSegment(raw); err == nil {
			t.Errorf("ParseSegment(%q) unexpectedly succeeded", raw)
		}
	}
}
