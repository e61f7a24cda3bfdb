package metrics

import (
	"strings"
	"testing"
)

func TestHourlyRedisKey(t *testing.T) {
	key := HourlyRedisKey("pres_abc", "2026-08-30", 14)
	if key != "copilot:presentation:pres_abc:metrics:2026-08-30:14" {
		t.Errorf("key = %q", key)
	}
}

func TestSessionRecordRedisKey(t *testing.T) {
	r := &SessionRecord{SessionID: "sess-1"}
	if r.RedisKey() != "copilot:session:sess-1" {
		t.Errorf("key = %q", r.RedisKey())
	}
}

func TestCapTotalText(t *testing.T) {
	long := strings.Repeat("a", TotalTextCap+100)
	if got := capTotalText(long); len([]rune(got)) != TotalTextCap {
		t.Errorf("capped length = %d, want %d", len([]rune(got)), TotalTextCap)
	}

	short := "kısa metin"
	if got := capTotalText(short); got != short {
		t.Errorf("short text modified: %q", got)
	}
}
