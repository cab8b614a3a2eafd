package auth

import (
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"
)

var fixedNow = time.UnixMilli(1700000000000)

func TestTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int64
	}{
		{"empty query", "", 1700000000000000},
		{"version only", "v=3700", 1700000000000381},
		{"with routes", "v=3700&r[]=1&r[]=47&r[]=56", 1700000000000835},
		// é is one code unit, the emoji is a surrogate pair.
		{"non-ascii uses code units", "é😀", 1700000000000422},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Timestamp(tt.query, fixedNow)
			if got != tt.want {
				t.Errorf("Timestamp(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestTimestampLowDigits(t *testing.T) {
	queries := []string{"", "v=3700", "v=3700&r[]=5", "city=лвів"}
	for _, q := range queries {
		for _, ms := range []int64{1, 999, 1700000000123, 1712345678999} {
			got := Timestamp(q, time.UnixMilli(ms))
			want := (ms + charSum(q)) % 1000
			if got%1000 != want {
				t.Errorf("Timestamp(%q) mod 1000 = %d, want %d", q, got%1000, want)
			}
			if got/1000 != ms {
				t.Errorf("Timestamp(%q) / 1000 = %d, want %d", q, got/1000, ms)
			}
		}
	}
}

func TestCharSumCodeUnits(t *testing.T) {
	if got := charSum("é😀"); got != 233+0xD83D+0xDE00 {
		t.Errorf("charSum = %d, want %d", got, 233+0xD83D+0xDE00)
	}
	if got := charSum(""); got != 0 {
		t.Errorf("charSum(\"\") = %d, want 0", got)
	}
}

func TestHashKnownVectors(t *testing.T) {
	tests := []struct {
		query string
		ts    int64
		want  string
	}{
		{
			query: "v=3700",
			ts:    1700000000000123,
			want:  "52bc8fbb751108389aacc9e43f4b332085576d3c87248ca76b9eb9bd1914b7cddbd190cef07d6e917316e38f22f3fe4428541ae48c251608dd949f411e8185cd",
		},
		{
			query: "",
			ts:    0,
			want:  "89978720d29e265aed076a7872c1840be8e9bdff4d0bc49a71cf160ac37625ebbac48e8d3acda7dc0a0d4d002a9a894aaceb94a22ae3ed0f6a5c77936602fb69",
		},
	}

	for _, tt := range tests {
		got := Hash(DefaultSalt, tt.query, tt.ts)
		if got != tt.want {
			t.Errorf("Hash(%q, %d) = %s, want %s", tt.query, tt.ts, got, tt.want)
		}
	}
}

func TestHashFormat(t *testing.T) {
	h := Hash(DefaultSalt, "v=3700&r[]=1", 42)
	if len(h) != 128 {
		t.Fatalf("hash length = %d, want 128", len(h))
	}
	for _, c := range h {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			t.Fatalf("hash contains non lowercase hex character: %c", c)
		}
	}
}

func TestHashDeterministic(t *testing.T) {
	base := Hash(DefaultSalt, "v=3700", 1700000000000381)
	if again := Hash(DefaultSalt, "v=3700", 1700000000000381); again != base {
		t.Error("Hash is not deterministic")
	}

	variants := map[string]string{
		"query changed":     Hash(DefaultSalt, "v=3701", 1700000000000381),
		"timestamp changed": Hash(DefaultSalt, "v=3700", 1700000000000382),
		"salt changed":      Hash("ua.in.citybus.ukrainf", "v=3700", 1700000000000381),
	}
	for name, h := range variants {
		if h == base {
			t.Errorf("%s: hash did not change", name)
		}
	}
}

func TestSignerSign(t *testing.T) {
	s := &Signer{
		AppID: DefaultAppID,
		Salt:  DefaultSalt,
		Now:   func() time.Time { return fixedNow },
	}

	sig := s.Sign("v=3700")
	if sig.AppID != "ukraine" {
		t.Errorf("AppID = %q, want %q", sig.AppID, "ukraine")
	}
	if sig.Timestamp != 1700000000000381 {
		t.Errorf("Timestamp = %d, want %d", sig.Timestamp, int64(1700000000000381))
	}
	if want := Hash(DefaultSalt, "v=3700", sig.Timestamp); sig.Hash != want {
		t.Errorf("Hash = %s, want %s", sig.Hash, want)
	}
}

func TestSignatureApply(t *testing.T) {
	sig := Signature{AppID: "ukraine", Timestamp: 1700000000000381, Hash: strings.Repeat("ab", 64)}
	h := http.Header{}
	sig.Apply(h)

	if got := h.Get("App"); got != "ukraine" {
		t.Errorf("App header = %q, want %q", got, "ukraine")
	}
	if got := h.Get("Timestamp"); got != strconv.FormatInt(sig.Timestamp, 10) {
		t.Errorf("Timestamp header = %q", got)
	}
	if got := h.Get("Hash"); got != sig.Hash {
		t.Errorf("Hash header = %q", got)
	}
}

func TestNewSignerUsesWallClock(t *testing.T) {
	before := time.Now().UnixMilli()
	sig := NewSigner(DefaultAppID, DefaultSalt).Sign("")
	after := time.Now().UnixMilli()

	ms := sig.Timestamp / 1000
	if ms < before || ms > after {
		t.Errorf("timestamp millis %d outside [%d, %d]", ms, before, after)
	}
}
