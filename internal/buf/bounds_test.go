package buf

import (
	"math"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestAddSat(t *testing.T) {
	if got := AddSat(8, 16); got != 24 {
		t.Fatalf("AddSat(8,16)=%d want 24", got)
	}
	if got := AddSat(math.MaxUint64-1, 5); got != math.MaxUint64 {
		t.Fatalf("AddSat should clamp, got %d", got)
	}
}

func TestCheckSpan(t *testing.T) {
	cases := []struct {
		name    string
		bufLen  uint64
		off, n  uint64
		wantEnd uint64
		wantErr bool
	}{
		{"fits", 64, 8, 16, 24, false},
		{"exact end", 64, 56, 8, 64, false},
		{"past end", 64, 57, 8, 0, true},
		{"overflow", 64, math.MaxUint64, 2, 0, true},
		{"empty at end", 64, 64, 0, 64, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			end, err := CheckSpan(tc.bufLen, tc.off, tc.n)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got end=%d", end)
				}
				return
			}
			if err != nil || end != tc.wantEnd {
				t.Fatalf("CheckSpan=%d,%v want %d,nil", end, err, tc.wantEnd)
			}
		})
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if got, ok := SliceU64(data, 3, 2); !ok || got[0] != 3 {
		t.Fatalf("SliceU64 returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := SliceU64(data, 3, 3); ok {
		t.Fatalf("SliceU64 should fail when extending beyond len")
	}
}
