package observability

import (
	"context"
	"testing"

	"github.com/Eddy007Saive/serverlog/internal/platform/logger"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc , broken, =x, team=core ")
	if len(got) != 2 || got["api-key"] != "abc" || got["team"] != "core" {
		t.Fatalf("unexpected headers: %#v", got)
	}
	if ParseHeaders("   ") != nil {
		t.Fatal("blank input should yield nil")
	}
}

func TestClampRatio(t *testing.T) {
	for in, want := range map[float64]float64{-1: 0, 0.25: 0.25, 3: 1} {
		if got := clampRatio(in); got != want {
			t.Fatalf("clampRatio(%v)=%v want %v", in, got, want)
		}
	}
}

func TestInitOTelDisabled(t *testing.T) {
	if shutdown := InitOTel(context.Background(), logger.NewNop(), OtelConfig{}); shutdown != nil {
		t.Fatal("disabled tracing should not install a provider")
	}
}
