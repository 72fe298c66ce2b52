package cli

import (
	"strings"
	"testing"
)

func TestSplitComma(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{" enhancement , reliability ", []string{"enhancement", "reliability"}},
		{"single", []string{"single"}},
		{"", nil},
		{" , , ", nil},
	}
	for _, tt := range tests {
		got := splitComma(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitComma(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitComma(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestBuildOverrides_OnlySetValues(t *testing.T) {
	flagEndpoint = "https://models.example.com"
	flagRetryCount = 5
	flagAPIKey = ""
	flagQualityThreshold = 0
	defer func() {
		flagEndpoint = ""
		flagRetryCount = 0
	}()

	m := buildOverrides()
	if m["endpoint"] != "https://models.example.com" {
		t.Errorf("endpoint = %q", m["endpoint"])
	}
	if m["retryCount"] != "5" {
		t.Errorf("retryCount = %q", m["retryCount"])
	}
	if _, ok := m["apiKey"]; ok {
		t.Error("unset flag leaked into overrides")
	}
	if _, ok := m["qualityThreshold"]; ok {
		t.Error("zero threshold leaked into overrides")
	}
}

func TestKindList(t *testing.T) {
	list := kindList()
	for _, want := range []string{"describe", "review", "security", "labels", "auto-approve"} {
		if !strings.Contains(list, want) {
			t.Errorf("kind list missing %q: %s", want, list)
		}
	}
}
