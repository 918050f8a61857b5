package summary

import (
	"reflect"
	"testing"
	"time"

	"adpulse/domain/dataset"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Soft, seamless comfort!", []string{"soft", "seamless", "comfort"}},
		{"50% off TODAY", []string{"off", "today"}},
		{"a an it", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := tokenize(tt.in)
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBuildTextTermsOrdering(t *testing.T) {
	d := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	records := []record{
		{campaign: "A", date: d, creative: "comfort comfort seamless"},
		{campaign: "A", date: d, creative: "comfort breathable"},
		{campaign: "B", date: d, creative: ""},
	}

	got := buildTextTerms(records)

	want := []dataset.TermCount{
		{Term: "comfort", Count: 3},
		{Term: "breathable", Count: 1},
		{Term: "seamless", Count: 1},
	}
	if !reflect.DeepEqual(got["A"], want) {
		t.Errorf("terms for A = %v, want %v", got["A"], want)
	}
	if _, ok := got["B"]; ok {
		t.Error("campaign without creative text should have no terms")
	}
}
