package table

import (
	"strings"
	"testing"
)

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"trimmed", []string{" id ", "age"}, []string{"id", "age"}},
		{"excel formula", []string{`="Code"`, "x"}, []string{"Code", "x"}},
		{"blank", []string{"a", "", " "}, []string{"a", "Unnamed: 1", "Unnamed: 2"}},
		{"duplicates", []string{"a", "a", "a"}, []string{"a", "a.1", "a.2"}},
		{"suffix collision", []string{"a", "a", "a.1"}, []string{"a", "a.2", "a.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanHeader(tt.in)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("CleanHeader(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMissingSet(t *testing.T) {
	def := MissingSet(nil)
	for _, s := range []string{"", "NA", "NaN", "null", "#N/A"} {
		if !def(s) {
			t.Errorf("default set should match %q", s)
		}
	}
	if def("0") || def("na ") {
		t.Error("default set matched a real value")
	}

	custom := MissingSet([]string{"-"})
	if !custom("-") || custom("") {
		t.Error("custom set should match only its tokens")
	}
}
