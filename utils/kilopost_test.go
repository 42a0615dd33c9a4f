package utils

import "testing"

func TestFormatKilopost(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"標準", "12345.6", "12k345.6m"},
		{"1km未満", "500.0", "0k500.0m"},
		{"ゼロ埋め", "12.3", "0k012.3m"},
		{"ゼロ", "0", "0k000.0m"},
		{"整数", "45678", "45k678.0m"},
		{"欠損は空文字", "", ""},
		{"空白のみも欠損扱い", "   ", ""},
		{"数値以外は原文のまま", "不明", "不明"},
		{"整形済み文字列も原文のまま", "12k345.6m", "12k345.6m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatKilopost(tt.in); got != tt.want {
				t.Errorf("FormatKilopost(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatKilopostValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{12345.6, "12k345.6m"},
		{500, "0k500.0m"},
		{0, "0k000.0m"},
		{1000, "1k000.0m"},
		{999.9, "0k999.9m"},
	}
	for _, tt := range tests {
		if got := FormatKilopostValue(tt.in); got != tt.want {
			t.Errorf("FormatKilopostValue(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
