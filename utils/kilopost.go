package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatKilopost キロ程 (メートル単位) の表示用整形
// 例: "12345.6" -> "12k345.6m"
//
// 欠損 ("") は "" を返す。数値に変換できない値はエラーにせず原文のまま返す。
// 整形済み文字列への再適用は想定しない (一方向変換)。
func FormatKilopost(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return raw
	}
	return FormatKilopostValue(v)
}

// FormatKilopostValue 数値のキロ程を「<km>k<メートル3桁>.<小数1桁>m」に整形する
func FormatKilopostValue(v float64) string {
	km := int(math.Floor(v / 1000))
	m := math.Mod(v, 1000)
	return fmt.Sprintf("%dk%05.1fm", km, m)
}
