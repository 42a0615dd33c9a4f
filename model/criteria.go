package model

import (
	"sort"
	"strings"
)

// Unconstrained 「絞り込まない」を表す選択肢
// カテゴリフィルタの選択肢リストでは常に先頭に置く
const Unconstrained = "すべて"

// KilopostRange キロ程の閉区間 [Lo, Hi] (メートル)
type KilopostRange struct {
	Lo float64 `json:"lo"`
	Hi float64 `json:"hi"`
}

// Criteria 検索条件のスナップショット
// すべての条件の論理積 (AND) で絞り込む。ゼロ値はどの行も通す。
type Criteria struct {
	NameContains string         // 踏切名の部分一致 (大文字小文字を区別)。"" は無条件
	Line         string         // 線名コードの完全一致。"" または「すべて」は無条件
	Branch       string         // 支社名の完全一致
	Type         string         // 踏切種別の完全一致
	Kilopost     *KilopostRange // nil なら範囲フィルタなし
}

func isUnconstrained(v string) bool {
	return v == "" || v == Unconstrained
}

// Matches 行が全条件を満たすか
//
// 欠損フィールドの扱い:
//   - 名称欠損の行は「テキスト検索が空でない場合のみ」除外する
//   - カテゴリ値が欠損の行は、そのカテゴリが指定されている場合のみ除外する
//   - キロ程欠損の行は、範囲フィルタが有効な場合のみ除外する
func (cr *Criteria) Matches(c *Crossing) bool {
	if cr.NameContains != "" {
		if c.Name == "" || !strings.Contains(c.Name, cr.NameContains) {
			return false
		}
	}
	if !isUnconstrained(cr.Line) && c.Line != cr.Line {
		return false
	}
	if !isUnconstrained(cr.Branch) && c.Branch != cr.Branch {
		return false
	}
	if !isUnconstrained(cr.Type) && c.Type != cr.Type {
		return false
	}
	if cr.Kilopost != nil {
		if c.Kilopost == nil {
			return false
		}
		if *c.Kilopost < cr.Kilopost.Lo || *c.Kilopost > cr.Kilopost.Hi {
			return false
		}
	}
	return true
}

// Filter 条件を満たす行の部分集合を返す (元の行順を保持した新しいスライス)
func Filter(rows []Crossing, cr Criteria) []Crossing {
	out := make([]Crossing, 0, len(rows))
	for i := range rows {
		if cr.Matches(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}

// カテゴリフィルタの対象フィールドへのアクセサ
func FieldLine(c *Crossing) string   { return c.Line }
func FieldBranch(c *Crossing) string { return c.Branch }
func FieldType(c *Crossing) string   { return c.Type }

// Options カテゴリフィルタの選択肢リストを導出する
// = 「すべて」+ 欠損を除いたユニーク値の昇順。常に全データセットから作る
// (絞り込み結果からは作らない)。フィールドが全行欠損なら選択肢は「すべて」のみ。
func Options(rows []Crossing, field func(*Crossing) string) []string {
	seen := make(map[string]bool)
	for i := range rows {
		if v := field(&rows[i]); v != "" {
			seen[v] = true
		}
	}
	vals := make([]string, 0, len(seen))
	for v := range seen {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return append([]string{Unconstrained}, vals...)
}

// KilopostBounds 範囲フィルタの上下限 [min, max] を導出する
// キロ程を持つ行がない、または min == max のときは範囲フィルタ自体を無効にする (ok=false)
func KilopostBounds(rows []Crossing) (lo, hi float64, ok bool) {
	first := true
	for i := range rows {
		v := rows[i].Kilopost
		if v == nil {
			continue
		}
		if first {
			lo, hi = *v, *v
			first = false
			continue
		}
		if *v < lo {
			lo = *v
		}
		if *v > hi {
			hi = *v
		}
	}
	if first || lo == hi {
		return 0, 0, false
	}
	return lo, hi, true
}
