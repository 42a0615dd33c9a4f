package model

import (
	"reflect"
	"testing"
)

func f(v float64) *float64 { return &v }

func sampleRows() []Crossing {
	return []Crossing{
		{Seq: 0, Name: "Oak Crossing", Line: "Main", Branch: "東京支社", Type: "第1種",
			KilopostRaw: "12345.6", Kilopost: f(12345.6), Lat: f(35.6), Lon: f(139.7)},
		{Seq: 1, Name: "Elm Crossing", Line: "Branch", Branch: "横浜支社", Type: "第3種",
			KilopostRaw: "500.0", Kilopost: f(500.0), Lat: f(35.3), Lon: f(139.5)},
		{Seq: 2, Name: "", Line: "Branch", Branch: "", Type: "",
			KilopostRaw: "不明", Lat: f(35.3), Lon: f(139.4)},
	}
}

func names(rows []Crossing) []string {
	out := make([]string, len(rows))
	for i := range rows {
		out[i] = rows[i].Name
	}
	return out
}

func TestFilterNameSubstring(t *testing.T) {
	got := Filter(sampleRows(), Criteria{NameContains: "Oak"})
	if !reflect.DeepEqual(names(got), []string{"Oak Crossing"}) {
		t.Errorf("名前検索の結果 = %v", names(got))
	}

	// 大文字小文字は区別する
	if got := Filter(sampleRows(), Criteria{NameContains: "oak"}); len(got) != 0 {
		t.Errorf("小文字 oak が一致してしまった: %v", names(got))
	}
}

func TestFilterMissingName(t *testing.T) {
	rows := sampleRows()

	// テキスト検索が空なら名称欠損の行も通る
	got := Filter(rows, Criteria{})
	if len(got) != len(rows) {
		t.Fatalf("空条件で %d 件, want %d 件", len(got), len(rows))
	}

	// テキスト検索中は名称欠損の行を除外する
	got = Filter(rows, Criteria{NameContains: "Crossing"})
	if !reflect.DeepEqual(names(got), []string{"Oak Crossing", "Elm Crossing"}) {
		t.Errorf("検索中の結果 = %v", names(got))
	}
}

func TestFilterCategorical(t *testing.T) {
	got := Filter(sampleRows(), Criteria{Line: "Branch"})
	if len(got) != 2 || got[0].Name != "Elm Crossing" {
		t.Errorf("line=Branch の結果 = %v", names(got))
	}

	// 「すべて」は無条件と同じ
	got = Filter(sampleRows(), Criteria{Line: Unconstrained})
	if len(got) != 3 {
		t.Errorf("line=すべて で %d 件, want 3 件", len(got))
	}

	// カテゴリ欠損の行は、そのカテゴリ指定中は除外される
	got = Filter(sampleRows(), Criteria{Branch: "横浜支社"})
	if !reflect.DeepEqual(names(got), []string{"Elm Crossing"}) {
		t.Errorf("branch 指定の結果 = %v", names(got))
	}
}

func TestFilterKilopostRange(t *testing.T) {
	// [1000, 20000] は kp=500 と kp 欠損の行を除外する
	got := Filter(sampleRows(), Criteria{Kilopost: &KilopostRange{Lo: 1000, Hi: 20000}})
	if !reflect.DeepEqual(names(got), []string{"Oak Crossing"}) {
		t.Errorf("範囲指定の結果 = %v", names(got))
	}

	// 境界値は含む (閉区間)
	got = Filter(sampleRows(), Criteria{Kilopost: &KilopostRange{Lo: 500, Hi: 12345.6}})
	if len(got) != 2 {
		t.Errorf("境界込みで %d 件, want 2 件", len(got))
	}
}

func TestFilterConjunction(t *testing.T) {
	got := Filter(sampleRows(), Criteria{NameContains: "Crossing", Line: "Main"})
	if !reflect.DeepEqual(names(got), []string{"Oak Crossing"}) {
		t.Errorf("複合条件の結果 = %v", names(got))
	}
}

func TestFilterPreservesOrderAndSubset(t *testing.T) {
	rows := sampleRows()

	// 無条件なら元のまま (順序も件数も)
	got := Filter(rows, Criteria{})
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("無条件の結果が元データと一致しない")
	}

	// 部分集合であり、Seq の昇順が保たれる
	got = Filter(rows, Criteria{Line: "Branch"})
	for i := 1; i < len(got); i++ {
		if got[i-1].Seq >= got[i].Seq {
			t.Errorf("行順が崩れた: %v", got)
		}
	}
}

func TestFilterIdempotent(t *testing.T) {
	cr := Criteria{NameContains: "Crossing", Line: "Branch"}
	once := Filter(sampleRows(), cr)
	twice := Filter(once, cr)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("filter(filter(D,C),C) != filter(D,C)")
	}
}

func TestOptions(t *testing.T) {
	got := Options(sampleRows(), FieldLine)
	want := []string{Unconstrained, "Branch", "Main"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Options(line) = %v, want %v", got, want)
	}

	// 全行欠損のフィールドは「すべて」のみ
	rows := []Crossing{{Name: "a"}, {Name: "b"}}
	got = Options(rows, FieldType)
	if !reflect.DeepEqual(got, []string{Unconstrained}) {
		t.Errorf("全行欠損の Options = %v", got)
	}
}

func TestKilopostBounds(t *testing.T) {
	lo, hi, ok := KilopostBounds(sampleRows())
	if !ok || lo != 500.0 || hi != 12345.6 {
		t.Errorf("KilopostBounds = (%v, %v, %v)", lo, hi, ok)
	}

	// 値なし → 無効
	if _, _, ok := KilopostBounds([]Crossing{{Name: "a"}}); ok {
		t.Errorf("値なしで範囲フィルタが有効になった")
	}

	// min == max → 無効
	rows := []Crossing{{Kilopost: f(100)}, {Kilopost: f(100)}}
	if _, _, ok := KilopostBounds(rows); ok {
		t.Errorf("min==max で範囲フィルタが有効になった")
	}
}
