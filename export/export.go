// Package export 自己完結なHTMLエクスポートの生成
//
// 静的版は現在の地図をそのまま焼き込む。対話型版は候補データ一式と
// クライアント側のフィルタスクリプトを埋め込み、サーバなしで
// 本体と同じ絞り込みができる文書を作る。
package export

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"fumikiri-map/mapview"
	"fumikiri-map/model"
)

//go:embed templates/*.tmpl
var content embed.FS

var tmpl = template.Must(template.New("export").Funcs(template.FuncMap{
	"toJSON": func(v interface{}) (template.JS, error) {
		b, err := json.Marshal(v)
		return template.JS(b), err
	},
}).ParseFS(content, "templates/*.tmpl"))

// Record 対話型エクスポートに埋め込む1件分のデータ
// 座標がそろった行だけを埋め込む。ポップアップはサーバ側で整形済み。
type Record struct {
	Lat      float64       `json:"lat"`
	Lon      float64       `json:"lon"`
	Name     string        `json:"name"`
	Line     string        `json:"line"`
	Branch   string        `json:"branch"`
	Location string        `json:"location"`
	Type     string        `json:"type"`
	Popup    template.HTML `json:"popup"`
}

// BuildRecords 候補行をエクスポート用レコードに変換する (座標欠損の行は除外)
func BuildRecords(rows []model.Crossing) []Record {
	out := make([]Record, 0, len(rows))
	for i := range rows {
		c := &rows[i]
		if !c.HasCoords() {
			continue
		}
		out = append(out, Record{
			Lat:      *c.Lat,
			Lon:      *c.Lon,
			Name:     c.Name,
			Line:     c.Line,
			Branch:   c.Branch,
			Location: c.Location,
			Type:     c.Type,
			Popup:    mapview.Popup(c),
		})
	}
	return out
}

// Static 現在のマーカー集合を焼き込んだ静的HTMLを生成する
// 同じ View からは常に同じバイト列ができる。view が nil または
// マーカーなしのときは「データなし」文書を返す。
func Static(view *mapview.View) ([]byte, error) {
	if view == nil || len(view.Markers) == 0 {
		return renderNoData()
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "static.html.tmpl", view); err != nil {
		return nil, fmt.Errorf("静的エクスポートの生成に失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

// Interactive 候補行とクライアント側フィルタを埋め込んだHTMLを生成する
// 選択肢リストは文書を開いたときに埋め込みデータから導出される
// (サーバ側 model.Options と同じ規則)。候補が空なら「データなし」文書。
func Interactive(rows []model.Crossing) ([]byte, error) {
	records := BuildRecords(rows)
	if len(records) == 0 {
		return renderNoData()
	}

	data := struct {
		Records       []Record
		Zoom          int
		Unconstrained string
		UnknownName   string
	}{
		Records:       records,
		Zoom:          mapview.DefaultZoom,
		Unconstrained: model.Unconstrained,
		UnknownName:   mapview.UnknownName,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "interactive.html.tmpl", data); err != nil {
		return nil, fmt.Errorf("対話型エクスポートの生成に失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}

func renderNoData() ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "nodata.html.tmpl", nil); err != nil {
		return nil, fmt.Errorf("エクスポートの生成に失敗しました: %w", err)
	}
	return buf.Bytes(), nil
}
