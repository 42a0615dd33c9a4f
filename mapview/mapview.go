package mapview

import (
	"html/template"
	"strconv"
	"strings"

	"fumikiri-map/model"
	"fumikiri-map/utils"
)

// UnknownName 名称欠損時のツールチップ表示
const UnknownName = "名称不明"

// DefaultZoom 初期表示のズームレベル
const DefaultZoom = 12

// Marker 地図上のピン1本分
type Marker struct {
	Lat     float64       `json:"lat"`
	Lon     float64       `json:"lon"`
	Tooltip string        `json:"tooltip"`
	Popup   template.HTML `json:"popup"`
}

// View 描画用の地図オブジェクト
// 中心は表示対象 (座標がそろった行) の緯度・経度の算術平均
type View struct {
	CenterLat float64  `json:"center_lat"`
	CenterLon float64  `json:"center_lon"`
	Zoom      int      `json:"zoom"`
	Markers   []Marker `json:"markers"`
}

// Build 絞り込み結果から地図を組み立てる
// 座標がそろった行が1件もなければ ok=false を返し、呼び出し側は
// 「データなし」表示に切り替える (地図は描画しない)。
func Build(rows []model.Crossing) (*View, bool) {
	var sumLat, sumLon float64
	markers := make([]Marker, 0, len(rows))
	for i := range rows {
		c := &rows[i]
		if !c.HasCoords() {
			continue
		}
		sumLat += *c.Lat
		sumLon += *c.Lon
		markers = append(markers, Marker{
			Lat:     *c.Lat,
			Lon:     *c.Lon,
			Tooltip: DisplayName(c),
			Popup:   Popup(c),
		})
	}
	if len(markers) == 0 {
		return nil, false
	}

	n := float64(len(markers))
	return &View{
		CenterLat: sumLat / n,
		CenterLon: sumLon / n,
		Zoom:      DefaultZoom,
		Markers:   markers,
	}, true
}

// DisplayName 踏切名 (欠損なら固定の代替表示)
func DisplayName(c *model.Crossing) string {
	if c.Name == "" {
		return UnknownName
	}
	return c.Name
}

// Popup ポップアップの中身
// 名称・路線・整形済みキロ程と、その座標を開く地図サービスへのリンクを含む。
func Popup(c *model.Crossing) template.HTML {
	var b strings.Builder
	b.WriteString("<b>" + template.HTMLEscapeString(DisplayName(c)) + "</b>")
	if c.Line != "" {
		b.WriteString("<br>路線: " + template.HTMLEscapeString(c.Line))
	}
	if kp := utils.FormatKilopost(c.KilopostRaw); kp != "" {
		b.WriteString("<br>キロ程: " + template.HTMLEscapeString(kp))
	}
	if c.HasCoords() {
		// 座標は丸めずそのまま埋め込む
		lat := strconv.FormatFloat(*c.Lat, 'f', -1, 64)
		lon := strconv.FormatFloat(*c.Lon, 'f', -1, 64)
		b.WriteString(`<br><a href="https://www.google.com/maps?q=` + lat + "," + lon + `" target="_blank">Googleマップで開く</a>`)
	}
	return template.HTML(b.String())
}
