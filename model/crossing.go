package model

// Crossing 踏切1件分のレコード (CSVの1行に対応)
// 文字列フィールドは "" を欠損として扱う。キロ程・座標はポインタで欠損を区別する。
// どのフィールドが欠けていてもエラーにはせず、検索・表示への寄与が消えるだけ。
type Crossing struct {
	ID  uint `json:"-" gorm:"primaryKey"`
	Seq int  `json:"-" gorm:"index"` // 元CSVでの行番号 (表示順の保持に使う)

	Name     string `json:"name" gorm:"index"` // 踏切名称
	Line     string `json:"line" gorm:"index"` // 線名コード
	Branch   string `json:"branch"`            // 支社名
	Location string `json:"location"`          // 所在地
	Type     string `json:"type"`              // 踏切種別

	KilopostRaw string   `json:"kilopost_raw"` // キロ程の原文 (数値変換できないときの表示フォールバック)
	Kilopost    *float64 `json:"kilopost"`     // キロ程 (メートル)
	Lat         *float64 `json:"lat"`          // 緯度 (度)
	Lon         *float64 `json:"lon"`          // 経度 (度)
}

// HasCoords 緯度・経度が両方そろっているか
// 地図マーカーは座標がそろった行だけから作る (表・エクスポート一覧には出てよい)
func (c *Crossing) HasCoords() bool {
	return c.Lat != nil && c.Lon != nil
}

// Point 経緯度の1点 (WGS84)
type Point struct {
	Lat float64 // 緯度
	Lon float64 // 経度
}
