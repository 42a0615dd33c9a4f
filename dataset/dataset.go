package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"fumikiri-map/model"
	"fumikiri-map/utils"
)

// ErrNotFound データファイルが存在しない
// 画面側は警告を出して空のデータセットで動作を続ける
var ErrNotFound = errors.New("データファイルが見つかりません")

// CSVの列名。ヘッダに存在しない列は全行欠損として扱う
// (列構成はデータの版によって揺れるため、固定スキーマを仮定しない)
const (
	colName     = "踏切名称"
	colLine     = "線名コード"
	colBranch   = "支社名"
	colLocation = "所在地"
	colType     = "踏切種別"
	colKilopost = "中心位置キロ程"
	colLat      = "Lat"
	colLon      = "Lon"
)

// Load CSVファイルを読み込んで踏切レコードの列に変換する
// 行単位の数値変換失敗は欠損値に落とすだけで、読み込み全体は失敗させない。
func Load(path string) ([]model.Crossing, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("データファイルを開けません: %w", err)
	}
	defer f.Close()
	return parse(f)
}

func parse(r io.Reader) ([]model.Crossing, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // 行ごとの列数のゆらぎを許容

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("ヘッダ行を読めません: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i // 先頭列のBOMを除去
	}

	get := func(rec []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []model.Crossing
	seq := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSVの解析に失敗しました: %w", err)
		}
		c := model.Crossing{
			Seq:         seq,
			Name:        get(rec, colName),
			Line:        get(rec, colLine),
			Branch:      get(rec, colBranch),
			Location:    get(rec, colLocation),
			Type:        get(rec, colType),
			KilopostRaw: get(rec, colKilopost),
		}
		c.Kilopost = parseFloat(c.KilopostRaw)
		c.Lat = parseFloat(get(rec, colLat))
		c.Lon = parseFloat(get(rec, colLon))
		rows = append(rows, c)
		seq++
	}
	return rows, nil
}

// parseFloat 変換に失敗した値は nil (欠損) に落とす
func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// Nearest 座標がそろった行のうち指定地点に最も近い踏切を返す
// 該当がなければ nil
func Nearest(rows []model.Crossing, lat, lon float64) *model.Crossing {
	var nearest *model.Crossing
	minDist := -1.0

	target := model.Point{Lat: lat, Lon: lon}
	for i := range rows {
		c := &rows[i]
		if !c.HasCoords() {
			continue
		}
		dist := utils.HaversineDistance(target, model.Point{Lat: *c.Lat, Lon: *c.Lon})
		if minDist < 0 || dist < minDist {
			minDist = dist
			nearest = c
		}
	}
	return nearest
}
