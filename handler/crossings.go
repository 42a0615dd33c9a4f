package handler

import (
	"log"
	"net/http"
	"strconv"

	"fumikiri-map/dataset"
	"fumikiri-map/db"
	"fumikiri-map/mapview"
	"fumikiri-map/model"
	"fumikiri-map/utils"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
)

// Store / DataPath データセットキャッシュ (main で初期化する)
var (
	Store    *dataset.Cache
	DataPath string
)

// loadRows キャッシュからデータセットを取り出す
// 読み込めなくても空のデータセットと警告文を返すだけで、応答は止めない。
func loadRows() ([]model.Crossing, string) {
	rows, err := Store.Get(DataPath)
	if err != nil {
		log.Printf("データ読み込み警告: %v", err)
		return nil, "データファイルを読み込めませんでした: " + err.Error()
	}
	return rows, ""
}

// criteriaFromQuery クエリパラメータを検索条件に変換する
// キロ程範囲はデータセット側で範囲フィルタが有効なときだけ受け付ける
// (値なし・min==max のときは常に「範囲指定なし」)。
func criteriaFromQuery(c *gin.Context, rows []model.Crossing) model.Criteria {
	cr := model.Criteria{
		NameContains: c.Query("q"),
		Line:         c.Query("line"),
		Branch:       c.Query("branch"),
		Type:         c.Query("type"),
	}

	if _, _, ok := model.KilopostBounds(rows); ok {
		loS, hiS := c.Query("kp_min"), c.Query("kp_max")
		if loS != "" && hiS != "" {
			lo, err1 := strconv.ParseFloat(loS, 64)
			hi, err2 := strconv.ParseFloat(hiS, 64)
			if err1 == nil && err2 == nil {
				cr.Kilopost = &model.KilopostRange{Lo: lo, Hi: hi}
			}
		}
	}
	return cr
}

// CrossingRow 一覧表に出す列の射影 (キロ程は整形済み)
type CrossingRow struct {
	Line     string `json:"line"`
	Name     string `json:"name"`
	Kilopost string `json:"kilopost"`
	Branch   string `json:"branch"`
	Location string `json:"location"`
	Type     string `json:"type"`
}

func projectRows(rows []model.Crossing) []CrossingRow {
	out := make([]CrossingRow, 0, len(rows))
	for i := range rows {
		c := &rows[i]
		out = append(out, CrossingRow{
			Line:     c.Line,
			Name:     c.Name,
			Kilopost: utils.FormatKilopost(c.KilopostRaw),
			Branch:   c.Branch,
			Location: c.Location,
			Type:     c.Type,
		})
	}
	return out
}

// GetCrossings 検索条件で絞り込んだ結果 (表+地図) を返す
func GetCrossings(c *gin.Context) {
	rows, warn := loadRows()
	if len(rows) == 0 {
		msg := warn
		if msg == "" {
			msg = "データが読み込まれていません"
		}
		c.JSON(http.StatusOK, gin.H{
			"count":   0,
			"rows":    []CrossingRow{},
			"message": msg,
		})
		return
	}

	cr := criteriaFromQuery(c, rows)
	filtered := model.Filter(rows, cr)
	if len(filtered) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"count":   0,
			"rows":    []CrossingRow{},
			"message": "指定された条件に一致する踏切はありませんでした",
		})
		return
	}

	resp := gin.H{
		"count": len(filtered),
		"rows":  projectRows(filtered),
	}
	if view, ok := mapview.Build(filtered); ok {
		resp["map"] = view
	} else {
		resp["message"] = "座標を持つ踏切がないため地図は表示できません"
	}
	c.JSON(http.StatusOK, resp)
}

// GetOptions フィルタ用の選択肢一覧とキロ程範囲を返す
// 選択肢は常に全データセットから導出する (絞り込み結果には依存しない)
func GetOptions(c *gin.Context) {
	rows, warn := loadRows()
	lo, hi, ok := model.KilopostBounds(rows)

	resp := gin.H{
		"lines":    model.Options(rows, model.FieldLine),
		"branches": model.Options(rows, model.FieldBranch),
		"types":    model.Options(rows, model.FieldType),
		"kilopost": gin.H{"enabled": ok, "min": lo, "max": hi},
	}
	if warn != "" {
		resp["message"] = warn
	}
	c.JSON(http.StatusOK, resp)
}

// GetNearest 指定座標に最も近い踏切を返す
func GetNearest(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat / lon を数値で指定してください"})
		return
	}

	rows, warn := loadRows()
	nearest := dataset.Nearest(rows, lat, lon)
	if nearest == nil {
		msg := warn
		if msg == "" {
			msg = "座標を持つ踏切がありません"
		}
		c.JSON(http.StatusNotFound, gin.H{"error": msg})
		return
	}

	dist := utils.HaversineDistance(
		model.Point{Lat: lat, Lon: lon},
		model.Point{Lat: *nearest.Lat, Lon: *nearest.Lon},
	)
	c.JSON(http.StatusOK, gin.H{
		"crossing":   nearest,
		"name":       mapview.DisplayName(nearest),
		"kilopost":   utils.FormatKilopost(nearest.KilopostRaw),
		"distance_m": dist,
	})
}

// GetStats 路線別の踏切件数 (データベースのミラーに対する集計)
func GetStats(c *gin.Context) {
	counts, err := db.CountByLine()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "統計を取得できません: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lines": counts})
}

// QRCode 共有用URLのQRコードをPNGで返す
// u が未指定のときはリファラ、それもなければトップページを対象にする。
func QRCode(c *gin.Context) {
	u := c.Query("u")
	if u == "" {
		if ref := c.Request.Referer(); ref != "" {
			u = ref
		} else {
			scheme := "http"
			if c.Request.TLS != nil {
				scheme = "https"
			}
			u = scheme + "://" + c.Request.Host + "/"
		}
	}
	if len(u) > 4096 {
		u = u[:4096]
	}

	png, err := qrcode.Encode(u, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "QRコードの生成に失敗しました"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// ReloadData キャッシュを破棄してCSVを読み直し、DBミラーも作り直す (要認証)
func ReloadData(c *gin.Context) {
	Store.Invalidate(DataPath)
	rows, err := Store.Get(DataPath)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"count":   0,
			"message": "再読込しましたがデータを読み込めませんでした: " + err.Error(),
		})
		return
	}
	if err := db.ResetCrossings(rows); err != nil {
		log.Printf("DBミラーの更新に失敗: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(rows),
		"message": "データを再読込しました",
	})
}
