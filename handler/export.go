package handler

import (
	"fmt"
	"net/http"

	"fumikiri-map/export"
	"fumikiri-map/mapview"
	"fumikiri-map/model"

	"github.com/gin-gonic/gin"
)

// エクスポートのダウンロードファイル名
const (
	staticFilename      = "fumikiri_static.html"
	interactiveFilename = "fumikiri_interactive.html"
)

// filteredRows 検索パラメータを適用した絞り込み結果
// データが読み込めないときは空集合 (「データなし」文書になる)
func filteredRows(c *gin.Context) []model.Crossing {
	rows, _ := loadRows()
	if len(rows) == 0 {
		return nil
	}
	return model.Filter(rows, criteriaFromQuery(c, rows))
}

// ExportStatic 現在の絞り込み結果を焼き込んだ静的HTMLをダウンロードさせる
func ExportStatic(c *gin.Context) {
	view, _ := mapview.Build(filteredRows(c))
	doc, err := export.Static(view)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	serveDownload(c, staticFilename, doc)
}

// ExportInteractive 絞り込み結果とクライアント側フィルタを埋め込んだHTMLをダウンロードさせる
func ExportInteractive(c *gin.Context) {
	doc, err := export.Interactive(filteredRows(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	serveDownload(c, interactiveFilename, doc)
}

func serveDownload(c *gin.Context, filename string, doc []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}
