package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"

	"fumikiri-map/model"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/index.html templates/help.md
var content embed.FS

var indexTmpl = template.Must(template.ParseFS(content, "templates/index.html"))

// Index 本体の検索マップページ
// フィルタの選択肢とキロ程範囲はサーバ側で埋め込み、絞り込み自体は
// 操作のたびに /api/crossings を呼んで再計算する。
func Index(c *gin.Context) {
	rows, warn := loadRows()
	lo, hi, ok := model.KilopostBounds(rows)

	data := struct {
		Lines           []string
		Branches        []string
		Types           []string
		KilopostEnabled bool
		KilopostMin     float64
		KilopostMax     float64
		Total           int
		Warning         string
	}{
		Lines:           model.Options(rows, model.FieldLine),
		Branches:        model.Options(rows, model.FieldBranch),
		Types:           model.Options(rows, model.FieldType),
		KilopostEnabled: ok,
		KilopostMin:     lo,
		KilopostMax:     hi,
		Total:           len(rows),
		Warning:         warn,
	}

	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, data); err != nil {
		log.Printf("テンプレート描画エラー: %v", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

const helpShell = `<!DOCTYPE html>
<html lang="ja">
<head>
<meta charset="utf-8"/>
<title>踏切検索マップ - 使い方</title>
<style>body { font-family: sans-serif; max-width: 760px; margin: 2em auto; line-height: 1.7; }</style>
</head>
<body>
%s
<p><a href="/">← マップへ戻る</a></p>
</body>
</html>`

// Help 使い方ページ (埋め込みの Markdown をレンダリングする)
func Help(c *gin.Context) {
	md, err := content.ReadFile("templates/help.md")
	if err != nil {
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	page := fmt.Sprintf(helpShell, renderMarkdown(md))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// renderMarkdown Markdown文書をHTMLに変換する
func renderMarkdown(md []byte) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	p := parser.NewWithExtensions(extensions)
	doc := p.Parse(md)

	htmlFlags := mdhtml.CommonFlags | mdhtml.HrefTargetBlank
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: htmlFlags})

	return markdown.Render(doc, renderer)
}
