package main

import (
	"fmt"
	"log"

	"fumikiri-map/dataset"
	"fumikiri-map/db"
	"fumikiri-map/handler"
	"fumikiri-map/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	fmt.Println("=== 踏切検索マップ 🗺️ ===")

	// 1. データセット読み込み (プロセス内キャッシュ、初回のみファイルI/O)
	// データがなくても起動は続行する (画面側で警告を出す)
	handler.Store = dataset.NewCache()
	handler.DataPath = utils.EnvOrDefault("DATA_PATH", "data/fumikiri.csv")
	rows, err := handler.Store.Get(handler.DataPath)
	if err != nil {
		log.Printf("警告: %v", err)
	}
	fmt.Printf("踏切データ読み込み完了! 件数: %d\n", len(rows))

	// 2. データベース初期化 (認証と集計用。失敗しても地図・検索は動く)
	if err := db.InitDB(); err != nil {
		log.Printf("警告: %v (認証・統計APIは利用できません)", err)
	} else if err := db.SeedCrossings(rows); err != nil {
		log.Printf("警告: %v", err)
	}

	// 3. Gin エンジン初期化
	r := gin.Default()

	// 4. ルーティング設定
	setupRoutes(r)

	// 5. サーバー起動
	addr := ":" + utils.EnvOrDefault("PORT", "8080")
	fmt.Println("\nサーバー起動中...")
	fmt.Println("アクセス先: http://localhost" + addr)
	fmt.Println("API:")
	fmt.Println("  - GET  /api/crossings           - 踏切検索")
	fmt.Println("  - GET  /api/crossings/options   - フィルタ選択肢")
	fmt.Println("  - GET  /api/crossings/nearest   - 最寄り踏切")
	fmt.Println("  - GET  /api/stats               - 路線別統計")
	fmt.Println("  - GET  /api/qr                  - 共有用QRコード")
	fmt.Println("  - GET  /export/static.html      - 静的エクスポート")
	fmt.Println("  - GET  /export/interactive.html - 対話型エクスポート")
	fmt.Println("  - POST /api/login               - ログイン")
	fmt.Println("  - POST /api/register            - ユーザー登録")
	fmt.Println("  - POST /api/admin/reload        - データ再読込 (要認証)")
	fmt.Println("\n終了するには Ctrl+C")

	if err := r.Run(addr); err != nil {
		log.Fatalf("サーバー起動失敗: %v", err)
	}
}

// setupRoutes ルーティング設定
func setupRoutes(r *gin.Engine) {
	// CORS ミドルウェア
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// ヘルスチェック
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "ok",
		})
	})

	// 画面
	r.GET("/", handler.Index)
	r.GET("/help", handler.Help)

	// エクスポート (ダウンロード)
	r.GET("/export/static.html", handler.ExportStatic)
	r.GET("/export/interactive.html", handler.ExportInteractive)

	// API ルートグループ
	api := r.Group("/api")
	{
		// 公開API
		api.POST("/login", handler.Login)
		api.POST("/register", handler.Register)

		api.GET("/crossings", handler.GetCrossings)
		api.GET("/crossings/options", handler.GetOptions)
		api.GET("/crossings/nearest", handler.GetNearest)
		api.GET("/stats", handler.GetStats)
		api.GET("/qr", handler.QRCode)

		// 管理系 (要認証)
		admin := api.Group("/admin")
		admin.Use(handler.AuthMiddleware())
		{
			admin.POST("/reload", handler.ReloadData)
		}
	}
}
