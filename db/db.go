package db

import (
	"errors"
	"fmt"
	"log"
	"time"

	"fumikiri-map/model"
	"fumikiri-map/utils"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// ErrUnavailable データベースが使えない状態 (接続失敗時も起動は続行する)
var ErrUnavailable = errors.New("データベースが利用できません")

// InitDB データベースを初期化する
// DB_DRIVER=postgres で PostgreSQL、それ以外は組み込みの SQLite を使う。
// 失敗してもエラーを返すだけでプロセスは落とさない
// (地図・検索・エクスポートはメモリ上のデータセットだけで動く)。
func InitDB() error {
	driver := utils.EnvOrDefault("DB_DRIVER", "sqlite")

	var err error
	switch driver {
	case "postgres":
		host := utils.EnvOrDefault("DB_HOST", "localhost")
		port := utils.EnvOrDefault("DB_PORT", "5432")
		user := utils.EnvOrDefault("DB_USER", "fumikiri")
		password := utils.EnvOrDefault("DB_PASSWORD", "fumikiri")
		dbname := utils.EnvOrDefault("DB_NAME", "fumikiri")

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Tokyo",
			host, user, password, dbname, port,
		)

		// Docker 起動時はデータベース側の準備が遅れることがあるためリトライする
		maxRetries := 30
		for i := 0; i < maxRetries; i++ {
			DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
			if err == nil {
				break
			}
			log.Printf("データベースの起動を待機中... (%d/%d): %v", i+1, maxRetries, err)
			time.Sleep(2 * time.Second)
		}
	default:
		DB, err = gorm.Open(sqlite.Open(utils.EnvOrDefault("DB_PATH", "fumikiri.db")), &gorm.Config{})
	}

	if err != nil {
		DB = nil
		return fmt.Errorf("データベースに接続できません: %w", err)
	}

	// 自動マイグレーション
	if err := DB.AutoMigrate(&model.User{}, &model.Crossing{}); err != nil {
		DB = nil
		return fmt.Errorf("データベースの移行に失敗しました: %w", err)
	}

	log.Println("データベース接続と初期化に成功しました")
	return nil
}

// SeedCrossings crossings テーブルが空ならデータセットのミラーを書き込む
// 集計APIはこのミラーに対して動く。検索本体はメモリ上のデータセットを使う。
func SeedCrossings(rows []model.Crossing) error {
	if DB == nil {
		return nil
	}

	var count int64
	if err := DB.Model(&model.Crossing{}).Count(&count).Error; err != nil {
		return fmt.Errorf("踏切テーブルの確認に失敗しました: %w", err)
	}
	if count > 0 || len(rows) == 0 {
		return nil
	}
	return insertCrossings(rows)
}

// ResetCrossings ミラーを作り直す (データ再読込時)
func ResetCrossings(rows []model.Crossing) error {
	if DB == nil {
		return nil
	}

	if err := DB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.Crossing{}).Error; err != nil {
		return fmt.Errorf("踏切テーブルの初期化に失敗しました: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	return insertCrossings(rows)
}

func insertCrossings(rows []model.Crossing) error {
	// CreateInBatches は主キーを書き戻すため、キャッシュ上の行を汚さないようコピーする
	batch := make([]model.Crossing, len(rows))
	copy(batch, rows)
	for i := range batch {
		batch[i].ID = 0
	}

	if err := DB.CreateInBatches(batch, 100).Error; err != nil {
		return fmt.Errorf("踏切データの書き込みに失敗しました: %w", err)
	}
	log.Printf("踏切データ %d 件をデータベースへ取り込みました", len(batch))
	return nil
}

// LineCount 路線ごとの踏切件数
type LineCount struct {
	Line  string `json:"line"`
	Count int64  `json:"count"`
}

// CountByLine 路線別の踏切件数を集計する (線名欠損の行は除く)
func CountByLine() ([]LineCount, error) {
	if DB == nil {
		return nil, ErrUnavailable
	}

	var out []LineCount
	err := DB.Model(&model.Crossing{}).
		Select("line, count(*) as count").
		Where("line <> ''").
		Group("line").
		Order("count DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("集計に失敗しました: %w", err)
	}
	return out, nil
}

// FindUserByUsername ユーザー名でユーザーを引く。見つからなければ nil
func FindUserByUsername(username string) (*model.User, error) {
	if DB == nil {
		return nil, ErrUnavailable
	}

	var user model.User
	err := DB.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザー検索に失敗しました: %w", err)
	}
	return &user, nil
}

// CreateUser 新規ユーザーを作成する
func CreateUser(user *model.User) error {
	if DB == nil {
		return ErrUnavailable
	}
	if err := DB.Create(user).Error; err != nil {
		return fmt.Errorf("ユーザー作成に失敗しました: %w", err)
	}
	return nil
}
