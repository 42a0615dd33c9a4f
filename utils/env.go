package utils

import "os"

// EnvOrDefault 環境変数を取得し、未設定ならデフォルト値を返す
func EnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
