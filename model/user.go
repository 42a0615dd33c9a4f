package model

import "gorm.io/gorm"

// User ログイン認証用のユーザー
type User struct {
	gorm.Model
	UserID   string `json:"user_id" gorm:"uniqueIndex;not null"`  // UUID
	Username string `json:"username" gorm:"uniqueIndex;not null"` // ユーザー名は一意かつ必須
	Password string `json:"-" gorm:"not null"`                    // bcrypt ハッシュ
	Email    string `json:"email"`
}
