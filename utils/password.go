package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword パスワードを bcrypt でハッシュ化する
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword ハッシュと平文パスワードを照合する
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
