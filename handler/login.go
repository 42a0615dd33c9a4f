package handler

import (
	"net/http"
	"time"

	"fumikiri-map/db"
	"fumikiri-map/model"
	"fumikiri-map/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT 署名鍵 (本番では環境変数 JWT_SECRET を設定すること)
var jwtSecret = []byte(utils.EnvOrDefault("JWT_SECRET", "fumikiri-dev-secret"))

// Claims JWT のペイロード
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// LoginRequest ログイン要求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse ログイン応答
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Login ユーザーログイン
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストパラメータが不正です"})
		return
	}

	user, err := db.FindUserByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "認証処理を実行できません: " + err.Error()})
		return
	}
	if user == nil || !utils.CheckPassword(user.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "ユーザー名またはパスワードが違います"})
		return
	}

	claims := &Claims{
		UserID:   user.UserID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "fumikiri-map",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "トークンの生成に失敗しました"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    tokenString,
		Username: user.Username,
		Message:  "ログインしました",
	})
}

// Register ユーザー登録
func Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
		Email    string `json:"email"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "リクエストパラメータが不正です"})
		return
	}

	existing, err := db.FindUserByUsername(req.Username)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "登録処理を実行できません: " + err.Error()})
		return
	}
	if existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "このユーザー名は既に使われています"})
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "パスワードの暗号化に失敗しました"})
		return
	}

	newUser := &model.User{
		UserID:   uuid.NewString(),
		Username: req.Username,
		Password: hashedPassword,
		Email:    req.Email,
	}
	if err := db.CreateUser(newUser); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ユーザー作成に失敗しました: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "登録しました",
		"username": newUser.Username,
	})
}

// AuthMiddleware JWT 認証ミドルウェア (管理系ルートを保護する)
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "トークンがありません"})
			c.Abort()
			return
		}

		// "Bearer " プレフィックスを除去
		if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
			tokenString = tokenString[7:]
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "トークンが無効です"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("username", claims.Username)
		c.Next()
	}
}
