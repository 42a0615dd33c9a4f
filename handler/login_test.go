package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"fumikiri-map/dataset"
	"fumikiri-map/db"

	"github.com/gin-gonic/gin"
)

// setupAuthRouter メモリ上のSQLiteで認証・管理系ルートを組み立てる
func setupAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "test.db"))
	if err := db.InitDB(); err != nil {
		t.Fatalf("InitDB: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fumikiri.csv")
	if err := os.WriteFile(path, []byte(fixtureCSV), 0644); err != nil {
		t.Fatal(err)
	}
	Store = dataset.NewCache()
	DataPath = path

	r := gin.New()
	r.POST("/api/login", Login)
	r.POST("/api/register", Register)
	r.GET("/api/stats", GetStats)
	admin := r.Group("/api/admin")
	admin.Use(AuthMiddleware())
	admin.POST("/reload", ReloadData)
	return r
}

func doPost(t *testing.T, r *gin.Engine, url string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest("POST", url, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	r := setupAuthRouter(t)

	cred := map[string]string{"username": "yamada", "password": "himitsu123"}
	if w := doPost(t, r, "/api/register", cred, ""); w.Code != http.StatusCreated {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}

	// 同名の再登録は拒否
	if w := doPost(t, r, "/api/register", cred, ""); w.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d", w.Code)
	}

	w := doPost(t, r, "/api/login", cred, "")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Token == "" {
		t.Error("トークンが発行されない")
	}

	// パスワード誤り
	bad := map[string]string{"username": "yamada", "password": "machigai"}
	if w := doPost(t, r, "/api/login", bad, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := setupAuthRouter(t)

	// パスワードは6文字以上
	short := map[string]string{"username": "suzuki", "password": "abc"}
	if w := doPost(t, r, "/api/register", short, ""); w.Code != http.StatusBadRequest {
		t.Errorf("short password status = %d", w.Code)
	}
}

func TestAdminReloadRequiresToken(t *testing.T) {
	r := setupAuthRouter(t)

	// トークンなしは拒否
	if w := doPost(t, r, "/api/admin/reload", nil, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d", w.Code)
	}
	if w := doPost(t, r, "/api/admin/reload", nil, "detarame-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", w.Code)
	}

	// ログインして再読込
	cred := map[string]string{"username": "kanri", "password": "kanri-pass"}
	doPost(t, r, "/api/register", cred, "")
	w := doPost(t, r, "/api/login", cred, "")
	var resp LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	w = doPost(t, r, "/api/admin/reload", nil, resp.Token)
	if w.Code != http.StatusOK {
		t.Fatalf("reload status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeJSON(t, w)
	if body["count"].(float64) != 4 {
		t.Errorf("reload count = %v, want 4", body["count"])
	}
}

func TestGetStatsFromMirror(t *testing.T) {
	r := setupAuthRouter(t)

	// ミラーを作ってから集計する
	rows, err := Store.Get(DataPath)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.ResetCrossings(rows); err != nil {
		t.Fatal(err)
	}

	w := doGet(t, r, "/api/stats")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeJSON(t, w)
	lines := body["lines"].([]interface{})
	if len(lines) != 3 {
		t.Fatalf("lines = %v", lines)
	}
	// 件数の多い順 (支線が2件で先頭)
	first := lines[0].(map[string]interface{})
	if first["line"] != "支線" || first["count"].(float64) != 2 {
		t.Errorf("先頭の集計 = %v", first)
	}
}
