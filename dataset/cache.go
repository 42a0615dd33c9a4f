package dataset

import (
	"sync"

	"fumikiri-map/model"

	"golang.org/x/sync/singleflight"
)

// Cache プロセス全体で共有するデータセットキャッシュ
// キーはファイルパス。読み込みは成功時に一度だけ行い、以降は読み取り専用で使い回す。
// 初回読み込みの競合は singleflight で直列化する。
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]model.Crossing
	group   singleflight.Group
}

func NewCache() *Cache {
	return &Cache{entries: make(map[string][]model.Crossing)}
}

// Get キャッシュ済みのデータセットを返す。未読込なら読み込んで保存する。
// 失敗時は空のデータセットとエラーを返すだけで、次回また読み込みを試みる。
func (c *Cache) Get(path string) ([]model.Crossing, error) {
	c.mu.RLock()
	rows, ok := c.entries[path]
	c.mu.RUnlock()
	if ok {
		return rows, nil
	}

	v, err, _ := c.group.Do(path, func() (interface{}, error) {
		rows, err := Load(path)
		if err != nil {
			return []model.Crossing(nil), err
		}
		c.mu.Lock()
		c.entries[path] = rows
		c.mu.Unlock()
		return rows, nil
	})
	return v.([]model.Crossing), err
}

// Invalidate 指定パスのキャッシュを破棄する (データ再読込用)
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}
