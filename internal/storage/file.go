package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"pingpong_bot/internal/models"
)

// File — JSON-файл с атомарной записью. Дефолтный бэкенд, когда
// DATABASE_DSN не задан.
type File struct {
	path string

	mu     sync.Mutex
	orders map[string]*models.Order
	addrs  map[string]string
	loaded bool
}

const defaultPath = "data/pingpong.json"

func NewFile(path string) *File {
	if path == "" {
		path = defaultPath
	}
	return &File{
		path:   path,
		orders: make(map[string]*models.Order),
		addrs:  make(map[string]string),
	}
}

// ---- public API (как у Pg) ----

func (f *File) LoadOrder(ctx context.Context, key string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.loadLocked(); err != nil {
		return nil, err
	}
	return f.orders[key].Clone(), nil
}

func (f *File) SaveOrder(ctx context.Context, key string, order *models.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.loadLocked(); err != nil {
		return err
	}
	f.orders[key] = order.Clone()
	return f.saveLocked()
}

func (f *File) LoadAddress(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.loadLocked(); err != nil {
		return "", err
	}
	return f.addrs[key], nil
}

func (f *File) SaveAddress(ctx context.Context, key string, address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.loadLocked(); err != nil {
		return err
	}
	f.addrs[key] = address
	return f.saveLocked()
}

// ---- storage format ----

type snapshot struct {
	UpdatedAt time.Time                `json:"updated_at"`
	Orders    map[string]*models.Order `json:"orders"`
	Addresses map[string]string        `json:"addresses"`
}

func (f *File) loadLocked() error {
	if f.loaded {
		return nil
	}

	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			f.loaded = true
			return nil
		}
		return fmt.Errorf("read %s: %w", f.path, err)
	}

	var snap snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", f.path, err)
	}

	f.orders = make(map[string]*models.Order, len(snap.Orders))
	for k, o := range snap.Orders {
		if o == nil {
			continue
		}
		f.orders[k] = o.Clone()
	}
	f.addrs = make(map[string]string, len(snap.Addresses))
	for k, a := range snap.Addresses {
		f.addrs[k] = a
	}

	f.loaded = true
	return nil
}

func (f *File) saveLocked() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	snap := snapshot{
		UpdatedAt: time.Now(),
		Orders:    f.orders,
		Addresses: f.addrs,
	}

	b, err := json.MarshalIndent(&snap, "", "  ")
	if err != nil {
		return err
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path) // атомарно
}
