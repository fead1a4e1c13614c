package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/go-redis/redis/v8"
)

// SnapshotRepo — горячее хранилище снапшотов спаунеров.
// В отличие от StructureStorage, хранит только текущее состояние
// и допускает TTL: потерянный снапшот восстанавливается из BadgerDB.
type SnapshotRepo interface {
	spawner.SnapshotStore
	GetSnapshot(ctx context.Context, id string) (*spawner.Snapshot, error)
	DeleteSnapshot(ctx context.Context, id string) error
	Close() error
}

// MemorySnapshotRepo хранит снапшоты в памяти (для тестов и одиночного режима)
type MemorySnapshotRepo struct {
	mu        sync.RWMutex
	snapshots map[string]spawner.Snapshot
}

// NewMemorySnapshotRepo создаёт репозиторий в памяти
func NewMemorySnapshotRepo() *MemorySnapshotRepo {
	return &MemorySnapshotRepo{
		snapshots: make(map[string]spawner.Snapshot),
	}
}

// SaveSnapshot сохраняет снапшот спаунера
func (mr *MemorySnapshotRepo) SaveSnapshot(_ context.Context, snap spawner.Snapshot) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	mr.snapshots[snap.ID] = snap
	return nil
}

// GetSnapshot возвращает снапшот или (nil, nil), если его нет
func (mr *MemorySnapshotRepo) GetSnapshot(_ context.Context, id string) (*spawner.Snapshot, error) {
	mr.mu.RLock()
	defer mr.mu.RUnlock()

	snap, ok := mr.snapshots[id]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

// DeleteSnapshot удаляет снапшот
func (mr *MemorySnapshotRepo) DeleteSnapshot(_ context.Context, id string) error {
	mr.mu.Lock()
	defer mr.mu.Unlock()
	delete(mr.snapshots, id)
	return nil
}

// Close ничего не делает для репозитория в памяти
func (mr *MemorySnapshotRepo) Close() error {
	return nil
}

// RedisSnapshotRepo хранит снапшоты спаунеров в Redis для быстрого доступа
type RedisSnapshotRepo struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	log       *logging.Logger
}

// NewRedisSnapshotRepo создаёт Redis-репозиторий и проверяет подключение
func NewRedisSnapshotRepo(cfg *config.StorageConfig) (*RedisSnapshotRepo, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	ttl := time.Duration(cfg.SnapshotTTL) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	repo := &RedisSnapshotRepo{
		client:    client,
		keyPrefix: "trial:spawner:",
		ttl:       ttl,
		log:       logging.GetStorageLogger(),
	}

	repo.log.Info("🔴 Подключено к Redis %s", cfg.RedisAddr)
	return repo, nil
}

// SaveSnapshot сохраняет снапшот спаунера с TTL
func (rr *RedisSnapshotRepo) SaveSnapshot(ctx context.Context, snap spawner.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("ошибка сериализации снапшота: %w", err)
	}

	key := rr.keyPrefix + snap.ID
	if err := rr.client.Set(ctx, key, data, rr.ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи в Redis: %w", err)
	}

	return nil
}

// GetSnapshot возвращает снапшот или (nil, nil), если ключ истёк или отсутствует
func (rr *RedisSnapshotRepo) GetSnapshot(ctx context.Context, id string) (*spawner.Snapshot, error) {
	data, err := rr.client.Get(ctx, rr.keyPrefix+id).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из Redis: %w", err)
	}

	var snap spawner.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("ошибка десериализации снапшота: %w", err)
	}

	return &snap, nil
}

// GetSnapshots получает несколько снапшотов пайплайном
func (rr *RedisSnapshotRepo) GetSnapshots(ctx context.Context, ids []string) (map[string]*spawner.Snapshot, error) {
	if len(ids) == 0 {
		return make(map[string]*spawner.Snapshot), nil
	}

	pipe := rr.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Get(ctx, rr.keyPrefix+id)
	}

	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("ошибка пайплайна Redis: %w", err)
	}

	result := make(map[string]*spawner.Snapshot)
	for i, cmd := range cmds {
		data, err := cmd.Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			rr.log.Warn("Не удалось прочитать снапшот %s: %v", ids[i], err)
			continue
		}

		var snap spawner.Snapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			rr.log.Warn("Не удалось распарсить снапшот %s: %v", ids[i], err)
			continue
		}
		result[ids[i]] = &snap
	}

	return result, nil
}

// DeleteSnapshot удаляет снапшот
func (rr *RedisSnapshotRepo) DeleteSnapshot(ctx context.Context, id string) error {
	if err := rr.client.Del(ctx, rr.keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("ошибка удаления из Redis: %w", err)
	}
	return nil
}

// CountSnapshots возвращает количество снапшотов в Redis
func (rr *RedisSnapshotRepo) CountSnapshots(ctx context.Context) (int64, error) {
	var count int64
	iter := rr.client.Scan(ctx, 0, rr.keyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("ошибка подсчёта снапшотов: %w", err)
	}
	return count, nil
}

// Close закрывает соединение с Redis
func (rr *RedisSnapshotRepo) Close() error {
	return rr.client.Close()
}
