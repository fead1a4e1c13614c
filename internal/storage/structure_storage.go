package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/annel0/trial-chambers/internal/structure"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/gzip"
)

// StructureStorage — долговременное хранилище структур и спаунеров
// поверх BadgerDB. Записи хранятся как gzip-сжатый JSON под ключами
// structure:<id> и spawner:<id>.
type StructureStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
}

// NewStructureStorage открывает хранилище по указанному пути
func NewStructureStorage(dataPath string) (*StructureStorage, error) {
	dbPath := filepath.Join(dataPath, "structures")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	return openStorage(opts, dbPath)
}

// NewInMemoryStructureStorage открывает хранилище в памяти (для тестов)
func NewInMemoryStructureStorage() (*StructureStorage, error) {
	opts := badger.DefaultOptions("")
	opts.InMemory = true
	opts.Logger = nil

	return openStorage(opts, "")
}

func openStorage(opts badger.Options, dbPath string) (*StructureStorage, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &StructureStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
	}, nil
}

// Close закрывает хранилище данных
func (ss *StructureStorage) Close() error {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if !ss.isReady {
		return nil
	}

	ss.isReady = false
	return ss.db.Close()
}

// SaveStructure сохраняет запись структуры
func (ss *StructureStorage) SaveStructure(rec structure.Record) error {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	data, err := packRecord(rec)
	if err != nil {
		return fmt.Errorf("ошибка сериализации структуры: %w", err)
	}

	key := fmt.Sprintf("structure:%s", rec.ID)
	err = ss.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	return nil
}

// LoadStructure загружает запись структуры.
// Возвращает (nil, nil), если запись отсутствует.
func (ss *StructureStorage) LoadStructure(id string) (*structure.Record, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	data, err := ss.read(fmt.Sprintf("structure:%s", id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	var rec structure.Record
	if err := unpack(data, &rec); err != nil {
		return nil, fmt.Errorf("ошибка десериализации структуры: %w", err)
	}

	return &rec, nil
}

// ListStructureIDs возвращает идентификаторы всех сохранённых структур
func (ss *StructureStorage) ListStructureIDs() ([]string, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	prefix := []byte("structure:")
	var ids []string

	err := ss.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, string(it.Item().Key()[len(prefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода BadgerDB: %w", err)
	}

	return ids, nil
}

// SaveSpawner сохраняет снапшот спаунера отдельно от структуры,
// чтобы частые смены состояния не переписывали всю запись.
func (ss *StructureStorage) SaveSpawner(snap spawner.Snapshot) error {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	data, err := packSnapshot(snap)
	if err != nil {
		return fmt.Errorf("ошибка сериализации спаунера: %w", err)
	}

	key := fmt.Sprintf("spawner:%s", snap.ID)
	err = ss.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	return nil
}

// SaveSnapshot реализует spawner.SnapshotStore поверх BadgerDB
func (ss *StructureStorage) SaveSnapshot(_ context.Context, snap spawner.Snapshot) error {
	return ss.SaveSpawner(snap)
}

// LoadSpawner загружает снапшот спаунера.
// Возвращает (nil, nil), если снапшот отсутствует.
func (ss *StructureStorage) LoadSpawner(id string) (*spawner.Snapshot, error) {
	ss.mutex.RLock()
	defer ss.mutex.RUnlock()

	if !ss.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	data, err := ss.read(fmt.Sprintf("spawner:%s", id))
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	var snap spawner.Snapshot
	if err := unpack(data, &snap); err != nil {
		return nil, fmt.Errorf("ошибка десериализации спаунера: %w", err)
	}

	return &snap, nil
}

func (ss *StructureStorage) read(key string) ([]byte, error) {
	var data []byte
	err := ss.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	return data, err
}

func packRecord(rec structure.Record) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return compress(raw)
}

func packSnapshot(snap spawner.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}
	return compress(raw)
}

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func unpack(data []byte, dst interface{}) error {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
