package config

import (
	"io/ioutil"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.

type Config struct {
	Generation GenerationConfig `yaml:"generation"`
	Population PopulationConfig `yaml:"population"`
	Storage    StorageConfig    `yaml:"storage"`
	EventBus   EventBusConfig   `yaml:"eventbus"`
	Server     ServerConfig     `yaml:"server"`
}

// GenerationConfig настройки планировщика комнат и коридоров
type GenerationConfig struct {
	Seed               int64   `yaml:"seed"`
	Kind               string  `yaml:"kind"` // "chamber" или "ruins"
	TargetRooms        int     `yaml:"target_rooms"`
	MaxAttempts        int     `yaml:"max_attempts"`
	RoomSizeMin        int     `yaml:"room_size_min"`
	RoomSizeMax        int     `yaml:"room_size_max"`
	RoomHeightMin      int     `yaml:"room_height_min"`
	RoomHeightMax      int     `yaml:"room_height_max"`
	BranchDistMin      int     `yaml:"branch_dist_min"`
	BranchDistMax      int     `yaml:"branch_dist_max"`
	YJitter            int     `yaml:"y_jitter"`
	YMin               int     `yaml:"y_min"`
	YMax               int     `yaml:"y_max"`
	Padding            int     `yaml:"padding"`
	CorridorWidth      int     `yaml:"corridor_width"`
	TreasureRoomChance float64 `yaml:"treasure_room_chance"`
	ErosionScale       float64 `yaml:"erosion_scale"`
	ErosionLevel       float64 `yaml:"erosion_level"`
	SiteAttempts       int     `yaml:"site_attempts"`
	SiteRadius         int     `yaml:"site_radius"`
	SiteFallback       bool    `yaml:"site_fallback"` // детерминированный режим: fallback на точку спавна мира
}

// PopulationConfig настройки расстановки спаунеров и сундуков
type PopulationConfig struct {
	SpawnerChance  float64 `yaml:"spawner_chance"`
	BaseWaves      int     `yaml:"base_waves"`
	WaveBonus      int     `yaml:"wave_bonus"`
	BaseMobs       int     `yaml:"base_mobs"`
	MobBonus       int     `yaml:"mob_bonus"`
	DistanceNorm   float64 `yaml:"distance_norm"`
	RichLootWaves  int     `yaml:"rich_loot_waves"` // порог totalWaves для богатого лута
	TreasureChests int     `yaml:"treasure_chests"` // сундуков в сокровищнице
	OminousChance  float64 `yaml:"ominous_chance"`  // шанс разблокировки финального типа моба
}

// StorageConfig настройки хранилища структур и снапшотов спаунеров
type StorageConfig struct {
	DataPath      string `yaml:"data_path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	SnapshotTTL   int    `yaml:"snapshot_ttl_seconds"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
	TickRate    int `yaml:"tick_rate"`
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getIntWithEnvFallback(s.MetricsPort, "TRIAL_METRICS_PORT", 2112)
}

// GetTickRate возвращает частоту тиков мира (тиков в секунду)
func (s *ServerConfig) GetTickRate() int {
	return getIntWithEnvFallback(s.TickRate, "TRIAL_TICK_RATE", 20)
}

// GetDataPath возвращает путь к данным с поддержкой fallback значений
func (s *StorageConfig) GetDataPath() string {
	if s.DataPath != "" {
		return s.DataPath
	}
	if envVal := os.Getenv("TRIAL_DATA_PATH"); envVal != "" {
		return envVal
	}
	return "data"
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configVal int, envVar string, defaultVal int) int {
	if configVal > 0 {
		return configVal
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if v, err := strconv.Atoi(envVal); err == nil && v > 0 {
			return v
		}
	}

	return defaultVal
}

// Default возвращает конфигурацию по умолчанию.
// Значения подобраны под подземную камеру испытаний среднего размера.
func Default() *Config {
	return &Config{
		Generation: GenerationConfig{
			Seed:               0, // 0 — сид берётся из времени
			Kind:               "chamber",
			TargetRooms:        8,
			MaxAttempts:        64,
			RoomSizeMin:        7,
			RoomSizeMax:        13,
			RoomHeightMin:      4,
			RoomHeightMax:      6,
			BranchDistMin:      4,
			BranchDistMax:      10,
			YJitter:            2,
			YMin:               -40,
			YMax:               -10,
			Padding:            1,
			CorridorWidth:      3,
			TreasureRoomChance: 0.75,
			ErosionScale:       0.15,
			ErosionLevel:       0.35,
			SiteAttempts:       32,
			SiteRadius:         128,
			SiteFallback:       false,
		},
		Population: PopulationConfig{
			SpawnerChance:  0.6,
			BaseWaves:      1,
			WaveBonus:      3,
			BaseMobs:       2,
			MobBonus:       4,
			DistanceNorm:   48.0,
			RichLootWaves:  3,
			TreasureChests: 3,
			OminousChance:  0.25,
		},
		Storage: StorageConfig{
			DataPath:    "data",
			RedisAddr:   "",
			SnapshotTTL: 300,
		},
		EventBus: EventBusConfig{
			URL:       "",
			Stream:    "TRIALS",
			Retention: 24,
		},
		Server: ServerConfig{
			MetricsPort: 2112,
			TickRate:    20,
		},
	}
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV TRIAL_CONFIG или возвращает дефолты.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TRIAL_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
