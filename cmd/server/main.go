package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/eventbus"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/metrics"
	"github.com/annel0/trial-chambers/internal/observability"
	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/annel0/trial-chambers/internal/storage"
	"github.com/annel0/trial-chambers/internal/structure"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🏛️ Запуск сервера камер испытаний...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	tickRate := cfg.Server.GetTickRate()
	metricsAddr := fmt.Sprintf(":%d", cfg.Server.GetMetricsPort())
	logging.Info("📡 Конфигурация: tick_rate=%d, metrics=%s, kind=%s", tickRate, metricsAddr, cfg.Generation.Kind)

	// === ТЕЛЕМЕТРИЯ ===
	ctx := context.Background()
	shutdownTelemetry, err := observability.InitTelemetry(ctx, "trial-chambers", 1.0)
	if err != nil {
		logging.Warn("⚠️ OpenTelemetry недоступен: %v", err)
		shutdownTelemetry = func(context.Context) error { return nil }
	}

	// === МЕТРИКИ ===
	metrics.Init()
	metrics.StartHTTP(metricsAddr)

	// === ШИНА СОБЫТИЙ ===
	var bus eventbus.EventBus
	if cfg.EventBus.URL != "" {
		jsBus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream,
			time.Duration(cfg.EventBus.Retention)*time.Hour)
		if err != nil {
			logging.Warn("⚠️ JetStream недоступен (%v), используется шина в памяти", err)
			bus = eventbus.NewMemoryBus(1024)
		} else {
			bus = jsBus
		}
	} else {
		bus = eventbus.NewMemoryBus(1024)
	}
	eventbus.Init(bus)

	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("⚠️ Не удалось подписать лог-слушатель: %v", err)
	}

	busExporter := eventbus.NewMetricsExporter(bus)
	busExporter.Start()

	// === ХРАНИЛИЩЕ ===
	structStore, err := storage.NewStructureStorage(cfg.Storage.GetDataPath())
	if err != nil {
		logging.Error("❌ Ошибка открытия хранилища: %v", err)
		log.Fatalf("❌ Ошибка открытия хранилища: %v", err)
	}

	var snapRepo storage.SnapshotRepo
	if cfg.Storage.RedisAddr != "" {
		redisRepo, err := storage.NewRedisSnapshotRepo(&cfg.Storage)
		if err != nil {
			logging.Warn("⚠️ Redis недоступен (%v), снапшоты пишутся в BadgerDB", err)
			snapRepo = nil
		} else {
			snapRepo = redisRepo
		}
	}

	var snapStore spawner.SnapshotStore = structStore
	if snapRepo != nil {
		snapStore = snapRepo
	}

	// === МИР И ГЕНЕРАЦИЯ ===
	w := world.NewMemoryWorld(vec.Vec3{X: 0, Y: 0, Z: 0})

	generator := structure.NewGenerator(cfg)
	logging.Info("🎲 Сид генерации: %d", generator.Seed())

	site := generator.FindSite(w)
	if site == nil {
		logging.Warn("⚠️ Позиция для структуры не найдена, используется точка спавна")
		spawn := w.GetSpawnPosition()
		fallback := vec.Vec3{X: spawn.X, Y: cfg.Generation.YMin, Z: spawn.Z}
		site = &fallback
	}

	st := generator.Generate(ctx, w, *site)
	if err := structStore.SaveStructure(st.Serialize()); err != nil {
		logging.Error("❌ Ошибка сохранения структуры: %v", err)
	}

	// === СПАУНЕРЫ ===
	manager := spawner.NewManager(w, bus, snapStore)
	for _, ts := range st.Spawners {
		manager.Add(ts)
	}
	w.SetDeathListener(manager.OnMobDeath)

	logging.Info("✅ Структура %s готова: комнат=%d, спаунеров=%d", st.ID, len(st.Rooms), manager.Count())

	// === ИГРОВОЙ ЦИКЛ ===
	ticker := time.NewTicker(time.Second / time.Duration(tickRate))
	defer ticker.Stop()

	stopCh := make(chan struct{})
	go func() {
		var tick uint64
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				tick++
				manager.UpdateAll(ctx, tick)
			}
		}
	}()

	// Канал для получения сигналов ОС
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logging.Info("📡 Получен сигнал %v, завершение работы...", sig)

	// === GRACEFUL SHUTDOWN ===
	close(stopCh)
	busExporter.Stop()

	if err := bus.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия шины событий: %v", err)
	}
	if snapRepo != nil {
		if err := snapRepo.Close(); err != nil {
			logging.Error("❌ Ошибка закрытия Redis: %v", err)
		}
	}
	if err := structStore.Close(); err != nil {
		logging.Error("❌ Ошибка закрытия хранилища: %v", err)
	}
	if err := shutdownTelemetry(ctx); err != nil {
		logging.Error("❌ Ошибка остановки телеметрии: %v", err)
	}

	logging.Info("👋 Сервер успешно остановлен")
}
