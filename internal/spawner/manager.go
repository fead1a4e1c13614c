package spawner

import (
	"context"
	"encoding/json"
	"time"

	"github.com/annel0/trial-chambers/internal/eventbus"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/metrics"
	"github.com/annel0/trial-chambers/internal/world"
	"github.com/google/uuid"
)

// SnapshotStore сохраняет снапшоты спаунеров после смены состояния.
// Реализации живут в пакете storage (badger, redis, memory).
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap Snapshot) error
}

// Manager владеет всеми живыми спаунерами и продвигает их раз за тик мира.
// Гибель мобов принимается синхронным колбэком OnMobDeath и раскладывается
// по очередям спаунеров; очереди потребляются в UpdateAll.
//
// Не потокобезопасен: OnMobDeath и UpdateAll должны вызываться из потока тика.
type Manager struct {
	world    world.World
	bus      eventbus.EventBus
	store    SnapshotStore
	spawners map[string]*TrialSpawner
	order    []string // порядок добавления — детерминированный порядок обновления
	log      *logging.Logger
}

// NewManager создаёт менеджер спаунеров. bus и store могут быть nil.
func NewManager(w world.World, bus eventbus.EventBus, store SnapshotStore) *Manager {
	metrics.Init()
	return &Manager{
		world:    w,
		bus:      bus,
		store:    store,
		spawners: make(map[string]*TrialSpawner),
		log:      logging.GetSpawnerLogger(),
	}
}

// Add регистрирует спаунер в менеджере
func (m *Manager) Add(ts *TrialSpawner) {
	if _, exists := m.spawners[ts.ID]; exists {
		return
	}
	m.spawners[ts.ID] = ts
	m.order = append(m.order, ts.ID)
}

// Get возвращает спаунер по ID
func (m *Manager) Get(id string) (*TrialSpawner, bool) {
	ts, exists := m.spawners[id]
	return ts, exists
}

// Count возвращает количество зарегистрированных спаунеров
func (m *Manager) Count() int {
	return len(m.spawners)
}

// Interact обрабатывает взаимодействие игрока со спаунером.
// Возвращает false, если спаунер не найден или уже не в состоянии Idle.
func (m *Manager) Interact(ctx context.Context, id string) bool {
	ts, exists := m.spawners[id]
	if !exists {
		return false
	}

	if !ts.Activate(m.world) {
		return false
	}

	metrics.ActiveTrials.Inc()
	m.publish(ctx, eventbus.EventTrialActivated, ts)
	m.persist(ctx, ts)
	return true
}

// OnMobDeath принимает уведомление о гибели моба от подсистемы сущностей.
// Безопасен к повторной доставке: дедупликация происходит в спаунере.
func (m *Manager) OnMobDeath(mob world.Mob) {
	if mob.SpawnerID == "" {
		return
	}
	ts, exists := m.spawners[mob.SpawnerID]
	if !exists {
		return
	}
	ts.EnqueueMobDeath(mob.ID)
}

// UpdateAll продвигает все спаунеры на один тик мира
func (m *Manager) UpdateAll(ctx context.Context, currentTick uint64) {
	for _, id := range m.order {
		ts := m.spawners[id]

		prevState := ts.State
		prevWave := ts.WaveCount

		ts.Update(m.world, currentTick)

		if ts.State == StateActive && ts.WaveCount > prevWave {
			metrics.WavesCompleted.Inc()
			m.publish(ctx, eventbus.EventWaveCleared, ts)
		}

		if prevState == StateActive && ts.State == StateCompleted {
			metrics.ActiveTrials.Dec()
			metrics.WavesCompleted.Inc()
			metrics.TrialsCompleted.Inc()
			metrics.RewardsGenerated.Inc()
			m.publish(ctx, eventbus.EventTrialCompleted, ts)
			m.publish(ctx, eventbus.EventRewardGenerated, ts)
		}

		if prevState == StateActive && ts.State == StateFailed {
			metrics.ActiveTrials.Dec()
			metrics.TrialsFailed.Inc()
			m.publish(ctx, eventbus.EventTrialFailed, ts)
		}

		if prevState != ts.State || prevWave != ts.WaveCount {
			m.persist(ctx, ts)
		}
	}
}

// publish отправляет снапшот спаунера в шину событий
func (m *Manager) publish(ctx context.Context, eventType string, ts *TrialSpawner) {
	if m.bus == nil {
		return
	}

	payload, err := json.Marshal(ts.Serialize())
	if err != nil {
		m.log.Error("Ошибка сериализации события %s для спаунера %s: %v", eventType, ts.ID, err)
		return
	}

	ev := &eventbus.Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        "spawner-manager",
		EventType:     eventType,
		CorrelationID: ts.ID,
		Priority:      5,
		Payload:       payload,
	}
	if err := m.bus.Publish(ctx, ev); err != nil {
		m.log.Warn("Событие %s для спаунера %s не опубликовано: %v", eventType, ts.ID, err)
	}
}

// persist сохраняет снапшот спаунера в хранилище
func (m *Manager) persist(ctx context.Context, ts *TrialSpawner) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveSnapshot(ctx, ts.Serialize()); err != nil {
		m.log.Warn("Снапшот спаунера %s не сохранён: %v", ts.ID, err)
	}
}
