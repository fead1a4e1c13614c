package metrics

import (
	"net/http"
	"sync"

	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Метрики генерации структур и испытаний. Коллекторы создаются при
// загрузке пакета и потому всегда пригодны к записи; Init регистрирует
// их в дефолтном регистре Prometheus один раз.

var (
	once sync.Once

	// GenerationDuration — длительность полной генерации структуры.
	GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trial",
		Name:      "generation_duration_seconds",
		Help:      "Длительность генерации структуры.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	// RoomsPlaced — всего размещено комнат.
	RoomsPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trial",
		Name:      "rooms_placed_total",
		Help:      "Общее число размещённых комнат.",
	})

	// CorridorsRepaired — коридоров, добавленных проходом починки связности.
	CorridorsRepaired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trial",
		Name:      "corridors_repaired_total",
		Help:      "Коридоров, добавленных проходом починки связности.",
	})

	// ActiveTrials — испытаний в состоянии Active прямо сейчас.
	ActiveTrials = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trial",
		Name:      "trials_active",
		Help:      "Текущее количество активных испытаний.",
	})

	// WavesCompleted — всего зачищено волн.
	WavesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trial",
		Name:      "waves_completed_total",
		Help:      "Общее число зачищенных волн.",
	})

	// TrialsCompleted — успешно завершённых испытаний.
	TrialsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trial",
		Name:      "trials_completed_total",
		Help:      "Успешно завершённых испытаний.",
	})

	// TrialsFailed — принудительно проваленных испытаний.
	TrialsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trial",
		Name:      "trials_failed_total",
		Help:      "Испытаний, завершившихся провалом.",
	})

	// RewardsGenerated — сгенерированных наград.
	RewardsGenerated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trial",
		Name:      "rewards_generated_total",
		Help:      "Сгенерированных наград.",
	})
)

// Init регистрирует метрики в глобальном регистре Prometheus.
// Повторные вызовы безопасны.
func Init() {
	once.Do(func() {
		prometheus.MustRegister(
			GenerationDuration, RoomsPlaced, CorridorsRepaired,
			ActiveTrials, WavesCompleted, TrialsCompleted, TrialsFailed, RewardsGenerated,
		)
	})
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func StartHTTP(addr string) {
	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
}
