package structure

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/eventbus"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/metrics"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world"
	"github.com/annel0/trial-chambers/internal/world/block"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Generator — верхнеуровневая точка входа генерации: планировка комнат,
// коридоры, население и материализация в мир за один синхронный вызов.
// Полностью детерминирован при фиксированном сиде.
type Generator struct {
	cfg    *config.Config
	rng    *rand.Rand
	seed   int64
	log    *logging.Logger
	tracer trace.Tracer
}

// NewGenerator создаёт генератор. Сид 0 заменяется временем.
func NewGenerator(cfg *config.Config) *Generator {
	metrics.Init()

	seed := cfg.Generation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:    cfg,
		rng:    rand.New(rand.NewSource(seed)),
		seed:   seed,
		log:    logging.GetGenLogger(),
		tracer: otel.Tracer("structure-generator"),
	}
}

// Seed возвращает фактический сид генерации
func (g *Generator) Seed() int64 {
	return g.seed
}

// Generate выполняет полный цикл генерации структуры от origin.
// w может быть nil: тогда структура планируется, но не материализуется.
// Вызов синхронный и однопоточный, безопасен внутри одного тика мира.
func (g *Generator) Generate(ctx context.Context, w world.World, origin vec.Vec3) *Structure {
	ctx, span := g.tracer.Start(ctx, "structure.Generate")
	defer span.End()

	start := time.Now()

	kind := KindChamber
	if g.cfg.Generation.Kind == string(KindRuins) {
		kind = KindRuins
	}

	st := NewStructure(uuid.NewString(), kind, origin)

	planner := NewLayoutPlanner(&g.cfg.Generation, g.rng)
	rooms, edges := planner.LayoutRooms(origin)
	for _, room := range rooms {
		st.AddRoom(room)
	}

	connector := NewConnector(&g.cfg.Generation)
	corridors := make([]*Corridor, 0, len(edges))
	for _, edge := range edges {
		corridors = append(corridors, connector.Connect(rooms, edge[0], edge[1]))
	}
	corridors = connector.Repair(rooms, corridors)
	for _, corridor := range corridors {
		st.AddCorridor(corridor)
	}

	populator := NewPopulator(&g.cfg.Population, g.rng)
	populator.Populate(st)

	builder := NewBuilder(w, &g.cfg.Generation, g.rng, g.seed)
	builder.Build(st)

	metrics.RoomsPlaced.Add(float64(len(st.Rooms)))
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.String("structure.id", st.ID),
		attribute.String("structure.kind", string(st.Kind)),
		attribute.Int("structure.rooms", len(st.Rooms)),
		attribute.Int("structure.spawners", len(st.Spawners)),
	)

	g.publishGenerated(ctx, st)
	g.log.Info("Структура %s (%s) сгенерирована: комнат=%d, коридоров=%d, спаунеров=%d, сундуков=%d",
		st.ID, st.Kind, len(st.Rooms), len(st.Corridors), len(st.Spawners), len(st.Chests))

	return st
}

// FindSite ищет подходящую позицию для структуры вокруг точки спавна мира:
// случайные пробы в радиусе SiteRadius, позиция годится, если находится
// в толще породы. Возвращает nil при исчерпании попыток; в детерминированном
// режиме (SiteFallback) вместо nil подставляется фиксированная позиция.
func (g *Generator) FindSite(w world.World) *vec.Vec3 {
	if w == nil {
		return nil
	}

	gc := &g.cfg.Generation
	spawn := w.GetSpawnPosition()

	for attempt := 0; attempt < gc.SiteAttempts; attempt++ {
		candidate := vec.Vec3{
			X: spawn.X + g.rng.Intn(2*gc.SiteRadius+1) - gc.SiteRadius,
			Y: gc.YMin + g.rng.Intn(gc.YMax-gc.YMin+1),
			Z: spawn.Z + g.rng.Intn(2*gc.SiteRadius+1) - gc.SiteRadius,
		}

		if b, ok := w.GetBlock(candidate); ok && block.IsSolid(b.ID) {
			return &candidate
		}
	}

	if gc.SiteFallback {
		fallback := vec.Vec3{X: spawn.X, Y: clampInt(spawn.Y, gc.YMin, gc.YMax), Z: spawn.Z}
		g.log.Warn("Поиск позиции: попытки исчерпаны, используется fallback %v", fallback)
		return &fallback
	}

	g.log.Warn("Поиск позиции: подходящее место не найдено за %d попыток", gc.SiteAttempts)
	return nil
}

// publishGenerated отправляет событие о сгенерированной структуре
func (g *Generator) publishGenerated(ctx context.Context, st *Structure) {
	payload, err := json.Marshal(map[string]interface{}{
		"id":       st.ID,
		"kind":     st.Kind,
		"rooms":    len(st.Rooms),
		"spawners": len(st.Spawners),
		"bounds":   st.Bounds,
	})
	if err != nil {
		return
	}

	_ = eventbus.Publish(ctx, &eventbus.Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        "structure-generator",
		EventType:     eventbus.EventStructureGenerated,
		CorrelationID: st.ID,
		Priority:      5,
		Payload:       payload,
	})
}
