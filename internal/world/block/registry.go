package block

// BlockID представляет идентификатор блока
type BlockID uint16

// Константы ID блоков
const (
	// Базовые типы блоков
	AirBlockID    BlockID = iota // 0
	StoneBlockID                 // 1
	BricksBlockID                // 2 - кладка стен камеры
	GravelBlockID                // 3 - осыпь в руинах
	DirtBlockID                  // 4

	// Декоративные блоки (начиная с 100)
	MossyBricksBlockID   BlockID = 100 // Замшелая кладка
	CrackedBricksBlockID BlockID = 101 // Треснувшая кладка

	// Интерактивные блоки (начиная с 200)
	ChestBlockID BlockID = 200 // Сундук

	// Специальные блоки (начиная с 1000)
	TrialSpawnerBlockID BlockID = 1000 // Спаунер испытания
)

// Def описывает свойства блока.
// Поведение блоков задаётся таблицей вариантов, а не иерархией типов:
// обработчики взаимодействий живут в пакетах structure и spawner.
type Def struct {
	ID         BlockID
	Name       string
	Solid      bool
	LightLevel int // 0..15, излучаемый свет
}

var registry = map[BlockID]Def{
	AirBlockID:           {ID: AirBlockID, Name: "air", Solid: false},
	StoneBlockID:         {ID: StoneBlockID, Name: "stone", Solid: true},
	BricksBlockID:        {ID: BricksBlockID, Name: "bricks", Solid: true},
	GravelBlockID:        {ID: GravelBlockID, Name: "gravel", Solid: true},
	DirtBlockID:          {ID: DirtBlockID, Name: "dirt", Solid: true},
	MossyBricksBlockID:   {ID: MossyBricksBlockID, Name: "mossy_bricks", Solid: true},
	CrackedBricksBlockID: {ID: CrackedBricksBlockID, Name: "cracked_bricks", Solid: true},
	ChestBlockID:         {ID: ChestBlockID, Name: "chest", Solid: true},
	TrialSpawnerBlockID:  {ID: TrialSpawnerBlockID, Name: "trial_spawner", Solid: true, LightLevel: 4},
}

// Get возвращает описание для указанного ID
func Get(id BlockID) (Def, bool) {
	def, exists := registry[id]
	return def, exists
}

// IsValidBlockID проверяет, является ли ID допустимым идентификатором блока
func IsValidBlockID(id BlockID) bool {
	_, exists := registry[id]
	return exists
}

// IsSolid возвращает true для твёрдых блоков; неизвестные ID считаются пустотой
func IsSolid(id BlockID) bool {
	def, exists := registry[id]
	return exists && def.Solid
}
