package entities

// Level is one range of the leveling table. MaxPoints < 0 marks an
// unbounded top range.
type Level struct {
	Level     int    `json:"level"`
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
	MaxPoints int    `json:"maxPoints"`
	Color     string `json:"color"`
}

// Contains reports whether points falls inside this level's range.
func (l Level) Contains(points int) bool {
	if points < l.MinPoints {
		return false
	}
	return l.MaxPoints < 0 || points <= l.MaxPoints
}

// DefaultLevelTable is used for groups without a configured table.
// Ranges are contiguous and non-overlapping; level 1 is the fallback.
var DefaultLevelTable = []Level{
	{Level: 1, Name: "Novato", MinPoints: 0, MaxPoints: 9, Color: "#9E9E9E"},
	{Level: 2, Name: "Membro", MinPoints: 10, MaxPoints: 29, Color: "#4CAF50"},
	{Level: 3, Name: "Ativo", MinPoints: 30, MaxPoints: 59, Color: "#2196F3"},
	{Level: 4, Name: "Veterano", MinPoints: 60, MaxPoints: 119, Color: "#9C27B0"},
	{Level: 5, Name: "Lenda", MinPoints: 120, MaxPoints: -1, Color: "#FFC107"},
}
