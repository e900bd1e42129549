package services

import (
	"testing"

	"communa/tribune/internal/models/entities"
)

var testLevelTable = []entities.Level{
	{Level: 1, Name: "Newbie", MinPoints: 0, MaxPoints: 9},
	{Level: 2, Name: "Pro", MinPoints: 10, MaxPoints: 29},
	{Level: 3, Name: "Elite", MinPoints: 30, MaxPoints: -1},
}

func TestLevelFor(t *testing.T) {
	cases := []struct {
		points int
		want   int
	}{
		{0, 1},
		{9, 1},
		{10, 2},
		{29, 2},
		{30, 3},
		{5000, 3},
		{-3, 1}, // below any range falls back to the lowest level
	}

	for _, tc := range cases {
		if got := LevelFor(tc.points, testLevelTable); got.Level != tc.want {
			t.Fatalf("LevelFor(%d) = level %d, want %d", tc.points, got.Level, tc.want)
		}
	}
}

func TestLevelFor_UnsortedTable(t *testing.T) {
	shuffled := []entities.Level{testLevelTable[2], testLevelTable[0], testLevelTable[1]}
	if got := LevelFor(15, shuffled); got.Level != 2 {
		t.Fatalf("LevelFor must sort the table, got level %d", got.Level)
	}
}

func TestCheckLevelUp(t *testing.T) {
	change := CheckLevelUp(9, 10, testLevelTable)
	if change == nil {
		t.Fatal("expected a level up from 9 to 10 points")
	}
	if change.OldLevel.Level != 1 || change.NewLevel.Level != 2 {
		t.Fatalf("unexpected transition %d -> %d", change.OldLevel.Level, change.NewLevel.Level)
	}

	if change := CheckLevelUp(10, 15, testLevelTable); change != nil {
		t.Fatalf("expected no level up from 10 to 15 points, got %+v", change)
	}

	if change := CheckLevelUp(30, 10, testLevelTable); change != nil {
		t.Fatalf("a points decrease must never report a level up, got %+v", change)
	}
}

func TestLevelFor_EmptyTableUsesDefault(t *testing.T) {
	got := LevelFor(0, nil)
	if got.Level != 1 {
		t.Fatalf("expected default level 1, got %d", got.Level)
	}
}
