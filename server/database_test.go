package main

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use in-memory SQLite for testing with silent logger to avoid test output pollution
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func countGames(t *testing.T, db *gorm.DB) int64 {
	var count int64
	if err := db.Model(&Game{}).Count(&count).Error; err != nil {
		t.Fatalf("Failed to count games: %v", err)
	}

	return count
}

func TestInsertAndUpdateGame(t *testing.T) {
	db := setupTestDB(t)

	if err := insertGame(db, "7", `["Green"]`, `["Knife"]`, `["Library"]`); err != nil {
		t.Fatalf("Failed to insert game: %v", err)
	}

	if count := countGames(t, db); count != 1 {
		t.Fatalf("Expected 1 game, got %d", count)
	}

	if err := updateGame(db, "7", `["Scarlet"]`, `["Knife"]`, `["Library"]`); err != nil {
		t.Fatalf("Failed to update game: %v", err)
	}

	if count := countGames(t, db); count != 1 {
		t.Errorf("Expected update to keep 1 game, got %d", count)
	}

	game, err := getGameByNumber(db, "7")
	if err != nil {
		t.Fatalf("Failed to fetch game: %v", err)
	}

	if game.Suspects != `["Scarlet"]` {
		t.Errorf("Expected updated suspects, got %q", game.Suspects)
	}
}

func TestNextGameNumber(t *testing.T) {
	db := setupTestDB(t)

	next, err := nextGameNumber(db)
	if err != nil {
		t.Fatalf("Failed to compute next game number: %v", err)
	}

	if next != "1" {
		t.Errorf("Expected first game number to be 1, got %q", next)
	}

	if err := insertGame(db, "7", "[]", "[]", "[]"); err != nil {
		t.Fatalf("Failed to insert game: %v", err)
	}

	if err := insertGame(db, "12", "[]", "[]", "[]"); err != nil {
		t.Fatalf("Failed to insert game: %v", err)
	}

	next, err = nextGameNumber(db)
	if err != nil {
		t.Fatalf("Failed to compute next game number: %v", err)
	}

	if next != "13" {
		t.Errorf("Expected next game number 13, got %q", next)
	}
}

func TestDeleteGame(t *testing.T) {
	db := setupTestDB(t)

	if err := insertGame(db, "3", "[]", "[]", "[]"); err != nil {
		t.Fatalf("Failed to insert game: %v", err)
	}

	removed, err := deleteGame(db, "3")
	if err != nil {
		t.Fatalf("Failed to delete game: %v", err)
	}

	if removed != 1 {
		t.Errorf("Expected 1 row removed, got %d", removed)
	}

	removed, err = deleteGame(db, "nonexistent")
	if err != nil {
		t.Fatalf("Unexpected error deleting missing game: %v", err)
	}

	if removed != 0 {
		t.Errorf("Expected 0 rows removed, got %d", removed)
	}
}

func TestInsertSolvedCaseDefaults(t *testing.T) {
	db := setupTestDB(t)

	record := GameHistory{
		Suspect:    "Green",
		Weapon:     "Rope",
		Location:   "Study",
		Solved:     1,
		GameNumber: "4",
	}

	if err := insertSolvedCase(db, &record); err != nil {
		t.Fatalf("Failed to insert solved case: %v", err)
	}

	var stored GameHistory
	if err := db.Where("game_number = ?", "4").First(&stored).Error; err != nil {
		t.Fatalf("Solved case not found: %v", err)
	}

	if stored.UserName != "Detetive" {
		t.Errorf("Expected default detective name, got %q", stored.UserName)
	}

	if stored.GameDate.IsZero() {
		t.Error("Expected game date to be set")
	}

	if stored.Solved != 1 {
		t.Errorf("Expected solved=1, got %d", stored.Solved)
	}
}

func TestListSolvedCasesJoinsUsername(t *testing.T) {
	db := setupTestDB(t)

	if err := createUser(db, "sherlock", "hash"); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	user, err := getUserByUsername(db, "sherlock")
	if err != nil {
		t.Fatalf("Failed to fetch user: %v", err)
	}

	withUser := GameHistory{
		Suspect:  "Plum",
		Weapon:   "Wrench",
		Location: "Hall",
		Solved:   1,
		UserID:   &user.ID,
		GameDate: time.Now().Add(-time.Hour),
	}
	if err := insertSolvedCase(db, &withUser); err != nil {
		t.Fatalf("Failed to insert solved case: %v", err)
	}

	anonymous := GameHistory{
		Suspect:  "White",
		Weapon:   "Rope",
		Location: "Lounge",
		Solved:   1,
		GameDate: time.Now(),
	}
	if err := insertSolvedCase(db, &anonymous); err != nil {
		t.Fatalf("Failed to insert solved case: %v", err)
	}

	cases, err := listSolvedCases(db)
	if err != nil {
		t.Fatalf("Failed to list solved cases: %v", err)
	}

	if len(cases) != 2 {
		t.Fatalf("Expected 2 cases, got %d", len(cases))
	}

	// Most recent first
	if cases[0].Suspect != "White" {
		t.Errorf("Expected most recent case first, got %q", cases[0].Suspect)
	}

	if cases[0].Username != nil {
		t.Errorf("Expected no username for anonymous case, got %v", *cases[0].Username)
	}

	if cases[1].Username == nil || *cases[1].Username != "sherlock" {
		t.Errorf("Expected joined username sherlock, got %v", cases[1].Username)
	}
}

func TestListGamesOrdering(t *testing.T) {
	db := setupTestDB(t)

	older := Game{GameNumber: "1", Suspects: "[]", Weapons: "[]", Locations: "[]",
		CreatedAt: time.Now().Add(-2 * time.Hour), UpdatedAt: time.Now().Add(-2 * time.Hour)}
	newer := Game{GameNumber: "2", Suspects: "[]", Weapons: "[]", Locations: "[]",
		CreatedAt: time.Now().Add(-time.Hour), UpdatedAt: time.Now()}

	if err := db.Create(&older).Error; err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}

	if err := db.Create(&newer).Error; err != nil {
		t.Fatalf("Failed to create game: %v", err)
	}

	games, err := listGames(db)
	if err != nil {
		t.Fatalf("Failed to list games: %v", err)
	}

	if len(games) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(games))
	}

	if games[0].GameNumber != "2" {
		t.Errorf("Expected most recently updated game first, got %q", games[0].GameNumber)
	}
}
