package main

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/MarlonCdaCunha/detetive"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"moul.io/zapgorm2"
)

func getDB(cfg *Config) (*gorm.DB, error) {
	gormLogger := zapgorm2.New(log.Desugar())

	config := &gorm.Config{
		Logger: gormLogger.LogMode(logger.Warn),
	}

	var dialector gorm.Dialector
	if cfg.DatabaseURL != "" {
		dialector = postgres.Open(cfg.DatabaseURL)
	} else {
		dialector = sqlite.Open(cfg.DBPath)
	}

	db, err := gorm.Open(dialector, config)
	if err != nil {
		return nil, err
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func getUserByUsername(db *gorm.DB, username string) (*User, error) {
	var user User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}

	return &user, nil
}

func createUser(db *gorm.DB, username, password string) error {
	user := User{
		Username: username,
		Password: password,
	}

	return db.Create(&user).Error
}

func getGameByNumber(db *gorm.DB, gameNumber string) (*Game, error) {
	var game Game
	if err := db.Where("game_number = ?", gameNumber).First(&game).Error; err != nil {
		return nil, err
	}

	return &game, nil
}

// nextGameNumber returns max(game_number)+1 across all saved games, treating
// the stored text as a number, or "1" when no games exist.
func nextGameNumber(db *gorm.DB) (string, error) {
	var max sql.NullInt64
	err := db.Model(&Game{}).
		Select("MAX(CAST(game_number AS INTEGER))").
		Scan(&max).Error
	if err != nil {
		return "", err
	}

	next := int64(1)
	if max.Valid {
		next = max.Int64 + 1
	}

	return strconv.FormatInt(next, 10), nil
}

func insertGame(db *gorm.DB, gameNumber, suspects, weapons, locations string) error {
	game := Game{
		GameNumber: gameNumber,
		Suspects:   suspects,
		Weapons:    weapons,
		Locations:  locations,
	}

	return db.Create(&game).Error
}

func updateGame(db *gorm.DB, gameNumber, suspects, weapons, locations string) error {
	return db.Model(&Game{}).Where("game_number = ?", gameNumber).Updates(map[string]interface{}{
		"suspects":  suspects,
		"weapons":   weapons,
		"locations": locations,
	}).Error
}

func deleteGame(db *gorm.DB, gameNumber string) (int64, error) {
	result := db.Where("game_number = ?", gameNumber).Delete(&Game{})
	return result.RowsAffected, result.Error
}

func listGames(db *gorm.DB) ([]Game, error) {
	var games []Game
	if err := db.Order("updated_at DESC").Find(&games).Error; err != nil {
		return nil, err
	}

	return games, nil
}

func insertSolvedCase(db *gorm.DB, record *GameHistory) error {
	if record.UserName == "" {
		record.UserName = detetive.DefaultDetective
	}

	if record.GameDate.IsZero() {
		record.GameDate = time.Now()
	}

	return db.Create(record).Error
}

// SolvedCase is a game_history row joined with the registered username of the
// solver, when one exists.
type SolvedCase struct {
	ID         int64     `json:"id"`
	Suspect    string    `json:"suspect"`
	Weapon     string    `json:"weapon"`
	Location   string    `json:"location"`
	Solved     int       `json:"solved"`
	UserName   string    `json:"user_name"`
	GameNumber string    `json:"game_number"`
	UserID     *int64    `json:"user_id,omitempty"`
	GameDate   time.Time `json:"game_date"`
	Username   *string   `json:"username,omitempty"`
}

func listSolvedCases(db *gorm.DB) ([]SolvedCase, error) {
	var cases []SolvedCase
	err := db.Table("game_history").
		Select("game_history.*, users.username").
		Joins("LEFT JOIN users ON game_history.user_id = users.id").
		Order("game_date DESC").
		Scan(&cases).Error
	if err != nil {
		return nil, err
	}

	return cases, nil
}
