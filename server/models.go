package main

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered player.
type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:text;not null;uniqueIndex" json:"username"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Game represents an in-progress investigation. The suspects, weapons and
// locations columns hold JSON-encoded ordered card sequences. game_number is
// the external identifier; the schema does not make it unique, the save
// upsert keeps at most one live row per number.
type Game struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	GameNumber string    `gorm:"type:text;not null;index" json:"game_number"`
	UserID     *int64    `gorm:"index" json:"user_id,omitempty"`
	Suspects   string    `gorm:"type:text;not null" json:"suspects"`
	Weapons    string    `gorm:"type:text;not null" json:"weapons"`
	Locations  string    `gorm:"type:text;not null" json:"locations"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// GameHistory is the permanent record of a solved case. Rows are written once
// and never updated or deleted.
type GameHistory struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Suspect    string    `gorm:"type:text" json:"suspect"`
	Weapon     string    `gorm:"type:text" json:"weapon"`
	Location   string    `gorm:"type:text" json:"location"`
	Solved     int       `gorm:"default:0" json:"solved"`
	UserName   string    `gorm:"type:text" json:"user_name"`
	GameNumber string    `gorm:"type:text" json:"game_number"`
	UserID     *int64    `gorm:"index" json:"user_id,omitempty"`
	GameDate   time.Time `json:"game_date"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName keeps the original singular table name.
func (GameHistory) TableName() string {
	return "game_history"
}

// AutoMigrate runs the database migrations.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&User{}, &Game{}, &GameHistory{})
}
