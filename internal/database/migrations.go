package database

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
)

// The document tables keep every field nullable: rows written before a field
// existed must still load, and the repositories fill in the defaults.

type userDocument struct {
	ID       string  `gorm:"primaryKey;type:varchar(36)"`
	Name     *string `gorm:"column:name;type:varchar(255);index:idx_users_name"`
	Password *string `gorm:"column:password;type:varchar(255)"`
}

func (userDocument) TableName() string { return "users" }

type taskDocument struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)"`
	Title       *string    `gorm:"column:title;type:text"`
	Description *string    `gorm:"column:description;type:text"`
	Data        *time.Time `gorm:"column:data"`
	UsuarioID   *string    `gorm:"column:usuarioId;type:varchar(36);index:idx_tasks_usuario_id"`
	Status      *int       `gorm:"column:status"`
}

func (taskDocument) TableName() string { return "tasks" }

// Migrate creates or updates the users and tasks tables.
func Migrate(db *gorm.DB) error {
	slog.Info("running database migrations")
	if err := db.AutoMigrate(&userDocument{}, &taskDocument{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("database migrations completed")
	return nil
}
