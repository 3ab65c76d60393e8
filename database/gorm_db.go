package database

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jaliph/qrrapido/models"
	"github.com/jaliph/qrrapido/utils"
)

// GormDB represents the GORM database connection
type GormDB struct {
	db *gorm.DB
}

// MSSQLDSN builds the sqlserver connection string.
func MSSQLDSN(server, database, username, password string) string {
	return fmt.Sprintf("sqlserver://%s:%s@%s?database=%s", username, password, server, database)
}

// NewGormDB creates a new GORM database connection to the MSSQL mirror
func NewGormDB(server, database, username, password string) (*GormDB, error) {
	db, err := gorm.Open(sqlserver.Open(MSSQLDSN(server, database, username, password)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MSSQL: %w", err)
	}

	gormDB := &GormDB{db: db}

	if err := gormDB.migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	utils.L().Info("GORM database connected successfully", "server", server, "database", database)
	return gormDB, nil
}

// migrate runs database migrations
func (gdb *GormDB) migrate() error {
	return gdb.db.AutoMigrate(&models.Generation{})
}

// RecordGeneration stores a generation record
func (gdb *GormDB) RecordGeneration(g *models.Generation) error {
	if err := gdb.db.Create(g).Error; err != nil {
		return fmt.Errorf("failed to store generation: %w", err)
	}
	return nil
}

// RecentGenerations retrieves recent generations, newest first
func (gdb *GormDB) RecentGenerations(limit int) ([]models.Generation, error) {
	generations := []models.Generation{}
	result := gdb.db.Order("created_at DESC").Limit(limit).Find(&generations)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to get recent generations: %w", result.Error)
	}
	return generations, nil
}

// Stats retrieves generation statistics
func (gdb *GormDB) Stats() (*models.GenerationStats, error) {
	stats := &models.GenerationStats{ByContentType: map[string]int64{}}

	if err := gdb.db.Model(&models.Generation{}).Count(&stats.TotalGenerations).Error; err != nil {
		return nil, fmt.Errorf("failed to count total generations: %w", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	if err := gdb.db.Model(&models.Generation{}).Where("created_at >= ?", today).Count(&stats.GenerationsToday).Error; err != nil {
		return nil, fmt.Errorf("failed to count today's generations: %w", err)
	}

	var rows []struct {
		ContentType string
		Total       int64
	}
	if err := gdb.db.Model(&models.Generation{}).Select("content_type, COUNT(*) AS total").Group("content_type").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count generations by type: %w", err)
	}
	for _, r := range rows {
		stats.ByContentType[r.ContentType] = r.Total
	}

	return stats, nil
}

// Close closes the database connection
func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
