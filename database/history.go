package database

import "github.com/jaliph/qrrapido/models"

// History is where generations are recorded. Both the local SQLite store and
// the MSSQL mirror implement it.
type History interface {
	RecordGeneration(g *models.Generation) error
	RecentGenerations(limit int) ([]models.Generation, error)
	Stats() (*models.GenerationStats, error)
}

var (
	_ History = (*Database)(nil)
	_ History = (*GormDB)(nil)
)
