package repository

import (
	"context"

	"animeschedule/internal/microservices/http-api/models"
	"animeschedule/internal/shared"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnimeRepository is the Persistence Store for indexed anime.
type AnimeRepository interface {
	ListIndexedAnime(ctx context.Context) ([]models.IndexedAnime, error)
	ListByStatus(ctx context.Context, status *shared.AiringStatus) ([]models.IndexedAnime, error)
	FindByID(ctx context.Context, id int64) (*models.IndexedAnime, error)
	FindByMalID(ctx context.Context, malID int) (*models.IndexedAnime, error)
	// UpsertIndexedAnime writes new rows and overwrites updated ones,
	// returning the number of rows written.
	UpsertIndexedAnime(ctx context.Context, inserts, updates []models.IndexedAnime) (int64, error)
	DeleteFinishedAiring(ctx context.Context) (int64, error)
	// Transaction runs fn against a repository bound to one transaction.
	Transaction(ctx context.Context, fn func(tx AnimeRepository) error) error
}

type animeRepository struct {
	db *gorm.DB
}

func NewAnimeRepository(db *gorm.DB) AnimeRepository {
	return &animeRepository{db: db}
}

func (r *animeRepository) ListIndexedAnime(ctx context.Context) ([]models.IndexedAnime, error) {
	var anime []models.IndexedAnime
	if err := r.db.WithContext(ctx).Order("mal_id").Find(&anime).Error; err != nil {
		return nil, translateError("list indexed anime", err)
	}
	return anime, nil
}

func (r *animeRepository) ListByStatus(ctx context.Context, status *shared.AiringStatus) ([]models.IndexedAnime, error) {
	q := r.db.WithContext(ctx).Order("title").Order("id")
	if status != nil {
		q = q.Where("status = ?", *status)
	}

	var anime []models.IndexedAnime
	if err := q.Find(&anime).Error; err != nil {
		return nil, translateError("list anime by status", err)
	}
	return anime, nil
}

func (r *animeRepository) FindByID(ctx context.Context, id int64) (*models.IndexedAnime, error) {
	var anime models.IndexedAnime
	if err := r.db.WithContext(ctx).First(&anime, "id = ?", id).Error; err != nil {
		return nil, translateError("find anime", err)
	}
	return &anime, nil
}

func (r *animeRepository) FindByMalID(ctx context.Context, malID int) (*models.IndexedAnime, error) {
	var anime models.IndexedAnime
	if err := r.db.WithContext(ctx).Where("mal_id = ?", malID).First(&anime).Error; err != nil {
		return nil, translateError("find anime by mal_id", err)
	}
	return &anime, nil
}

func (r *animeRepository) UpsertIndexedAnime(ctx context.Context, inserts, updates []models.IndexedAnime) (int64, error) {
	db := r.db.WithContext(ctx)
	var written int64

	if len(inserts) > 0 {
		res := db.CreateInBatches(&inserts, 200)
		if res.Error != nil {
			return 0, translateError("insert indexed anime", res.Error)
		}
		written += res.RowsAffected
	}

	if len(updates) > 0 {
		res := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"mal_id", "title", "image_url", "status", "total_episodes",
				"release_instant", "broadcast_weekday", "updated_at",
			}),
		}).CreateInBatches(&updates, 200)
		if res.Error != nil {
			return 0, translateError("update indexed anime", res.Error)
		}
		written += res.RowsAffected
	}

	return written, nil
}

func (r *animeRepository) DeleteFinishedAiring(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ?", shared.StatusFinishedAiring).
		Delete(&models.IndexedAnime{})
	if res.Error != nil {
		return 0, translateError("delete finished anime", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *animeRepository) Transaction(ctx context.Context, fn func(tx AnimeRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&animeRepository{db: tx})
	})
}
