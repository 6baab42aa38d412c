package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/sheetstore/internal/domain"
)

// SessionRepo guarda el NavState como jsonb. Con idle > 0 una sesión sin
// actividad vence al leerla, aunque el janitor todavía no la haya borrado.
type SessionRepo struct {
	db   *gorm.DB
	idle time.Duration
	now  func() time.Time
}

var _ domain.SessionStore = (*SessionRepo)(nil)

func NewSessionRepo(db *gorm.DB, idle time.Duration) *SessionRepo {
	return &SessionRepo{db: db, idle: idle, now: func() time.Time { return time.Now().UTC() }}
}

func (r *SessionRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Session{})
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*domain.NavState, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("session id vacío")
	}
	var s domain.Session
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if r.idle > 0 && r.now().Sub(s.UpdatedAt) > r.idle {
		return nil, domain.ErrNotFound
	}
	st := s.State
	return &st, nil
}

// Save hace upsert de la sesión completa.
func (r *SessionRepo) Save(ctx context.Context, id string, st *domain.NavState) error {
	if st == nil {
		return errors.New("state nil")
	}
	row := domain.Session{ID: id, State: *st, UpdatedAt: r.now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
	}).Create(&row).Error
}

func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&domain.Session{}, "id = ?", id).Error
}

// Purge borra las sesiones sin actividad desde before.
func (r *SessionRepo) Purge(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("updated_at < ?", before.UTC()).Delete(&domain.Session{})
	return res.RowsAffected, res.Error
}
