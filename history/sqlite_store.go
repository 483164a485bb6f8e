package history

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/campusrag/campusrag/types"
)

// turnRow is the GORM model backing the SQL history store.
type turnRow struct {
	ID       uint      `gorm:"primaryKey"`
	UserID   string    `gorm:"index;size:128"`
	Question string    `gorm:"type:text"`
	Answer   string    `gorm:"type:text"`
	AskedAt  time.Time `gorm:"index"`
}

func (turnRow) TableName() string { return "history_turns" }

// SQLStore persists turns in SQLite via GORM.
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLStore opens (or creates) the SQLite database at dsn and
// migrates the schema.
func NewSQLStore(dsn string, logger *zap.Logger) (*SQLStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, types.NewError(types.ErrServiceUnavailable, "failed to open history database").WithCause(err)
	}

	if err := db.AutoMigrate(&turnRow{}); err != nil {
		return nil, types.NewError(types.ErrServiceUnavailable, "failed to migrate history schema").WithCause(err)
	}

	return &SQLStore{
		db:     db,
		logger: logger.With(zap.String("component", "history_sql")),
	}, nil
}

func (s *SQLStore) Append(ctx context.Context, userID string, turn Turn) error {
	if turn.AskedAt.IsZero() {
		turn.AskedAt = time.Now().UTC()
	}

	row := turnRow{
		UserID:   userID,
		Question: turn.Question,
		Answer:   turn.Answer,
		AskedAt:  turn.AskedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to append turn").WithCause(err)
	}
	return nil
}

func (s *SQLStore) History(ctx context.Context, userID string) ([]Turn, error) {
	var rows []turnRow
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, types.NewError(types.ErrServiceUnavailable, "failed to read history").WithCause(err)
	}

	turns := make([]Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, Turn{
			Question: row.Question,
			Answer:   row.Answer,
			AskedAt:  row.AskedAt,
		})
	}
	return turns, nil
}

func (s *SQLStore) Clear(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&turnRow{}).Error
	if err != nil {
		return types.NewError(types.ErrHistoryWriteFailure, "failed to clear history").WithCause(err)
	}
	return nil
}

var _ Store = (*SQLStore)(nil)
