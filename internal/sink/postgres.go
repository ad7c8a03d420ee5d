package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"companion-cli/internal/config"
	"companion-cli/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// itemRecord is the row shape of the shared items table.
type itemRecord struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	CaptureID string         `gorm:"type:text;not null;uniqueIndex"`
	Content   string         `gorm:"type:text;not null"`
	Status    string         `gorm:"type:text;not null;index:idx_items_user_status,priority:2"`
	Type      string         `gorm:"type:text;not null"`
	UserID    string         `gorm:"type:text;not null;index:idx_items_user_status,priority:1"`
	Metadata  datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null"`
}

func (itemRecord) TableName() string { return "items" }

func newItemRecord(it model.Item) (itemRecord, error) {
	meta, err := json.Marshal(it.Metadata)
	if err != nil {
		return itemRecord{}, err
	}
	return itemRecord{
		ID:        uuid.New(),
		CaptureID: it.ID,
		Content:   it.Content,
		Status:    string(it.Status),
		Type:      string(it.Kind),
		UserID:    it.OwnerID,
		Metadata:  datatypes.JSON(meta),
		CreatedAt: it.CreatedAt,
	}, nil
}

// Postgres inserts items through gorm.
type Postgres struct {
	db *gorm.DB
}

func gormLogger(log *zap.Logger) logger.Interface {
	return logger.New(
		zap.NewStdLog(log),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}

func OpenPostgres(ctx context.Context, cfg config.PostgresConfig, log *zap.Logger) (*Postgres, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, errors.New("postgres sink: missing dsn")
	}
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormLogger(log),
	})
	if err != nil {
		return nil, fmt.Errorf("postgres sink: connect: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One capture at a time; keep the pool small.
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		if err := db.WithContext(ctx).AutoMigrate(&itemRecord{}); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("postgres sink: migrate: %w", err)
		}
		log.Info("items table migrated")
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Submit(ctx context.Context, it model.Item) error {
	rec, err := newItemRecord(it)
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("postgres sink: insert: %w", err)
	}
	return nil
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
