package services

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"gorm.io/gorm"
)

// EvaluationRun is one row of evaluation history.
type EvaluationRun struct {
	ID            string `gorm:"primaryKey;size:36"`
	ModelLocation string
	ModelDigest   string `gorm:"size:64"`
	DataSource    string
	TextColumn    string
	LabelColumn   string
	Rows          int
	Accuracy      float64
	MacroF1       float64
	CreatedAt     time.Time `gorm:"index"`
}

// RunRecorder persists evaluation runs.
type RunRecorder interface {
	Record(ctx context.Context, run *EvaluationRun) error
}

// RunLister reads back recorded runs.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]EvaluationRun, error)
}

type HistoryStore struct {
	db *gorm.DB
}

// OpenHistory connects to a postgres:// or mysql:// DSN and migrates the
// history table.
func OpenHistory(dsn string) (*HistoryStore, error) {
	db, err := OpenGorm(dsn)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&EvaluationRun{}); err != nil {
		return nil, fmt.Errorf("migrate evaluation history: %w", err)
	}
	return &HistoryStore{db: db}, nil
}

func (h *HistoryStore) Record(ctx context.Context, run *EvaluationRun) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	if err := h.db.WithContext(ctx).Create(run).Error; err != nil {
		return fmt.Errorf("record evaluation run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (h *HistoryStore) Recent(ctx context.Context, limit int) ([]EvaluationRun, error) {
	var runs []EvaluationRun
	err := h.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("list evaluation runs: %w", err)
	}
	return runs, nil
}

// WriteRuns prints runs as a console table, one row per run.
func WriteRuns(w io.Writer, runs []EvaluationRun) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "When", "Model", "Rows", "Accuracy", "Macro F1"})
	table.SetAutoFormatHeaders(false)
	for _, run := range runs {
		table.Append([]string{
			run.ID,
			run.CreatedAt.UTC().Format(time.DateTime),
			shortDigest(run.ModelDigest),
			strconv.Itoa(run.Rows),
			fmt.Sprintf("%.3f", run.Accuracy),
			fmt.Sprintf("%.3f", run.MacroF1),
		})
	}
	table.Render()
}

func shortDigest(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}

func (h *HistoryStore) Close() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
