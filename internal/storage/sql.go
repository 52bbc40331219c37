package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mohamedkhairy/stock-advisor/internal/config"
	"github.com/mohamedkhairy/stock-advisor/internal/models"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS analyses (
	id           TEXT PRIMARY KEY,
	symbol       TEXT NOT NULL,
	ts           BIGINT NOT NULL,
	decision     TEXT NOT NULL,
	strength     TEXT NOT NULL,
	score        INTEGER NOT NULL,
	reason       TEXT NOT NULL,
	indicators   TEXT NOT NULL,
	fundamentals TEXT NOT NULL,
	triggered    TEXT NOT NULL,
	scorecard    TEXT NOT NULL,
	overall      INTEGER NOT NULL,
	bars         INTEGER NOT NULL
)`

const indexSchema = `CREATE INDEX IF NOT EXISTS idx_analyses_symbol_ts ON analyses(symbol, ts)`

const selectColumns = `id, symbol, ts, decision, strength, score, reason, indicators, fundamentals, triggered, scorecard, overall, bars`

// SQLStorage implements AnalysisStorage over database/sql. Timestamps are
// stored as Unix nanoseconds so both dialects order and round-trip them alike.
type SQLStorage struct {
	db     *sql.DB
	driver string
}

// New opens the storage selected by cfg.Driver
func New(cfg config.DatabaseConfig) (*SQLStorage, error) {
	switch cfg.Driver {
	case "sqlite", "":
		return NewSQLiteStorage(cfg.SQLitePath)
	case "postgres":
		return NewPostgresStorage(cfg)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// NewSQLiteStorage opens (or creates) a SQLite database and runs migrations.
// Use ":memory:" for a throwaway database.
func NewSQLiteStorage(path string) (*SQLStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// single writer; also keeps ":memory:" on one connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("set WAL mode: %w", err)
		}
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &SQLStorage{db: db, driver: "sqlite"}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("SQLite analysis storage initialized", logger.String("path", path))
	return s, nil
}

// NewPostgresStorage connects to PostgreSQL and runs migrations
func NewPostgresStorage(dbConfig config.DatabaseConfig) (*SQLStorage, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.Database,
		dbConfig.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(dbConfig.MaxConnections)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &SQLStorage{db: db, driver: "postgres"}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("PostgreSQL analysis storage initialized",
		logger.String("host", dbConfig.Host),
		logger.Int("port", dbConfig.Port),
		logger.String("database", dbConfig.Database),
	)
	return s, nil
}

func (s *SQLStorage) migrate() error {
	for _, stmt := range []string{schema, indexSchema} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// rebind rewrites "?" placeholders to "$n" for PostgreSQL
func (s *SQLStorage) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Driver returns "sqlite" or "postgres"
func (s *SQLStorage) Driver() string {
	return s.driver
}

// Ping checks the database connection
func (s *SQLStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Save inserts a record, assigning a UUID when ID is empty
func (s *SQLStorage) Save(ctx context.Context, record *models.AnalysisRecord) error {
	start := time.Now()
	defer func() {
		storageLatency.WithLabelValues(s.driver, "save").Observe(time.Since(start).Seconds())
	}()

	if record == nil {
		return errors.New("record cannot be nil")
	}
	if err := record.Validate(); err != nil {
		storageWriteTotal.WithLabelValues(s.driver, "error").Inc()
		return fmt.Errorf("invalid record: %w", err)
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	cols, err := encodeRecord(record)
	if err != nil {
		storageWriteTotal.WithLabelValues(s.driver, "error").Inc()
		return err
	}

	query := s.rebind(`INSERT INTO analyses (` + selectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Symbol,
		record.Timestamp.UnixNano(),
		string(record.Decision),
		string(record.Strength),
		record.Score,
		record.Reason,
		cols.indicators,
		cols.fundamentals,
		cols.triggered,
		cols.scorecard,
		record.Overall,
		record.Bars,
	); err != nil {
		storageWriteTotal.WithLabelValues(s.driver, "error").Inc()
		return fmt.Errorf("failed to insert analysis: %w", err)
	}

	storageWriteTotal.WithLabelValues(s.driver, "success").Inc()
	return nil
}

// Get retrieves a single record by ID
func (s *SQLStorage) Get(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	start := time.Now()
	defer func() {
		storageLatency.WithLabelValues(s.driver, "get").Observe(time.Since(start).Seconds())
	}()

	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+selectColumns+` FROM analyses WHERE id = ?`), id)
	record, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis: %w", err)
	}
	return record, nil
}

// History returns records newest first, optionally for a single symbol
func (s *SQLStorage) History(ctx context.Context, filter HistoryFilter) ([]*models.AnalysisRecord, error) {
	start := time.Now()
	defer func() {
		storageLatency.WithLabelValues(s.driver, "history").Observe(time.Since(start).Seconds())
	}()

	query := `SELECT ` + selectColumns + ` FROM analyses WHERE 1=1`
	args := []interface{}{}

	if filter.Symbol != "" {
		query += " AND symbol = ?"
		args = append(args, filter.Symbol)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	query += " ORDER BY ts DESC, id DESC LIMIT ?"
	args = append(args, limit)

	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	records := []*models.AnalysisRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return records, nil
}

// Close closes the database connection
func (s *SQLStorage) Close() error {
	return s.db.Close()
}

type encodedColumns struct {
	indicators   string
	fundamentals string
	triggered    string
	scorecard    string
}

func encodeRecord(record *models.AnalysisRecord) (encodedColumns, error) {
	var out encodedColumns

	indicators := record.Indicators
	if indicators == nil {
		indicators = models.IndicatorSet{}
	}
	b, err := json.Marshal(indicators)
	if err != nil {
		return out, fmt.Errorf("failed to encode indicators: %w", err)
	}
	out.indicators = string(b)

	fundamentals := record.Fundamentals
	if fundamentals == nil {
		fundamentals = models.FundamentalSet{}
	}
	if b, err = json.Marshal(fundamentals); err != nil {
		return out, fmt.Errorf("failed to encode fundamentals: %w", err)
	}
	out.fundamentals = string(b)

	triggered := record.Triggered
	if triggered == nil {
		triggered = []models.TriggeredRule{}
	}
	if b, err = json.Marshal(triggered); err != nil {
		return out, fmt.Errorf("failed to encode triggered rules: %w", err)
	}
	out.triggered = string(b)

	scorecard := record.Scorecard
	if scorecard == nil {
		scorecard = map[string]int{}
	}
	if b, err = json.Marshal(scorecard); err != nil {
		return out, fmt.Errorf("failed to encode scorecard: %w", err)
	}
	out.scorecard = string(b)

	return out, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*models.AnalysisRecord, error) {
	var (
		record                                           models.AnalysisRecord
		ts                                               int64
		decision, strength                               string
		indicators, fundamentals, triggered, scorecardJS string
	)

	if err := row.Scan(
		&record.ID,
		&record.Symbol,
		&ts,
		&decision,
		&strength,
		&record.Score,
		&record.Reason,
		&indicators,
		&fundamentals,
		&triggered,
		&scorecardJS,
		&record.Overall,
		&record.Bars,
	); err != nil {
		return nil, err
	}

	record.Timestamp = time.Unix(0, ts).UTC()
	record.Decision = models.Decision(decision)
	record.Strength = models.Strength(strength)

	if err := json.Unmarshal([]byte(indicators), &record.Indicators); err != nil {
		logger.Warn("Failed to decode stored indicators",
			logger.ErrorField(err),
			logger.String("analysis_id", record.ID),
		)
	}
	if err := json.Unmarshal([]byte(fundamentals), &record.Fundamentals); err != nil {
		logger.Warn("Failed to decode stored fundamentals",
			logger.ErrorField(err),
			logger.String("analysis_id", record.ID),
		)
	}
	if err := json.Unmarshal([]byte(triggered), &record.Triggered); err != nil {
		logger.Warn("Failed to decode stored triggered rules",
			logger.ErrorField(err),
			logger.String("analysis_id", record.ID),
		)
	}
	if err := json.Unmarshal([]byte(scorecardJS), &record.Scorecard); err != nil {
		logger.Warn("Failed to decode stored scorecard",
			logger.ErrorField(err),
			logger.String("analysis_id", record.ID),
		)
	}

	return &record, nil
}
