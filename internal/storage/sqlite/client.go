package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/productlens/backend/internal/storage/models"
	"github.com/productlens/backend/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	if err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	_, err = db.Exec("PRAGMA journal_mode = WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		parent_id TEXT,
		level INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (parent_id) REFERENCES categories(id)
	);
	CREATE INDEX IF NOT EXISTS idx_categories_parent ON categories(parent_id);
	CREATE INDEX IF NOT EXISTS idx_categories_level ON categories(level);

	CREATE TABLE IF NOT EXISTS tags (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		slug TEXT NOT NULL UNIQUE,
		type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tags_type ON tags(type);

	CREATE TABLE IF NOT EXISTS extraction_history (
		id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		host TEXT,
		title TEXT,
		brand TEXT,
		price TEXT,
		image_count INTEGER DEFAULT 0,
		primary_category TEXT,
		gender TEXT,
		confidence REAL,
		latency_ms INTEGER,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_extractions_host ON extraction_history(host);
	CREATE INDEX IF NOT EXISTS idx_extractions_created ON extraction_history(created_at);
	`

	_, err := c.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Info("SQLite schema initialized")
	return nil
}

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT id, name, slug, parent_id, level FROM categories ORDER BY level, name`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var cat models.Category
		var parentID sql.NullString

		err := rows.Scan(&cat.ID, &cat.Name, &cat.Slug, &parentID, &cat.Level)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		if parentID.Valid {
			cat.ParentID = &parentID.String
		}
		categories = append(categories, cat)
	}

	return categories, rows.Err()
}

func (c *Client) ListTags(ctx context.Context) ([]models.Tag, error) {
	query := `SELECT id, name, slug, type FROM tags ORDER BY name`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []models.Tag
	for rows.Next() {
		var tag models.Tag
		err := rows.Scan(&tag.ID, &tag.Name, &tag.Slug, &tag.Type)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		tags = append(tags, tag)
	}

	return tags, rows.Err()
}

func (c *Client) InsertCategory(cat *models.Category) error {
	query := `INSERT OR IGNORE INTO categories (id, name, slug, parent_id, level) VALUES (?, ?, ?, ?, ?)`

	var parentID interface{}
	if cat.ParentID != nil {
		parentID = *cat.ParentID
	}

	_, err := c.db.Exec(query, cat.ID, cat.Name, cat.Slug, parentID, cat.Level)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}

	return nil
}

func (c *Client) InsertTag(tag *models.Tag) error {
	query := `INSERT OR IGNORE INTO tags (id, name, slug, type) VALUES (?, ?, ?, ?)`

	_, err := c.db.Exec(query, tag.ID, tag.Name, tag.Slug, tag.Type)
	if err != nil {
		return fmt.Errorf("failed to insert tag: %w", err)
	}

	return nil
}

func (c *Client) CountTaxonomy(ctx context.Context) (categories int, tags int, err error) {
	err = c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&categories)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	err = c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&tags)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count tags: %w", err)
	}

	return categories, tags, nil
}

func (c *Client) InsertExtractionRecord(record *models.ExtractionRecord) error {
	query := `
		INSERT INTO extraction_history (id, url, host, title, brand, price, image_count,
			primary_category, gender, confidence, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := c.db.Exec(
		query,
		record.ID,
		record.URL,
		record.Host,
		record.Title,
		record.Brand,
		record.Price,
		record.ImageCount,
		record.PrimaryCategory,
		record.Gender,
		record.Confidence,
		record.LatencyMS,
		record.CreatedAt.Unix(),
	)

	if err != nil {
		return fmt.Errorf("failed to insert extraction record: %w", err)
	}

	logger.Info("Extraction recorded",
		zap.String("extraction_id", record.ID),
		zap.String("url", record.URL),
		zap.Float64("confidence", record.Confidence),
	)

	return nil
}

func (c *Client) GetExtractionHistory(ctx context.Context, host string, limit int) ([]models.ExtractionRecord, error) {
	query := `
		SELECT id, url, host, title, brand, price, image_count, primary_category, gender, confidence, latency_ms, created_at
		FROM extraction_history
		WHERE (? = '' OR host = ?)
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := c.db.QueryContext(ctx, query, host, host, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction history: %w", err)
	}
	defer rows.Close()

	var records []models.ExtractionRecord
	for rows.Next() {
		var r models.ExtractionRecord
		var createdAt int64

		err := rows.Scan(&r.ID, &r.URL, &r.Host, &r.Title, &r.Brand, &r.Price, &r.ImageCount,
			&r.PrimaryCategory, &r.Gender, &r.Confidence, &r.LatencyMS, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		r.CreatedAt = time.Unix(createdAt, 0)
		records = append(records, r)
	}

	return records, rows.Err()
}
