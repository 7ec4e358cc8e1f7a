package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"Blockbuster/db"
	"Blockbuster/model"

	"github.com/google/uuid"
)

// EntryRepository defines data operations for library entries.
type EntryRepository interface {
	CreateEntry(entry *model.LibraryEntry) (string, error)
	GetEntryByID(id string) (*model.LibraryEntry, error)
	GetAllEntries() ([]*model.LibraryEntry, error)
	UpdateEntry(entry *model.LibraryEntry) error
	UpdateEntryCoverArtPath(id, coverPath string) error
	DeleteEntry(id string) error
}

// mysqlEntryRepository implements EntryRepository for MySQL.
type mysqlEntryRepository struct {
	DB *sql.DB
}

// NewMySQLEntryRepository creates a new instance of mysqlEntryRepository.
func NewMySQLEntryRepository() EntryRepository {
	return &mysqlEntryRepository{DB: db.DB}
}

const entryColumns = `id, name, channel_id, content_id, media_type, title, metadata, cover_art_path, state, created_at, updated_at`

// CreateEntry adds a new entry, generating its UUID when absent, and returns
// the id.
func (r *mysqlEntryRepository) CreateEntry(entry *model.LibraryEntry) (string, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	metadata, err := json.Marshal(entry.Content.Metadata)
	if err != nil {
		return "", fmt.Errorf("failed to marshal entry metadata: %w", err)
	}

	query := `INSERT INTO entries (id, name, channel_id, content_id, media_type, title, metadata, cover_art_path, state, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`
	now := time.Now()
	_, err = r.DB.Exec(query, entry.ID, entry.Name, entry.Content.ChannelID, entry.Content.ContentID,
		entry.Content.MediaType, entry.Content.Title, metadata, entry.CoverArtPath, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to execute CreateEntry: %w", err)
	}
	return entry.ID, nil
}

func scanEntry(scanner interface{ Scan(...interface{}) error }) (*model.LibraryEntry, error) {
	entry := &model.LibraryEntry{}
	var metadata []byte
	var mediaType, title, coverPath sql.NullString
	err := scanner.Scan(&entry.ID, &entry.Name, &entry.Content.ChannelID, &entry.Content.ContentID,
		&mediaType, &title, &metadata, &coverPath, &entry.State, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, err
	}
	entry.Content.MediaType = mediaType.String
	entry.Content.Title = title.String
	entry.CoverArtPath = coverPath.String
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &entry.Content.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata for entry %s: %w", entry.ID, err)
		}
	}
	return entry, nil
}

// GetEntryByID retrieves an entry by UUID. Missing entries return (nil, nil).
func (r *mysqlEntryRepository) GetEntryByID(id string) (*model.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = ? AND state = 1`
	entry, err := scanEntry(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan entry by ID %s: %w", id, err)
	}
	return entry, nil
}

// GetAllEntries retrieves all live entries, newest first.
func (r *mysqlEntryRepository) GetAllEntries() ([]*model.LibraryEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE state = 1 ORDER BY created_at DESC`
	rows, err := r.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*model.LibraryEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry in GetAllEntries: %w", err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllEntries: %w", err)
	}
	return entries, nil
}

// UpdateEntry updates the mutable fields of an entry.
func (r *mysqlEntryRepository) UpdateEntry(entry *model.LibraryEntry) error {
	metadata, err := json.Marshal(entry.Content.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal entry metadata: %w", err)
	}
	query := `UPDATE entries SET name = ?, channel_id = ?, content_id = ?, media_type = ?, title = ?, metadata = ?, updated_at = ?
	           WHERE id = ? AND state = 1`
	res, err := r.DB.Exec(query, entry.Name, entry.Content.ChannelID, entry.Content.ContentID,
		entry.Content.MediaType, entry.Content.Title, metadata, time.Now(), entry.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateEntry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateEntryCoverArtPath stores the object path of an uploaded cover.
func (r *mysqlEntryRepository) UpdateEntryCoverArtPath(id, coverPath string) error {
	query := `UPDATE entries SET cover_art_path = ?, updated_at = ? WHERE id = ? AND state = 1`
	if _, err := r.DB.Exec(query, coverPath, time.Now(), id); err != nil {
		return fmt.Errorf("failed to update cover art path for entry %s: %w", id, err)
	}
	return nil
}

// DeleteEntry soft-deletes an entry.
func (r *mysqlEntryRepository) DeleteEntry(id string) error {
	query := `UPDATE entries SET state = 0, updated_at = ? WHERE id = ? AND state = 1`
	res, err := r.DB.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteEntry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
