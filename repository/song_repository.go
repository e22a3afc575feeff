package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"WaveFM/logger"
	"WaveFM/model"
)

// Sortable columns for search. Anything else must be rejected at the API
// boundary: the column name is interpolated into ORDER BY, placeholders
// cannot bind identifiers.
var sortableColumns = map[string]bool{
	"id":         true,
	"title":      true,
	"artist":     true,
	"play_count": true,
	"created_at": true,
}

// IsSortableColumn reports whether name may be used as a sort key.
func IsSortableColumn(name string) bool {
	return sortableColumns[name]
}

// SongRepository defines the interface for song data operations.
type SongRepository interface {
	CreateSong(song *model.Song) (int64, error)
	GetSongByID(id int64) (*model.Song, error)
	GetAllSongsByPlayCount() ([]*model.Song, error)
	SearchSongs(filter model.SongFilter) ([]*model.Song, int64, error)
	IncrementPlayCount(id int64) (int64, error)
}

// mysqlSongRepository implements SongRepository for MySQL. Writes of song
// metadata go through the admin pool; everything else uses the public pool.
type mysqlSongRepository struct {
	db      *sql.DB
	adminDB *sql.DB
}

// NewMySQLSongRepository creates a new instance of mysqlSongRepository.
func NewMySQLSongRepository(db, adminDB *sql.DB) SongRepository {
	return &mysqlSongRepository{db: db, adminDB: adminDB}
}

const songColumns = "id, title, artist, file_url, thumbnail_url, play_count, created_at"

func scanSong(scanner interface{ Scan(...interface{}) error }) (*model.Song, error) {
	song := &model.Song{}
	var thumbnail sql.NullString
	err := scanner.Scan(&song.ID, &song.Title, &song.Artist, &song.FileURL, &thumbnail, &song.PlayCount, &song.CreatedAt)
	if err != nil {
		return nil, err
	}
	if thumbnail.Valid {
		song.ThumbnailURL = &thumbnail.String
	}
	return song, nil
}

// CreateSong adds a new song to the database via the privileged tier.
func (r *mysqlSongRepository) CreateSong(song *model.Song) (int64, error) {
	query := `INSERT INTO songs (title, artist, file_url, thumbnail_url, play_count, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := r.adminDB.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateSong: %w", err)
	}
	defer stmt.Close()

	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now().UTC()
	}
	var thumbnail sql.NullString
	if song.ThumbnailURL != nil {
		thumbnail = sql.NullString{String: *song.ThumbnailURL, Valid: true}
	}

	res, err := stmt.Exec(song.Title, song.Artist, song.FileURL, thumbnail, song.PlayCount, song.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateSong: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateSong: %w", err)
	}
	logger.Info("song created", logger.Int64("songId", id), logger.String("title", song.Title))
	return id, nil
}

// GetSongByID retrieves a song by its ID. Returns nil when no song exists.
func (r *mysqlSongRepository) GetSongByID(id int64) (*model.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs WHERE id = ?`
	song, err := scanSong(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Song not found
		}
		return nil, fmt.Errorf("failed to scan song by ID %d: %w", id, err)
	}
	return song, nil
}

// GetAllSongsByPlayCount retrieves all songs, most played first.
func (r *mysqlSongRepository) GetAllSongsByPlayCount() ([]*model.Song, error) {
	query := `SELECT ` + songColumns + ` FROM songs ORDER BY play_count DESC, id DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan song in GetAllSongsByPlayCount: %w", err)
		}
		songs = append(songs, song)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllSongsByPlayCount: %w", err)
	}

	return songs, nil
}

// SearchSongs returns one page of songs matching the filter plus the total
// match count. The filter's SortBy must already be validated.
func (r *mysqlSongRepository) SearchSongs(filter model.SongFilter) ([]*model.Song, int64, error) {
	if !sortableColumns[filter.SortBy] {
		return nil, 0, fmt.Errorf("unsortable column %q", filter.SortBy)
	}

	where := "WHERE 1=1"
	args := []interface{}{}
	if filter.Artist != "" {
		where += " AND LOWER(artist) LIKE ?"
		args = append(args, "%"+strings.ToLower(filter.Artist)+"%")
	}
	if filter.Title != "" {
		where += " AND LOWER(title) LIKE ?"
		args = append(args, "%"+strings.ToLower(filter.Title)+"%")
	}

	var count int64
	countQuery := "SELECT COUNT(*) FROM songs " + where
	if err := r.db.QueryRow(countQuery, args...).Scan(&count); err != nil {
		return nil, 0, fmt.Errorf("failed to count songs: %w", err)
	}

	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}
	query := fmt.Sprintf("SELECT %s FROM songs %s ORDER BY %s %s, id DESC LIMIT ? OFFSET ?",
		songColumns, where, filter.SortBy, direction)
	rows, err := r.db.Query(query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search songs: %w", err)
	}
	defer rows.Close()

	songs := make([]*model.Song, 0)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan song in SearchSongs: %w", err)
		}
		songs = append(songs, song)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during rows iteration in SearchSongs: %w", err)
	}

	return songs, count, nil
}

// IncrementPlayCount bumps a song's play counter by exactly one in a single
// statement, then reads the new value back. Returns sql.ErrNoRows when the
// song does not exist.
func (r *mysqlSongRepository) IncrementPlayCount(id int64) (int64, error) {
	res, err := r.db.Exec(`UPDATE songs SET play_count = play_count + 1 WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("failed to increment play count for song %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected for song %d: %w", id, err)
	}
	if affected == 0 {
		return 0, sql.ErrNoRows
	}

	var newCount int64
	if err := r.db.QueryRow(`SELECT play_count FROM songs WHERE id = ?`, id).Scan(&newCount); err != nil {
		return 0, fmt.Errorf("failed to read play count for song %d: %w", id, err)
	}
	return newCount, nil
}
