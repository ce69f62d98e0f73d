package calibration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/bodgit/himawari/metadata"
	_ "github.com/mattn/go-sqlite3"
)

var tableRegexp = regexp.MustCompile(`(?i)^(vis|ext|sir|tir)\.([0-9]{2})`)

// DB is a Provider backed by an SQLite database of calibration points
type DB struct {
	db *sql.DB
}

// NewDB opens or creates the database in file
func NewDB(file string) (*DB, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS channel (id INTEGER PRIMARY KEY NOT NULL, band TEXT NOT NULL, number INTEGER NOT NULL, UNIQUE(band, number))"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS point (channel_id INTEGER NOT NULL, count INTEGER NOT NULL, value REAL NOT NULL, UNIQUE(channel_id, count), FOREIGN KEY(channel_id) REFERENCES channel(id) ON DELETE CASCADE)"); err != nil {
		db.Close()
		return nil, err
	}

	return &DB{
		db: db,
	}, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.db.Close()
}

// ParseChannel derives the channel from the name of a calibration table
// file, such as "tir.01" or "tir.01.txt"
func ParseChannel(file string) (Channel, error) {
	m := tableRegexp.FindStringSubmatch(filepath.Base(file))
	if m == nil {
		return Channel{}, fmt.Errorf("%w: %q", metadata.ErrInvalidFormat, filepath.Base(file))
	}

	band, err := metadata.ParseBand(m[1])
	if err != nil {
		return Channel{}, err
	}
	n, _ := strconv.Atoi(m[2])
	if err := band.CheckChannel(n); err != nil {
		return Channel{}, err
	}

	return Channel{band, n}, nil
}

// ImportFile reads a calibration text table from file, the channel is taken
// from the filename. Any existing points for the channel are replaced.
func (db *DB) ImportFile(file string) (Channel, error) {
	c, err := ParseChannel(file)
	if err != nil {
		return Channel{}, err
	}

	f, err := os.Open(file)
	if err != nil {
		return Channel{}, err
	}
	defer f.Close()

	points, err := ReadPoints(f)
	if err != nil {
		return Channel{}, fmt.Errorf("%s: %w", file, err)
	}

	return c, db.Import(c, points)
}

// Import replaces the points for the channel
func (db *DB) Import(c Channel, points []Point) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.Exec("DELETE FROM channel WHERE band = ? AND number = ?", string(c.Band), c.Number); err != nil {
		return err
	}

	result, err := tx.Exec("INSERT INTO channel (band, number) VALUES (?, ?)", string(c.Band), c.Number)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare("INSERT OR REPLACE INTO point (channel_id, count, value) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		if _, err := stmt.Exec(id, p.Count, p.Value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Channels lists every channel in the database
func (db *DB) Channels() ([]Channel, error) {
	rows, err := db.db.Query("SELECT band, number FROM channel ORDER BY band, number")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []Channel
	for rows.Next() {
		var band string
		var c Channel
		if err := rows.Scan(&band, &c.Number); err != nil {
			return nil, err
		}
		c.Band = metadata.Band(band)
		channels = append(channels, c)
	}

	return channels, rows.Err()
}

// Table implements the Provider interface
func (db *DB) Table(band metadata.Band, number int) (Table, error) {
	var id int64
	switch err := db.db.QueryRow("SELECT id FROM channel WHERE band = ? AND number = ?", string(band), number).Scan(&id); err {
	case sql.ErrNoRows:
		return nil, fmt.Errorf("%w: no calibration for %s%02d", metadata.ErrUnsupportedBand, band, number)
	case nil:
	default:
		return nil, err
	}

	rows, err := db.db.Query("SELECT count, value FROM point WHERE channel_id = ? ORDER BY count", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []Point
	for rows.Next() {
		var p Point
		if err := rows.Scan(&p.Count, &p.Value); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return Expand(points)
}
