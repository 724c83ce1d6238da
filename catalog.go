package uwgfx

import (
	"crypto/sha1"
	"database/sql"
	"fmt"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	if encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression)); err != nil {
		panic(err)
	}
	if decoder, err = zstd.NewReader(nil); err != nil {
		panic(err)
	}
}

// Asset kinds
const (
	KindGR   = "gr"
	KindTR   = "tr"
	KindCrit = "crit"
	KindFont = "font"
)

// Image is a catalog entry for one decoded image.
type Image struct {
	Source string
	Kind   string
	Index  int
	Width  int
	Height int
	// Aux is the auxiliary palette used, if any
	Aux  sql.NullInt64
	SHA1 string
	// PixelsID identifies the stored pixel data, see Catalog.Pixels
	PixelsID int64
}

// Catalog records every decoded image in an SQLite database. Identical
// pixel data is only stored once.
type Catalog struct {
	db *sql.DB
}

// NewCatalog opens or creates the catalog database in file.
func NewCatalog(file string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	// Serialise writes from the extraction workers
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		"CREATE TABLE IF NOT EXISTS source (id INTEGER PRIMARY KEY NOT NULL, path TEXT NOT NULL UNIQUE, kind TEXT NOT NULL)",
		"CREATE TABLE IF NOT EXISTS pixels (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, data BLOB NOT NULL)",
		"CREATE TABLE IF NOT EXISTS image (id INTEGER PRIMARY KEY NOT NULL, source_id INTEGER NOT NULL, idx INTEGER NOT NULL, width INTEGER NOT NULL, height INTEGER NOT NULL, aux INTEGER, pixels_id INTEGER NOT NULL, UNIQUE(source_id, idx), FOREIGN KEY(source_id) REFERENCES source(id), FOREIGN KEY(pixels_id) REFERENCES pixels(id))",
	} {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			return nil, errors.Wrap(err, "creating schema")
		}
	}

	return &Catalog{
		db: db,
	}, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

func (c *Catalog) addSource(path, kind string) (int64, error) {
	if _, err := c.db.Exec("INSERT OR IGNORE INTO source (path, kind) VALUES (?, ?)", path, kind); err != nil {
		return 0, err
	}

	var id int64
	if err := c.db.QueryRow("SELECT id FROM source WHERE path = ?", path).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (c *Catalog) addPixels(sha string, pixels []byte) (int64, error) {
	var id int64
	switch err := c.db.QueryRow("SELECT id FROM pixels WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		if _, err := c.db.Exec("INSERT OR IGNORE INTO pixels (sha1, data) VALUES (?, ?)", sha, encoder.EncodeAll(pixels, nil)); err != nil {
			return 0, err
		}
		return c.FindBySHA1(sha)
	case nil:
		return id, nil
	default:
		return 0, err
	}
}

// AddImage records m along with its decoded pixels, replacing any previous
// entry for the same source and index. It returns the id of the stored
// pixel data.
func (c *Catalog) AddImage(m Image, pixels []byte) (int64, error) {
	m.SHA1 = fmt.Sprintf("%X", sha1.Sum(pixels))

	source, err := c.addSource(m.Source, m.Kind)
	if err != nil {
		return 0, errors.Wrapf(err, "adding source %s", m.Source)
	}

	id, err := c.addPixels(m.SHA1, pixels)
	if err != nil {
		return 0, errors.Wrapf(err, "adding pixels for %s:%d", m.Source, m.Index)
	}

	if _, err := c.db.Exec("INSERT OR REPLACE INTO image (source_id, idx, width, height, aux, pixels_id) VALUES (?, ?, ?, ?, ?, ?)", source, m.Index, m.Width, m.Height, m.Aux, id); err != nil {
		return 0, errors.Wrapf(err, "adding image %s:%d", m.Source, m.Index)
	}

	return id, nil
}

// FindBySHA1 returns the id of the pixel data with the given hash, or
// sql.ErrNoRows.
func (c *Catalog) FindBySHA1(sha string) (int64, error) {
	var id int64
	if err := c.db.QueryRow("SELECT id FROM pixels WHERE sha1 = ?", sha).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// Pixels returns the decompressed pixel data with the given id.
func (c *Catalog) Pixels(id int64) ([]byte, error) {
	var data []byte
	if err := c.db.QueryRow("SELECT data FROM pixels WHERE id = ?", id).Scan(&data); err != nil {
		return nil, err
	}

	b, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing pixels %d", id)
	}
	return b, nil
}

// Images returns every image recorded for source, ordered by index.
func (c *Catalog) Images(source string) ([]Image, error) {
	rows, err := c.db.Query("SELECT i.pixels_id, s.path, s.kind, i.idx, i.width, i.height, i.aux, p.sha1 FROM image AS i JOIN source AS s ON i.source_id = s.id JOIN pixels AS p ON i.pixels_id = p.id WHERE s.path = ? ORDER BY i.idx", source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var m Image
		if err := rows.Scan(&m.PixelsID, &m.Source, &m.Kind, &m.Index, &m.Width, &m.Height, &m.Aux, &m.SHA1); err != nil {
			return nil, err
		}
		images = append(images, m)
	}

	return images, rows.Err()
}

// Sources returns the path of every source in the catalog.
func (c *Catalog) Sources() ([]string, error) {
	rows, err := c.db.Query("SELECT path FROM source ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}

	return sources, rows.Err()
}
