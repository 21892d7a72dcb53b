package vocabulary

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Repository reads the Kindle vocabulary database. The file is opened
// read-only; this tool never writes to the device database.
type Repository struct {
	db *sqlx.DB
}

// Open opens the vocab.db file at path.
func Open(path string) (*Repository, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("os.Stat(%s) > %w", path, err)
	}

	db, err := sqlx.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("sqlx.Open() > %w", err)
	}
	return &Repository{db: db}, nil
}

// NewRepository wraps an existing connection, mainly for tests.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	return r.db.Close()
}

// FindAll returns every lookup with its context sentence and book, most
// recent first. Words without a recorded lookup still appear, with empty
// usage and an unknown book.
func (r *Repository) FindAll(ctx context.Context) ([]Lookup, error) {
	var rows []lookupRow
	query := `
		SELECT
			w.id,
			w.word,
			w.lang,
			l.usage,
			b.title,
			b.authors
		FROM WORDS w
		LEFT JOIN LOOKUPS l ON w.id = l.word_key
		LEFT JOIN BOOK_INFO b ON l.book_key = b.id
		ORDER BY w.timestamp DESC`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("db.SelectContext(words) > %w", err)
	}

	lookups := make([]Lookup, len(rows))
	for i, row := range rows {
		lookups[i] = row.toLookup()
	}
	return lookups, nil
}

// FindByLanguage returns the lookups whose normalized language matches code.
func (r *Repository) FindByLanguage(ctx context.Context, code string) ([]Lookup, error) {
	lookups, err := r.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindAll > %w", err)
	}
	return FilterByLanguage(lookups, code), nil
}
