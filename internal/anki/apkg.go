package anki

import (
	"archive/zip"
	"crypto/md5"
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// An .apkg file is a zip holding an SQLite database (collection.anki2, the
// legacy schema version 11 every Anki client still imports) plus a media
// manifest. No third-party Anki library exists for Go, so the package is
// written directly against that format.

const collectionSchema = `
CREATE TABLE col (
	id integer primary key,
	crt integer not null,
	mod integer not null,
	scm integer not null,
	ver integer not null,
	dty integer not null,
	usn integer not null,
	ls integer not null,
	conf text not null,
	models text not null,
	decks text not null,
	dconf text not null,
	tags text not null
);
CREATE TABLE notes (
	id integer primary key,
	guid text not null,
	mid integer not null,
	mod integer not null,
	usn integer not null,
	tags text not null,
	flds text not null,
	sfld integer not null,
	csum integer not null,
	flags integer not null,
	data text not null
);
CREATE TABLE cards (
	id integer primary key,
	nid integer not null,
	did integer not null,
	ord integer not null,
	mod integer not null,
	usn integer not null,
	type integer not null,
	queue integer not null,
	due integer not null,
	ivl integer not null,
	factor integer not null,
	reps integer not null,
	lapses integer not null,
	left integer not null,
	odue integer not null,
	odid integer not null,
	flags integer not null,
	data text not null
);
CREATE TABLE revlog (
	id integer primary key,
	cid integer not null,
	usn integer not null,
	ease integer not null,
	ivl integer not null,
	lastIvl integer not null,
	factor integer not null,
	time integer not null,
	type integer not null
);
CREATE TABLE graves (
	usn integer not null,
	oid integer not null,
	type integer not null
);
CREATE INDEX ix_notes_usn ON notes (usn);
CREATE INDEX ix_cards_usn ON cards (usn);
CREATE INDEX ix_revlog_usn ON revlog (usn);
CREATE INDEX ix_cards_nid ON cards (nid);
CREATE INDEX ix_cards_sched ON cards (did, queue, due);
CREATE INDEX ix_revlog_cid ON revlog (cid);
CREATE INDEX ix_notes_csum ON notes (csum);`

type modelField struct {
	Name   string   `json:"name"`
	Ord    int      `json:"ord"`
	Sticky bool     `json:"sticky"`
	RTL    bool     `json:"rtl"`
	Font   string   `json:"font"`
	Size   int      `json:"size"`
	Media  []string `json:"media"`
}

type modelTemplate struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	Qfmt  string `json:"qfmt"`
	Afmt  string `json:"afmt"`
	Bqfmt string `json:"bqfmt"`
	Bafmt string `json:"bafmt"`
	DID   *int64 `json:"did"`
}

type modelJSON struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      int             `json:"type"`
	Mod       int64           `json:"mod"`
	Usn       int             `json:"usn"`
	SortField int             `json:"sortf"`
	DID       int64           `json:"did"`
	Templates []modelTemplate `json:"tmpls"`
	Fields    []modelField    `json:"flds"`
	CSS       string          `json:"css"`
	LatexPre  string          `json:"latexPre"`
	LatexPost string          `json:"latexPost"`
	Tags      []string        `json:"tags"`
	Required  [][]any         `json:"req"`
}

type deckJSON struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Desc             string `json:"desc"`
	Dyn              int    `json:"dyn"`
	Collapsed        bool   `json:"collapsed"`
	BrowserCollapsed bool   `json:"browserCollapsed"`
	ExtendNew        int    `json:"extendNew"`
	ExtendRev        int    `json:"extendRev"`
	LrnToday         [2]int `json:"lrnToday"`
	NewToday         [2]int `json:"newToday"`
	RevToday         [2]int `json:"revToday"`
	TimeToday        [2]int `json:"timeToday"`
	Conf             int    `json:"conf"`
	Usn              int    `json:"usn"`
	Mod              int64  `json:"mod"`
}

const latexPre = "\\documentclass[12pt]{article}\n\\special{papersize=3in,5in}\n" +
	"\\usepackage[utf8]{inputenc}\n\\usepackage{amssymb,amsmath}\n" +
	"\\pagestyle{empty}\n\\setlength{\\parindent}{0in}\n\\begin{document}\n"

const latexPost = "\\end{document}"

// DeckID derives a stable deck identifier from the deck name.
func DeckID(deckName string) int64 {
	digest := md5.Sum([]byte("KindleDeck::" + deckName))
	return int64(binary.BigEndian.Uint32(digest[:4])&0x3FFFFFFF) + (1 << 30)
}

func fieldChecksum(sortField string) int64 {
	digest := sha1.Sum([]byte(sortField))
	value, _ := strconv.ParseInt(hex.EncodeToString(digest[:])[:8], 16, 64)
	return value
}

// WriteAPKG writes the cards as a ready-to-import Anki deck package.
func WriteAPKG(cards []Card, path string, deckType DeckType, nativeLanguage, targetLanguage string) error {
	if len(cards) == 0 {
		return nil
	}

	model, err := BuildModel(deckType, nativeLanguage, targetLanguage)
	if err != nil {
		return fmt.Errorf("BuildModel > %w", err)
	}
	deckName := DeckName(deckType, nativeLanguage, targetLanguage)

	tempDir, err := os.MkdirTemp("", "kindanki-apkg-*")
	if err != nil {
		return fmt.Errorf("os.MkdirTemp > %w", err)
	}
	defer os.RemoveAll(tempDir)

	collectionPath := filepath.Join(tempDir, "collection.anki2")
	if err := writeCollection(collectionPath, cards, model, deckType, deckName, nativeLanguage, targetLanguage); err != nil {
		return fmt.Errorf("writeCollection > %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll(%s) > %w", filepath.Dir(path), err)
	}
	if err := writeZip(path, collectionPath); err != nil {
		return fmt.Errorf("writeZip > %w", err)
	}
	return nil
}

func writeCollection(path string, cards []Card, model NoteModel, deckType DeckType, deckName, nativeLanguage, targetLanguage string) error {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("sqlx.Open() > %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(collectionSchema); err != nil {
		return fmt.Errorf("db.Exec(schema) > %w", err)
	}

	now := time.Now()
	nowSeconds := now.Unix()
	nowMillis := now.UnixMilli()
	deckID := DeckID(deckName)

	colJSON, err := buildColJSON(model, deckType, deckName, deckID, nowSeconds)
	if err != nil {
		return fmt.Errorf("buildColJSON > %w", err)
	}

	_, err = db.Exec(
		`INSERT INTO col (id, crt, mod, scm, ver, dty, usn, ls, conf, models, decks, dconf, tags)
		VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, ?)`,
		nowSeconds, nowMillis, nowMillis,
		colJSON.conf, colJSON.models, colJSON.decks, colJSON.dconf, "{}")
	if err != nil {
		return fmt.Errorf("db.Exec(insert col) > %w", err)
	}

	noteTx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("db.Beginx > %w", err)
	}
	_, mapRow := tsvColumns(deckType, nativeLanguage, targetLanguage)
	for i, card := range cards {
		fields := mapRow(card)
		sortField := fields[0]
		noteID := nowMillis + int64(i)
		guid := strconv.FormatInt(NoteGUID(card.Lemma, model.ID, deckType), 10)

		_, err = noteTx.Exec(
			`INSERT INTO notes (id, guid, mid, mod, usn, tags, flds, sfld, csum, flags, data)
			VALUES (?, ?, ?, ?, -1, '', ?, ?, ?, 0, '')`,
			noteID, guid, model.ID, nowSeconds,
			strings.Join(fields, "\x1f"), sortField, fieldChecksum(sortField))
		if err != nil {
			noteTx.Rollback()
			return fmt.Errorf("noteTx.Exec(insert note) > %w", err)
		}

		cardID := nowMillis + int64(len(cards)) + int64(i)
		_, err = noteTx.Exec(
			`INSERT INTO cards (id, nid, did, ord, mod, usn, type, queue, due, ivl, factor, reps, lapses, left, odue, odid, flags, data)
			VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
			cardID, noteID, deckID, nowSeconds, i+1)
		if err != nil {
			noteTx.Rollback()
			return fmt.Errorf("noteTx.Exec(insert card) > %w", err)
		}
	}
	if err := noteTx.Commit(); err != nil {
		return fmt.Errorf("noteTx.Commit > %w", err)
	}
	return nil
}

type colBlobs struct {
	conf   string
	models string
	decks  string
	dconf  string
}

func buildColJSON(model NoteModel, deckType DeckType, deckName string, deckID, nowSeconds int64) (colBlobs, error) {
	fields := make([]modelField, len(model.Fields))
	for i, name := range model.Fields {
		fields[i] = modelField{
			Name:  name,
			Ord:   i,
			Font:  "Arial",
			Size:  20,
			Media: []string{},
		}
	}

	modelType := 0
	if model.Cloze {
		modelType = 1
	}
	modelBlob := modelJSON{
		ID:        model.ID,
		Name:      model.Name,
		Type:      modelType,
		Mod:       nowSeconds,
		DID:       deckID,
		Templates: []modelTemplate{
			{Name: string(deckType), Qfmt: model.FrontHTML, Afmt: model.BackHTML},
		},
		Fields:    fields,
		CSS:       model.CSS,
		LatexPre:  latexPre,
		LatexPost: latexPost,
		Tags:      []string{},
		Required:  [][]any{{0, "all", []any{0}}},
	}

	deckBlob := deckJSON{
		ID:   deckID,
		Name: deckName,
		Conf: 1,
		Mod:  nowSeconds,
	}

	models, err := json.Marshal(map[string]modelJSON{
		strconv.FormatInt(model.ID, 10): modelBlob,
	})
	if err != nil {
		return colBlobs{}, fmt.Errorf("json.Marshal(models) > %w", err)
	}
	decks, err := json.Marshal(map[string]deckJSON{
		strconv.FormatInt(deckID, 10): deckBlob,
	})
	if err != nil {
		return colBlobs{}, fmt.Errorf("json.Marshal(decks) > %w", err)
	}

	conf := map[string]any{
		"activeDecks":   []int64{deckID},
		"curDeck":       deckID,
		"newSpread":     0,
		"collapseTime":  1200,
		"timeLim":       0,
		"estTimes":      true,
		"dueCounts":     true,
		"curModel":      strconv.FormatInt(model.ID, 10),
		"nextPos":       1,
		"sortType":      "noteFld",
		"sortBackwards": false,
		"addToCur":      true,
	}
	confBlob, err := json.Marshal(conf)
	if err != nil {
		return colBlobs{}, fmt.Errorf("json.Marshal(conf) > %w", err)
	}

	dconf := map[string]any{
		"1": map[string]any{
			"id":       1,
			"name":     "Default",
			"autoplay": true,
			"timer":    0,
			"replayq":  true,
			"maxTaken": 60,
			"usn":      0,
			"mod":      nowSeconds,
			"new": map[string]any{
				"delays":        []int{1, 10},
				"ints":          []int{1, 4, 7},
				"initialFactor": 2500,
				"order":         1,
				"perDay":        20,
				"bury":          true,
				"separate":      true,
			},
			"rev": map[string]any{
				"perDay":   100,
				"ease4":    1.3,
				"fuzz":     0.05,
				"ivlFct":   1,
				"maxIvl":   36500,
				"bury":     true,
				"minSpace": 1,
			},
			"lapse": map[string]any{
				"delays":      []int{10},
				"mult":        0,
				"minInt":      1,
				"leechFails":  8,
				"leechAction": 0,
			},
			"dyn": false,
		},
	}
	dconfBlob, err := json.Marshal(dconf)
	if err != nil {
		return colBlobs{}, fmt.Errorf("json.Marshal(dconf) > %w", err)
	}

	return colBlobs{
		conf:   string(confBlob),
		models: string(models),
		decks:  string(decks),
		dconf:  string(dconfBlob),
	}, nil
}

func writeZip(path, collectionPath string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer file.Close()

	archive := zip.NewWriter(file)
	collection, err := os.Open(collectionPath)
	if err != nil {
		return fmt.Errorf("os.Open(%s) > %w", collectionPath, err)
	}
	defer collection.Close()

	entry, err := archive.Create("collection.anki2")
	if err != nil {
		return fmt.Errorf("archive.Create(collection.anki2) > %w", err)
	}
	if _, err := io.Copy(entry, collection); err != nil {
		return fmt.Errorf("io.Copy(collection.anki2) > %w", err)
	}

	// Media manifest: this tool packages no audio or images.
	media, err := archive.Create("media")
	if err != nil {
		return fmt.Errorf("archive.Create(media) > %w", err)
	}
	if _, err := media.Write([]byte("{}")); err != nil {
		return fmt.Errorf("media.Write > %w", err)
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("archive.Close > %w", err)
	}
	return nil
}
