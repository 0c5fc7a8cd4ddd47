package resultstore

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

var remoteSchemes = []string{"libsql://", "https://", "http://", "wss://", "ws://"}

func isRemote(path string) bool {
	for _, scheme := range remoteSchemes {
		if strings.HasPrefix(path, scheme) {
			return true
		}
	}
	return false
}

// Open opens the store at `path`, which is either a local sqlite file,
// ":memory:", or a libsql url (an auth token can be passed as the authToken
// query parameter). The schema is applied if it does not exist yet.
func Open(path string) (Store, error) {
	if path == "" {
		return Store{}, fmt.Errorf("a database path was not specified")
	}

	var database *sql.DB
	var err error
	if isRemote(path) {
		database, err = sql.Open("libsql", path)
		if err != nil {
			return Store{}, err
		}
	} else {
		database, err = openSqlite(path)
		if err != nil {
			return Store{}, err
		}
	}

	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return Store{}, fmt.Errorf("apply schema: %w", err)
	}
	return NewStore(database), nil
}

func openSqlite(path string) (*sql.DB, error) {
	inMemory := path == ":memory:"
	if !inMemory {
		err := os.MkdirAll(filepath.Dir(path), 0700)
		if err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection serializes writes and keeps an in-memory database alive
	database.SetMaxOpenConns(1)
	if !inMemory {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

type Store struct {
	db *sql.DB
}

// NewStore wraps an existing database, the schema must already be applied.
func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

func (s Store) Close() error {
	return s.db.Close()
}

// Exchange is one command sent to the api together with what came back.
type Exchange struct {
	Id         int64
	Time       time.Time
	Cmd        string
	Url        string
	Session    string
	Request    json.RawMessage
	Response   json.RawMessage
	StatusCode int
	Data       string
	Error      string
}

func (s Store) RecordExchange(ctx context.Context, exchange Exchange) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`insert into exchange(time, cmd, url, session, request, response, status_code, data, error)
		values (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exchange.Time.UnixMilli(),
		exchange.Cmd,
		exchange.Url,
		exchange.Session,
		string(exchange.Request),
		string(exchange.Response),
		exchange.StatusCode,
		exchange.Data,
		exchange.Error,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListExchanges returns the newest exchanges first, a limit <= 0 returns all of them.
func (s Store) ListExchanges(ctx context.Context, limit int) ([]Exchange, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(
		ctx,
		`select id, time, cmd, url, session, request, response, status_code, data, error
		from exchange
		order by time desc, id desc
		limit ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Exchange
	for rows.Next() {
		var exchange Exchange
		var unixMilli int64
		var request, response string
		err := rows.Scan(
			&exchange.Id,
			&unixMilli,
			&exchange.Cmd,
			&exchange.Url,
			&exchange.Session,
			&request,
			&response,
			&exchange.StatusCode,
			&exchange.Data,
			&exchange.Error,
		)
		if err != nil {
			return nil, err
		}
		exchange.Time = time.UnixMilli(unixMilli)
		exchange.Request = json.RawMessage(request)
		if response != "" {
			exchange.Response = json.RawMessage(response)
		}
		out = append(out, exchange)
	}
	return out, rows.Err()
}

type TrackedSession struct {
	Id       string
	Created  time.Time
	LastUsed time.Time
}

// TrackSession remembers a session until ForgetSession is called, tracking
// an already tracked session only updates when it was last used.
func (s Store) TrackSession(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into tracked_session(id, created, last_used) values (?, ?, ?)
		on conflict(id) do update set last_used = excluded.last_used`,
		id,
		at.UnixMilli(),
		at.UnixMilli(),
	)
	return err
}

func (s Store) ForgetSession(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "delete from tracked_session where id = ?", id)
	return err
}

func (s Store) TrackedSessions(ctx context.Context) ([]TrackedSession, error) {
	rows, err := s.db.QueryContext(ctx, "select id, created, last_used from tracked_session order by created asc, id asc")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackedSession
	for rows.Next() {
		var session TrackedSession
		var created, lastUsed int64
		err := rows.Scan(&session.Id, &created, &lastUsed)
		if err != nil {
			return nil, err
		}
		session.Created = time.UnixMilli(created)
		session.LastUsed = time.UnixMilli(lastUsed)
		out = append(out, session)
	}
	return out, rows.Err()
}
