// Package sitedb keeps the entire site state in one sqlite database:
// admin users, sessions, login-attempt counters and the editable home
// content. It implements auth.Store.
package sitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avelar/homebox/auth"
)

type (
	DB struct {
		db *sql.DB
	}

	// HomeContent is the single editable content row of the site.
	HomeContent struct {
		ID            string
		StartQuoteDoc string
		HeroSubtitle  string
		UpdatedAt     time.Time
	}
)

// HomeContentID is the well-known id of the only home_content row.
const HomeContentID = "home"

func Open(ctx context.Context, path string) (*DB, error) {
	connstr := fmt.Sprintf("file:%v?_journal=wal&_fk=on&_busy_timeout=5000&mode=rwc", path)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open site database %v, cause %w", path, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping site database %v, cause %w", path, err)
	}
	d := &DB{db: conn}
	if err := d.init(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to init site database %v, cause %w", path, err)
	}
	return d, nil
}

func (d *DB) init(ctx context.Context) error {
	stmts := []string{
		`create table if not exists users (
			user_id integer primary key autoincrement,
			username text not null unique,
			password_hash text not null)`,
		`create table if not exists sessions (
			session_id text primary key,
			user_id integer not null references users(user_id) on delete cascade,
			expires_at integer not null)`,
		`create table if not exists login_attempts (
			ip_address text primary key,
			attempts integer not null default 0,
			lockout_expires_at integer,
			updated_at integer not null)`,
		`create table if not exists home_content (
			content_id text primary key,
			start_quote_doc text not null,
			hero_subtitle text not null,
			updated_at integer not null)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// UpsertUser creates the named user or rotates its password hash.
// Used by the register command, never by the request path.
func (d *DB) UpsertUser(ctx context.Context, username, passwordHash string) error {
	_, err := d.db.ExecContext(ctx, `insert into users (username, password_hash) values (?, ?)
		on conflict(username) do update set password_hash = excluded.password_hash`,
		username, passwordHash)
	if err != nil {
		return fmt.Errorf("unable to upsert user %v, cause %w", username, err)
	}
	return nil
}

func (d *DB) FindUserByUsername(ctx context.Context, username string) (auth.User, error) {
	var u auth.User
	err := d.db.QueryRowContext(ctx,
		`select user_id, username, password_hash from users where username = ?`, username).
		Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.User{}, NotFound{Kind: "user"}
	} else if err != nil {
		return auth.User{}, fmt.Errorf("unable to find user, cause %w", err)
	}
	return u, nil
}

func (d *DB) FindSessionByID(ctx context.Context, id string) (auth.Session, auth.User, error) {
	var s auth.Session
	var u auth.User
	var expires int64
	err := d.db.QueryRowContext(ctx, `select s.session_id, s.user_id, s.expires_at, u.username, u.password_hash
		from sessions s
		inner join users u on u.user_id = s.user_id
		where s.session_id = ?`, id).
		Scan(&s.ID, &s.UserID, &expires, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Session{}, auth.User{}, NotFound{Kind: "session"}
	} else if err != nil {
		return auth.Session{}, auth.User{}, fmt.Errorf("unable to find session, cause %w", err)
	}
	s.ExpiresAt = time.Unix(expires, 0)
	u.ID = s.UserID
	return s, u, nil
}

func (d *DB) CreateSession(ctx context.Context, session auth.Session) error {
	_, err := d.db.ExecContext(ctx, `insert into sessions (session_id, user_id, expires_at) values (?, ?, ?)`,
		session.ID, session.UserID, session.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("unable to create session, cause %w", err)
	}
	return nil
}

func (d *DB) UpdateSessionExpiry(ctx context.Context, id string, expiresAt time.Time) error {
	_, err := d.db.ExecContext(ctx, `update sessions set expires_at = ? where session_id = ?`,
		expiresAt.Unix(), id)
	if err != nil {
		return fmt.Errorf("unable to update session expiry, cause %w", err)
	}
	return nil
}

// DeleteSessionByID is idempotent: zero affected rows is still success.
func (d *DB) DeleteSessionByID(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `delete from sessions where session_id = ?`, id)
	if err != nil {
		return fmt.Errorf("unable to delete session, cause %w", err)
	}
	return nil
}

func (d *DB) FindLoginAttempt(ctx context.Context, address string) (auth.LoginAttempt, error) {
	var a auth.LoginAttempt
	var lockout sql.NullInt64
	err := d.db.QueryRowContext(ctx,
		`select ip_address, attempts, lockout_expires_at from login_attempts where ip_address = ?`, address).
		Scan(&a.Address, &a.Attempts, &lockout)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.LoginAttempt{}, NotFound{Kind: "login attempt"}
	} else if err != nil {
		return auth.LoginAttempt{}, fmt.Errorf("unable to find login attempt, cause %w", err)
	}
	if lockout.Valid {
		t := time.Unix(lockout.Int64, 0)
		a.LockoutExpiresAt = &t
	}
	return a, nil
}

func (d *DB) UpsertLoginAttempt(ctx context.Context, attempt auth.LoginAttempt) error {
	var lockout sql.NullInt64
	if attempt.LockoutExpiresAt != nil {
		lockout = sql.NullInt64{Int64: attempt.LockoutExpiresAt.Unix(), Valid: true}
	}
	_, err := d.db.ExecContext(ctx, `insert into login_attempts (ip_address, attempts, lockout_expires_at, updated_at)
		values (?, ?, ?, ?)
		on conflict(ip_address) do update set
			attempts = excluded.attempts,
			lockout_expires_at = excluded.lockout_expires_at,
			updated_at = excluded.updated_at`,
		attempt.Address, attempt.Attempts, lockout, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("unable to upsert login attempt, cause %w", err)
	}
	return nil
}

// PruneLoginAttempts removes throttle rows that carry no signal
// anymore: zero attempts and no update since the cutoff. Rows with
// failures or an armed lockout are never pruned.
func (d *DB) PruneLoginAttempts(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`delete from login_attempts where attempts = 0 and lockout_expires_at is null and updated_at < ?`,
		olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("unable to prune login attempts, cause %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		// the delete went through, only the count is unknown
		return 0, nil
	}
	return n, nil
}

func (d *DB) GetHomeContent(ctx context.Context) (HomeContent, error) {
	var c HomeContent
	var updated int64
	err := d.db.QueryRowContext(ctx,
		`select content_id, start_quote_doc, hero_subtitle, updated_at from home_content where content_id = ?`,
		HomeContentID).
		Scan(&c.ID, &c.StartQuoteDoc, &c.HeroSubtitle, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return HomeContent{}, NotFound{Kind: "home content"}
	} else if err != nil {
		return HomeContent{}, fmt.Errorf("unable to load home content, cause %w", err)
	}
	c.UpdatedAt = time.Unix(updated, 0)
	return c, nil
}

func (d *DB) UpsertHomeContent(ctx context.Context, startQuoteDoc, heroSubtitle string) error {
	_, err := d.db.ExecContext(ctx, `insert into home_content (content_id, start_quote_doc, hero_subtitle, updated_at)
		values (?, ?, ?, ?)
		on conflict(content_id) do update set
			start_quote_doc = excluded.start_quote_doc,
			hero_subtitle = excluded.hero_subtitle,
			updated_at = excluded.updated_at`,
		HomeContentID, startQuoteDoc, heroSubtitle, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("unable to upsert home content, cause %w", err)
	}
	return nil
}
