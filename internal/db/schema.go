package db

import (
	"context"
	"fmt"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS videos (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    author_id     TEXT NOT NULL,
    view_count    BIGINT NOT NULL,
    duration      BIGINT NOT NULL,
    likes         BIGINT,
    dislikes      BIGINT,
    rating        DOUBLE PRECISION,
    num_raters    BIGINT,
    published     TIMESTAMPTZ NOT NULL,
    analyzed_at   TIMESTAMPTZ NOT NULL,
    num_comments  BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
    id           TEXT PRIMARY KEY,
    video_id     TEXT NOT NULL REFERENCES videos(id),
    author_id    TEXT NOT NULL,
    author_name  TEXT NOT NULL,
    content      TEXT NOT NULL,
    published    TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS video_sentiments (
    video_id  TEXT PRIMARY KEY REFERENCES videos(id),
    n_pos     DOUBLE PRECISION NOT NULL,
    n_neg     DOUBLE PRECISION NOT NULL,
    verdict   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS comment_sentiments (
    comment_id  TEXT PRIMARY KEY REFERENCES comments(id),
    video_id    TEXT NOT NULL REFERENCES videos(id),
    positive    BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS video_categories (
    video_id  TEXT NOT NULL REFERENCES videos(id),
    category  TEXT NOT NULL,
    PRIMARY KEY (video_id, category)
);

CREATE INDEX IF NOT EXISTS idx_videos_analyzed_at ON videos(analyzed_at);
CREATE INDEX IF NOT EXISTS idx_comments_video_id ON comments(video_id);
CREATE INDEX IF NOT EXISTS idx_comment_sentiments_video_id ON comment_sentiments(video_id);
`

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS videos (
    id            TEXT PRIMARY KEY,
    title         TEXT NOT NULL,
    author_id     TEXT NOT NULL,
    view_count    INTEGER NOT NULL,
    duration      INTEGER NOT NULL,
    likes         INTEGER,
    dislikes      INTEGER,
    rating        REAL,
    num_raters    INTEGER,
    published     DATETIME NOT NULL,
    analyzed_at   DATETIME NOT NULL,
    num_comments  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS comments (
    id           TEXT PRIMARY KEY,
    video_id     TEXT NOT NULL REFERENCES videos(id),
    author_id    TEXT NOT NULL,
    author_name  TEXT NOT NULL,
    content      TEXT NOT NULL,
    published    DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS video_sentiments (
    video_id  TEXT PRIMARY KEY REFERENCES videos(id),
    n_pos     REAL NOT NULL,
    n_neg     REAL NOT NULL,
    verdict   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS comment_sentiments (
    comment_id  TEXT PRIMARY KEY REFERENCES comments(id),
    video_id    TEXT NOT NULL REFERENCES videos(id),
    positive    BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS video_categories (
    video_id  TEXT NOT NULL REFERENCES videos(id),
    category  TEXT NOT NULL,
    PRIMARY KEY (video_id, category)
);

CREATE INDEX IF NOT EXISTS idx_videos_analyzed_at ON videos(analyzed_at);
CREATE INDEX IF NOT EXISTS idx_comments_video_id ON comments(video_id);
CREATE INDEX IF NOT EXISTS idx_comment_sentiments_video_id ON comment_sentiments(video_id);
`

// Migrate creates the schema for the connection's driver. It is idempotent.
func Migrate(ctx context.Context, conn Conn) error {
	schema := postgresSchema
	if conn.Driver() == DriverSQLite {
		schema = sqliteSchema
	}
	if _, err := conn.Exec(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
