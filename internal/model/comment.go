package model

import "time"

type Comment struct {
	ID         string    `db:"id" json:"id"`
	VideoID    string    `db:"video_id" json:"videoId"`
	AuthorID   string    `db:"author_id" json:"authorId"`
	AuthorName string    `db:"author_name" json:"authorName"`
	Content    string    `db:"content" json:"content"`
	Published  time.Time `db:"published" json:"published"`
}
