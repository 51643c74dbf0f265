package models

import "time"

// Lesson is a stored lesson unit tagged with the abstract period it belongs to.
type Lesson struct {
	ID         string    `db:"id" json:"id"`
	CategoryID string    `db:"category_id" json:"category_id"`
	Title      string    `db:"title" json:"title"`
	Year       int       `db:"year" json:"year"`
	Month      int       `db:"month" json:"month"`
	Week       int       `db:"week" json:"week"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Category groups lessons; the name is display only.
type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
