package entities

import (
	"encoding/json"
	"time"
)

// Book is the single catalog entity. ID is assigned by the store on create
// and never changes afterwards; an unsaved book has ID 0, which is rendered
// as null on the wire.
type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id" yaml:"id"`
	Title         string    `gorm:"index;size:512;not null" json:"title" yaml:"title"`
	Author        string    `gorm:"index;size:256;not null" json:"author" yaml:"author"`
	ISBN          string    `gorm:"size:32;not null" json:"isbn" yaml:"isbn"`
	PublishedDate *Date     `json:"publishedDate" yaml:"publishedDate"`
	CreatedAt     time.Time `json:"-" yaml:"-"`
	UpdatedAt     time.Time `json:"-" yaml:"-"`
}

// IsPersisted reports whether the book has been assigned an identity.
func (b Book) IsPersisted() bool {
	return b.ID != 0
}

// MarshalJSON writes a zero ID as null so clients can tell unsaved records apart.
func (b Book) MarshalJSON() ([]byte, error) {
	type plain Book
	var id *uint
	if b.ID != 0 {
		id = &b.ID
	}
	return json.Marshal(struct {
		ID *uint `json:"id"`
		plain
	}{ID: id, plain: plain(b)})
}

// BookSortColumns maps the sort field names accepted by the API to columns.
var BookSortColumns = map[string]string{
	"id":            "id",
	"title":         "title",
	"author":        "author",
	"isbn":          "isbn",
	"publishedDate": "published_date",
}
