package ui

import (
	"strings"

	"github.com/mrlokans/library-catalog/internal/entities"
)

// Form holds the editable book fields as the operator typed them.
// PublishedDate is kept as text until validation.
type Form struct {
	Title         string
	Author        string
	ISBN          string
	PublishedDate string
}

// FormFromBook fills a form with the fields of book.
func FormFromBook(book entities.Book) Form {
	f := Form{
		Title:  book.Title,
		Author: book.Author,
		ISBN:   book.ISBN,
	}
	if book.PublishedDate != nil {
		f.PublishedDate = book.PublishedDate.String()
	}
	return f
}

// ValidationError reports the first form field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var fieldLabels = map[string]string{
	"title":         "Title",
	"author":        "Author",
	"isbn":          "ISBN",
	"publishedDate": "Published Date",
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Message: fieldLabels[field] + " is required."}
}

// Book validates the form and converts it into a book without an ID.
// Every field is required after trimming whitespace.
func (f Form) Book() (entities.Book, error) {
	title := strings.TrimSpace(f.Title)
	author := strings.TrimSpace(f.Author)
	isbn := strings.TrimSpace(f.ISBN)
	published := strings.TrimSpace(f.PublishedDate)

	switch {
	case title == "":
		return entities.Book{}, required("title")
	case author == "":
		return entities.Book{}, required("author")
	case isbn == "":
		return entities.Book{}, required("isbn")
	case published == "":
		return entities.Book{}, required("publishedDate")
	}

	date, err := entities.ParseDate(published)
	if err != nil {
		return entities.Book{}, &ValidationError{
			Field:   "publishedDate",
			Message: "Published Date must be in YYYY-MM-DD format.",
		}
	}

	return entities.Book{
		Title:         title,
		Author:        author,
		ISBN:          isbn,
		PublishedDate: date.Ptr(),
	}, nil
}

// IsEmpty reports whether every field is blank.
func (f Form) IsEmpty() bool {
	return strings.TrimSpace(f.Title+f.Author+f.ISBN+f.PublishedDate) == ""
}
