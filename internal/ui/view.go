// Package ui holds the operator-facing view-model of the catalog: a local
// mirror of the books last fetched from the server, the edit form, and the
// notifications raised by every action. Front-ends render it; the shell
// subcommand is one of them.
package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/mrlokans/library-catalog/internal/entities"
)

// BookClient is the subset of the catalog client the view drives.
type BookClient interface {
	List(ctx context.Context) ([]entities.Book, error)
	Create(ctx context.Context, book entities.Book) (entities.Book, error)
	Update(ctx context.Context, id uint, book entities.Book) (entities.Book, error)
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, term string) ([]entities.Book, error)
}

// Notifier surfaces the outcome of view actions to the operator.
// Calls block until the operator has seen the message.
type Notifier interface {
	Error(title, message string)
	Warning(title, message string)
	Info(title, message string)
	Success(message string)
	Confirm(title, header, message string) bool
}

// Observer is called with a copy of the mirror after every change.
type Observer func(books []entities.Book)

// View is not safe for concurrent use; front-ends drive it from one goroutine.
type View struct {
	client   BookClient
	notifier Notifier

	books     []entities.Book
	selected  uint
	form      Form
	observers map[int]Observer
	nextObsID int
}

func NewView(client BookClient, notifier Notifier) *View {
	return &View{
		client:    client,
		notifier:  notifier,
		books:     []entities.Book{},
		observers: make(map[int]Observer),
	}
}

// Subscribe registers fn for mirror changes and returns a function that
// removes it again.
func (v *View) Subscribe(fn Observer) func() {
	id := v.nextObsID
	v.nextObsID++
	v.observers[id] = fn
	return func() { delete(v.observers, id) }
}

// Books returns a copy of the mirror in display order.
func (v *View) Books() []entities.Book {
	out := make([]entities.Book, len(v.books))
	copy(out, v.books)
	return out
}

func (v *View) Form() Form {
	return v.form
}

func (v *View) SetForm(f Form) {
	v.form = f
}

// Select marks the book with the given id as selected and copies its fields
// into the form. It reports false when the id is not in the mirror.
func (v *View) Select(id uint) bool {
	i := v.indexOf(id)
	if i < 0 {
		return false
	}
	v.selected = id
	v.form = FormFromBook(v.books[i])
	return true
}

// Selected returns the selected book, if any.
func (v *View) Selected() (entities.Book, bool) {
	if v.selected == 0 {
		return entities.Book{}, false
	}
	i := v.indexOf(v.selected)
	if i < 0 {
		return entities.Book{}, false
	}
	return v.books[i], true
}

// Clear empties the form and drops the selection.
func (v *View) Clear() {
	v.form = Form{}
	v.selected = 0
}

// Load replaces the mirror with every book on the server.
func (v *View) Load(ctx context.Context) error {
	books, err := v.client.List(ctx)
	if err != nil {
		v.notifier.Error("Failed to load books", err.Error())
		return err
	}
	v.replace(books)
	return nil
}

// Add creates a book from the form and appends the server's copy to the mirror.
func (v *View) Add(ctx context.Context) error {
	book, err := v.validate()
	if err != nil {
		return err
	}

	created, err := v.client.Create(ctx, book)
	if err != nil {
		v.notifier.Error("Failed to add book", err.Error())
		return err
	}

	v.books = append(v.books, created)
	v.Clear()
	v.changed()
	v.notifier.Success("Book added successfully!")
	return nil
}

// Update replaces the selected book with the form contents.
func (v *View) Update(ctx context.Context) error {
	selected, ok := v.Selected()
	if !ok {
		v.notifier.Warning("No book selected", "Please select a book to update.")
		return ErrNoSelection
	}
	book, err := v.validate()
	if err != nil {
		return err
	}

	updated, err := v.client.Update(ctx, selected.ID, book)
	if err != nil {
		v.notifier.Error("Failed to update book", err.Error())
		return err
	}

	if i := v.indexOf(selected.ID); i >= 0 {
		v.books[i] = updated
	}
	v.Clear()
	v.changed()
	v.notifier.Success("Book updated successfully!")
	return nil
}

// Delete removes the selected book after the operator confirms.
// A declined confirmation returns ErrCancelled and leaves everything as is.
func (v *View) Delete(ctx context.Context) error {
	selected, ok := v.Selected()
	if !ok {
		v.notifier.Warning("No book selected", "Please select a book to delete.")
		return ErrNoSelection
	}
	if !v.notifier.Confirm("Confirm Deletion", "Delete Book", "Are you sure you want to delete this book?") {
		return ErrCancelled
	}

	if err := v.client.Delete(ctx, selected.ID); err != nil {
		v.notifier.Error("Failed to delete book", err.Error())
		return err
	}

	if i := v.indexOf(selected.ID); i >= 0 {
		v.books = append(v.books[:i], v.books[i+1:]...)
	}
	v.Clear()
	v.changed()
	v.notifier.Success("Book deleted successfully!")
	return nil
}

// Search replaces the mirror with the books whose title or author contains
// term. A blank term reloads the whole catalog.
func (v *View) Search(ctx context.Context, term string) error {
	term = strings.TrimSpace(term)
	if term == "" {
		return v.Load(ctx)
	}

	books, err := v.client.Search(ctx, term)
	if err != nil {
		v.notifier.Error("Failed to search books", err.Error())
		return err
	}
	v.replace(books)
	if len(books) == 0 {
		v.notifier.Info("No results", "No books found matching: "+term)
	}
	return nil
}

var (
	// ErrNoSelection is returned by Update and Delete when no book is selected.
	ErrNoSelection = errors.New("no book selected")
	// ErrCancelled is returned by Delete when the operator declines.
	ErrCancelled = errors.New("cancelled by operator")
)

func (v *View) validate() (entities.Book, error) {
	book, err := v.form.Book()
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			v.notifier.Warning("Validation Error", verr.Message)
		}
		return entities.Book{}, err
	}
	return book, nil
}

func (v *View) replace(books []entities.Book) {
	v.books = make([]entities.Book, len(books))
	copy(v.books, books)
	if v.selected != 0 && v.indexOf(v.selected) < 0 {
		v.selected = 0
	}
	v.changed()
}

func (v *View) indexOf(id uint) int {
	for i := range v.books {
		if v.books[i].ID == id {
			return i
		}
	}
	return -1
}

func (v *View) changed() {
	if len(v.observers) == 0 {
		return
	}
	snapshot := v.Books()
	for _, fn := range v.observers {
		fn(snapshot)
	}
}
