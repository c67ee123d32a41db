package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library-catalog/internal/database"
	"github.com/mrlokans/library-catalog/internal/database/books"
	apihttp "github.com/mrlokans/library-catalog/internal/http"
	"github.com/mrlokans/library-catalog/internal/services"
)

func startServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_shell_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	srv := httptest.NewServer(apihttp.NewRouter(apihttp.RouterConfig{
		Catalog:  services.NewCatalogService(books.NewRepository(db.DB)),
		Database: db,
	}))
	t.Cleanup(func() {
		srv.Close()
		db.Close()
		os.Remove(dbPath)
	})
	return srv.URL
}

func runShell(t *testing.T, baseURL, script string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := &ShellCommand{
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
		In:      strings.NewReader(script),
		Out:     &out,
	}
	require.NoError(t, cmd.Run())
	return out.String()
}

func TestShell_Session(t *testing.T) {
	url := startServer(t)

	out := runShell(t, url, strings.Join([]string{
		"set title Dune",
		"set author Frank Herbert",
		"set isbn 9780441013593",
		"set date 1965-08-01",
		"add",
		"select 1",
		"set title Dune Messiah",
		"update",
		"search tolkien",
		"search",
		"select 1",
		"delete",
		"y",
		"quit",
	}, "\n")+"\n")

	assert.Contains(t, out, "(no books)")
	assert.Contains(t, out, "Book added successfully!")
	assert.Contains(t, out, "Title:          Dune\n")
	assert.Contains(t, out, "Book updated successfully!")
	assert.Contains(t, out, "Dune Messiah")
	assert.Contains(t, out, "No results: No books found matching: tolkien")
	assert.Contains(t, out, "Are you sure you want to delete this book? [y/N]")
	assert.Contains(t, out, "Book deleted successfully!")
}

func TestShell_WarningsAndDeclinedDelete(t *testing.T) {
	url := startServer(t)

	out := runShell(t, url, strings.Join([]string{
		"update",
		"set title Dune",
		"add",
		"set author Frank Herbert",
		"set isbn 1",
		"set date 1965",
		"add",
		"set date 1965-08-01",
		"add",
		"select 1",
		"delete",
		"n",
		"list",
		"bogus",
	}, "\n")+"\n")

	assert.Contains(t, out, "WARNING: No book selected: Please select a book to update.")
	assert.Contains(t, out, "WARNING: Validation Error: Author is required.")
	assert.Contains(t, out, "WARNING: Validation Error: Published Date must be in YYYY-MM-DD format.")
	assert.Contains(t, out, "Book added successfully!")
	assert.NotContains(t, out, "Book deleted successfully!")
	assert.Contains(t, out, `Unknown command "bogus"`)
}

func TestShell_UnreachableServerIsReported(t *testing.T) {
	srv := httptest.NewServer(nil)
	url := srv.URL
	srv.Close()

	out := runShell(t, url, "quit\n")

	assert.Contains(t, out, "ERROR: Failed to load books:")
}

func TestShell_SelectUnknownID(t *testing.T) {
	url := startServer(t)

	out := runShell(t, url, "select 42\nselect abc\n")

	assert.Contains(t, out, `No book with id "42" in the current list.`)
	assert.Contains(t, out, `No book with id "abc" in the current list.`)
}

func TestShellCommand_ParseFlags(t *testing.T) {
	cmd := NewShellCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-url", "http://catalog.test", "-timeout", "3s"}))
	assert.Equal(t, "http://catalog.test", cmd.BaseURL)
	assert.Equal(t, 3*time.Second, cmd.Timeout)

	err := NewShellCommand().ParseFlags([]string{"-timeout", "0s"})
	assert.Error(t, err)
}
