package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mrlokans/library-catalog/internal/client"
	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/entities"
	"github.com/mrlokans/library-catalog/internal/ui"
)

// ShellCommand is an interactive line-oriented front-end to a running
// catalog server.
type ShellCommand struct {
	BaseURL string
	Timeout time.Duration

	In  io.Reader
	Out io.Writer

	client ui.BookClient
}

func NewShellCommand() *ShellCommand {
	return &ShellCommand{
		In:  os.Stdin,
		Out: os.Stdout,
	}
}

func (cmd *ShellCommand) ParseFlags(args []string) error {
	defaults := config.NewConfig().Client

	fs := flag.NewFlagSet("shell", flag.ContinueOnError)
	fs.StringVar(&cmd.BaseURL, "url", defaults.BaseURL, "Base URL of the catalog server")
	fs.DurationVar(&cmd.Timeout, "timeout", defaults.Timeout, "Timeout for each server call")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s shell [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Browse and edit the catalog of a running server.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s shell\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s shell -url http://catalog.local:8080 -timeout 30s\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if cmd.BaseURL == "" {
		fs.Usage()
		return fmt.Errorf("url is required")
	}
	if cmd.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", cmd.Timeout)
	}
	return nil
}

// Run reads commands until quit or end of input.
func (cmd *ShellCommand) Run() error {
	c := cmd.client
	if c == nil {
		c = client.FromConfig(config.Client{BaseURL: cmd.BaseURL, Timeout: cmd.Timeout})
	}

	scanner := bufio.NewScanner(cmd.In)
	notifier := &terminalNotifier{out: cmd.Out, in: scanner}
	view := ui.NewView(c, notifier)
	view.Subscribe(func(books []entities.Book) { printBooks(cmd.Out, books) })

	fmt.Fprintf(cmd.Out, "Connected to %s. Type \"help\" for commands.\n", cmd.BaseURL)
	cmd.call(view.Load)

	for {
		fmt.Fprint(cmd.Out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(cmd.Out)
			return scanner.Err()
		}
		if quit := cmd.dispatch(view, scanner.Text()); quit {
			return nil
		}
	}
}

func (cmd *ShellCommand) dispatch(view *ui.View, line string) bool {
	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "":
	case "quit", "exit":
		return true
	case "help":
		printHelp(cmd.Out)
	case "list", "refresh":
		cmd.call(view.Load)
	case "search":
		cmd.call(func(ctx context.Context) error { return view.Search(ctx, rest) })
	case "select":
		id, err := strconv.ParseUint(rest, 10, 64)
		if err != nil || !view.Select(uint(id)) {
			fmt.Fprintf(cmd.Out, "No book with id %q in the current list.\n", rest)
			return false
		}
		printForm(cmd.Out, view)
	case "show":
		printForm(cmd.Out, view)
	case "set":
		if err := setField(view, rest); err != nil {
			fmt.Fprintln(cmd.Out, err)
		}
	case "add":
		cmd.call(view.Add)
	case "update":
		cmd.call(view.Update)
	case "delete":
		cmd.call(view.Delete)
	case "clear":
		view.Clear()
	default:
		fmt.Fprintf(cmd.Out, "Unknown command %q. Type \"help\" for commands.\n", name)
	}
	return false
}

// call runs fn with a per-call deadline. The view has already reported any
// failure through the notifier.
func (cmd *ShellCommand) call(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), cmd.Timeout)
	defer cancel()
	_ = fn(ctx)
}

func setField(view *ui.View, args string) error {
	field, value, _ := strings.Cut(args, " ")
	form := view.Form()
	switch strings.ToLower(field) {
	case "title":
		form.Title = value
	case "author":
		form.Author = value
	case "isbn":
		form.ISBN = value
	case "date", "published", "publisheddate":
		form.PublishedDate = value
	default:
		return errors.New("usage: set title|author|isbn|date <value>")
	}
	view.SetForm(form)
	return nil
}

func printBooks(out io.Writer, books []entities.Book) {
	if len(books) == 0 {
		fmt.Fprintln(out, "(no books)")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTitle\tAuthor\tISBN\tPublished Date")
	for _, b := range books {
		date := ""
		if b.PublishedDate != nil {
			date = b.PublishedDate.String()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Title, b.Author, b.ISBN, date)
	}
	w.Flush()
}

func printForm(out io.Writer, view *ui.View) {
	if b, ok := view.Selected(); ok {
		fmt.Fprintf(out, "Selected: #%d\n", b.ID)
	} else {
		fmt.Fprintln(out, "Selected: none")
	}
	f := view.Form()
	fmt.Fprintf(out, "  Title:          %s\n", f.Title)
	fmt.Fprintf(out, "  Author:         %s\n", f.Author)
	fmt.Fprintf(out, "  ISBN:           %s\n", f.ISBN)
	fmt.Fprintf(out, "  Published Date: %s\n", f.PublishedDate)
}

func printHelp(out io.Writer) {
	fmt.Fprint(out, `Commands:
  list | refresh            reload every book from the server
  search [term]             filter by title or author (blank reloads all)
  select <id>               select a listed book and load it into the form
  show                      print the form and the selection
  set <field> <value>       edit the form: title, author, isbn, date (YYYY-MM-DD)
  add                       create a book from the form
  update                    save the form over the selected book
  delete                    delete the selected book
  clear                     empty the form and drop the selection
  quit | exit               leave the shell
`)
}

// terminalNotifier prints notifications and reads confirmations from the
// same input the shell reads commands from.
type terminalNotifier struct {
	out io.Writer
	in  *bufio.Scanner
}

func (n *terminalNotifier) Error(title, message string) {
	fmt.Fprintf(n.out, "ERROR: %s: %s\n", title, message)
}

func (n *terminalNotifier) Warning(title, message string) {
	fmt.Fprintf(n.out, "WARNING: %s: %s\n", title, message)
}

func (n *terminalNotifier) Info(title, message string) {
	fmt.Fprintf(n.out, "%s: %s\n", title, message)
}

func (n *terminalNotifier) Success(message string) {
	fmt.Fprintln(n.out, message)
}

func (n *terminalNotifier) Confirm(title, header, message string) bool {
	fmt.Fprintf(n.out, "%s: %s\n%s [y/N] ", title, header, message)
	if !n.in.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(n.in.Text()))
	return answer == "y" || answer == "yes"
}
