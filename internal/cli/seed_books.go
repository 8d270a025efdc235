// Package cli implements the command line entrypoints that run outside the
// HTTP server, currently only the catalog seeder.
package cli

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/mrlokans/bookclub/internal/database"
	"github.com/mrlokans/bookclub/internal/database/books"
	"github.com/mrlokans/bookclub/internal/entities"
)

// SeedBooksCommand loads the book catalog from a CSV file. The application
// itself never creates books; the catalog is seeded out-of-band with this
// command.
type SeedBooksCommand struct {
	CSVPath      string
	DatabasePath string
	Verbose      bool
}

// NewSeedBooksCommand creates a new SeedBooksCommand.
func NewSeedBooksCommand() *SeedBooksCommand {
	return &SeedBooksCommand{}
}

// ParseFlags parses command line flags.
func (cmd *SeedBooksCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("seed-books", flag.ExitOnError)

	fs.StringVar(&cmd.CSVPath, "csv", "", "Path to the books CSV file (header: isbn,title,author,year)")
	fs.StringVar(&cmd.DatabasePath, "db", os.Getenv("DATABASE_PATH"), "Path to the SQLite database (defaults to DATABASE_PATH)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Log every inserted book")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s seed-books -csv <file> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Load the book catalog from a CSV file. Rows whose ISBN already\n")
		fmt.Fprintf(os.Stderr, "exists in the catalog are skipped, so the command is safe to re-run.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s seed-books -csv data/books.csv -db ./bookclub.db\n", os.Args[0])
	}

	return fs.Parse(args)
}

// Run executes the seeding.
func (cmd *SeedBooksCommand) Run() error {
	if cmd.CSVPath == "" {
		return fmt.Errorf("-csv is required")
	}
	if cmd.DatabasePath == "" {
		return fmt.Errorf("-db is required (or set DATABASE_PATH)")
	}

	file, err := os.Open(cmd.CSVPath)
	if err != nil {
		return fmt.Errorf("failed to open CSV: %w", err)
	}
	defer file.Close()

	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repo := books.NewRepository(db.DB)

	inserted, skipped, err := seedFromCSV(file, repo, cmd.Verbose)
	if err != nil {
		return err
	}

	log.Printf("Seeding complete: %d books inserted, %d skipped", inserted, skipped)
	return nil
}

// bookCreator is the subset of the books repository the seeder needs.
type bookCreator interface {
	CreateBook(book *entities.Book) error
	HasBookWithISBN(isbn string) (bool, error)
}

// seedFromCSV reads `isbn,title,author,year` rows and inserts the ones not
// yet in the catalog. A malformed row aborts the run with its line number.
func seedFromCSV(r io.Reader, repo bookCreator, verbose bool) (inserted, skipped int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 4

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if strings.ToLower(strings.TrimSpace(header[0])) != "isbn" {
		return 0, 0, fmt.Errorf("unexpected CSV header: %q (want isbn,title,author,year)", strings.Join(header, ","))
	}

	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return inserted, skipped, fmt.Errorf("line %d: %w", line, err)
		}

		isbn := strings.TrimSpace(record[0])
		title := strings.TrimSpace(record[1])
		author := strings.TrimSpace(record[2])
		year, err := strconv.Atoi(strings.TrimSpace(record[3]))
		if err != nil {
			return inserted, skipped, fmt.Errorf("line %d: invalid year %q", line, record[3])
		}
		if isbn == "" || title == "" {
			return inserted, skipped, fmt.Errorf("line %d: isbn and title are required", line)
		}

		exists, err := repo.HasBookWithISBN(isbn)
		if err != nil {
			return inserted, skipped, fmt.Errorf("line %d: %w", line, err)
		}
		if exists {
			skipped++
			continue
		}

		book := &entities.Book{
			ISBN:   isbn,
			Title:  title,
			Author: author,
			Year:   year,
		}
		if err := repo.CreateBook(book); err != nil {
			return inserted, skipped, fmt.Errorf("line %d: failed to insert %q: %w", line, title, err)
		}
		if verbose {
			log.Printf("Inserted %s - %s (%s)", isbn, title, author)
		}
		inserted++
	}

	return inserted, skipped, nil
}
