package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookclub/internal/auth"
	"github.com/mrlokans/bookclub/internal/entities"
)

// MsgNoMatches is shown when a search returns no books.
const MsgNoMatches = "Sorry, there are no matches for your search."

// BookSearcher provides substring search over the catalog.
type BookSearcher interface {
	SearchBooks(query string) ([]entities.Book, error)
}

// SearchController serves the catalog search page.
type SearchController struct {
	searcher BookSearcher
}

func NewSearchController(searcher BookSearcher) *SearchController {
	return &SearchController{searcher: searcher}
}

// SearchPage renders the search form with no results. No query runs on GET.
func (controller *SearchController) SearchPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     "Search",
		"Username":  auth.GetUsername(c),
		"Books":     []entities.Book{},
		"Searched":  false,
		"CSRFToken": auth.GetCSRFToken(c),
	})
}

// Search runs the submitted query against isbn, title and author. An empty
// query matches the whole catalog; the repository trims whitespace.
func (controller *SearchController) Search(c *gin.Context) {
	query := c.PostForm("book")

	books, err := controller.searcher.SearchBooks(query)
	if err != nil {
		c.String(http.StatusInternalServerError, "Error searching books")
		return
	}

	message := ""
	if len(books) == 0 {
		message = MsgNoMatches
	}

	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     "Search",
		"Username":  auth.GetUsername(c),
		"Books":     books,
		"Searched":  true,
		"Query":     query,
		"Message":   message,
		"CSRFToken": auth.GetCSRFToken(c),
	})
}
