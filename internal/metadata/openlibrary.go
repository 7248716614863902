// Package metadata fetches book and author details from the OpenLibrary API.
package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/shelfwise/catalog/internal/errs"
	"github.com/shelfwise/catalog/internal/utils"
)

const userAgent = "ShelfwiseCatalog/1.0 (https://github.com/shelfwise/catalog)"

// Book contains the book details fetched from the external catalog.
type Book struct {
	Title           string
	PublicationDate *time.Time
	ISBN10          string
	ISBN13          string
	PublisherNames  []string
	AuthorKeys      []string
}

// Author contains the author details fetched from the external catalog.
type Author struct {
	Name      string
	BirthDate *time.Time
	DeathDate *time.Time
	Biography string
}

// OpenLibraryClient fetches book metadata from the OpenLibrary API.
type OpenLibraryClient struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rateLimiter
}

type rateLimiter struct {
	mu       sync.Mutex
	lastCall time.Time
	interval time.Duration
}

func newRateLimiter(interval time.Duration) *rateLimiter {
	return &rateLimiter{interval: interval}
}

func (r *rateLimiter) wait() {
	r.mu.Lock()
	defer r.mu.Unlock()

	since := time.Since(r.lastCall)
	if since < r.interval {
		time.Sleep(r.interval - since)
	}
	r.lastCall = time.Now()
}

// NewOpenLibraryClient creates a new OpenLibrary API client with rate
// limiting. An empty baseURL selects the public API.
func NewOpenLibraryClient(baseURL string, timeout time.Duration) *OpenLibraryClient {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &OpenLibraryClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: newRateLimiter(time.Second), // 1 request per second
	}
}

type openLibraryBook struct {
	Title       string   `json:"title"`
	PublishDate string   `json:"publish_date"`
	Publishers  []string `json:"publishers"`
	ISBN10      []string `json:"isbn_10"`
	ISBN13      []string `json:"isbn_13"`
	Authors     []struct {
		Key string `json:"key"`
	} `json:"authors"`
}

type openLibraryAuthor struct {
	Name      string          `json:"name"`
	BirthDate string          `json:"birth_date"`
	DeathDate string          `json:"death_date"`
	Bio       json.RawMessage `json:"bio"`
}

// BookByISBN looks up a book by its ISBN. A missing ISBN maps to a not-found
// failure so callers can tell it apart from transport errors.
func (c *OpenLibraryClient) BookByISBN(ctx context.Context, isbn string) (*Book, error) {
	isbn = normalizeISBN(isbn)
	if isbn == "" {
		return nil, errs.Validationf("isbn is required")
	}

	c.rateLimiter.wait()

	url := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch ISBN data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errs.NotFoundf("no book found for ISBN %s", isbn)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var bookData openLibraryBook
	if err := json.NewDecoder(resp.Body).Decode(&bookData); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	book := &Book{
		Title:           bookData.Title,
		PublicationDate: parseLenientDate(bookData.PublishDate),
		PublisherNames:  bookData.Publishers,
	}
	if len(bookData.ISBN10) > 0 {
		book.ISBN10 = bookData.ISBN10[0]
	}
	if len(bookData.ISBN13) > 0 {
		book.ISBN13 = bookData.ISBN13[0]
	}
	// Fall back to the requested ISBN when the record omits its own.
	if book.ISBN10 == "" && book.ISBN13 == "" {
		if len(isbn) == 13 {
			book.ISBN13 = isbn
		} else {
			book.ISBN10 = isbn
		}
	}
	for _, a := range bookData.Authors {
		book.AuthorKeys = append(book.AuthorKeys, a.Key)
	}

	return book, nil
}

// AuthorsByKeys fetches author details for the given OpenLibrary keys
// (e.g. "/authors/OL23919A"). Keys that resolve to nothing are skipped.
func (c *OpenLibraryClient) AuthorsByKeys(ctx context.Context, keys []string) ([]Author, error) {
	authors := make([]Author, 0, len(keys))
	for _, key := range keys {
		author, err := c.fetchAuthor(ctx, key)
		if err != nil {
			if errs.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		authors = append(authors, *author)
	}
	return authors, nil
}

func (c *OpenLibraryClient) fetchAuthor(ctx context.Context, key string) (*Author, error) {
	if key == "" {
		return nil, errs.NotFoundf("empty author key")
	}

	c.rateLimiter.wait()

	url := fmt.Sprintf("%s%s.json", c.baseURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch author data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errs.NotFoundf("no author found for key %s", key)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var authorData openLibraryAuthor
	if err := json.NewDecoder(resp.Body).Decode(&authorData); err != nil {
		return nil, fmt.Errorf("decode author response: %w", err)
	}

	return &Author{
		Name:      authorData.Name,
		BirthDate: parseLenientDate(authorData.BirthDate),
		DeathDate: parseLenientDate(authorData.DeathDate),
		Biography: decodeBio(authorData.Bio),
	}, nil
}

// decodeBio handles the two shapes OpenLibrary uses for biographies: a plain
// string or a {"type", "value"} object.
func decodeBio(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

// parseLenientDate parses the free-form dates external records carry.
// Unparseable values become nil rather than an error; external data is
// best-effort.
func parseLenientDate(value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parsed, err := utils.ParseFlexibleDate(value)
	if err != nil {
		return nil
	}
	return &parsed
}

// normalizeISBN strips separators and whitespace from an ISBN.
func normalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return strings.TrimSpace(isbn)
}
