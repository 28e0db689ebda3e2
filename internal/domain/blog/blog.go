package blog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/noobLue/fullstack5pw/internal/domain/account"
)

var (
	// ErrInvalidBlog signals invalid blog parameters.
	ErrInvalidBlog = errors.New("invalid blog")
	// ErrNotFound is returned when no blog matches the identifier.
	ErrNotFound = errors.New("blog not found")
	// ErrForbidden is returned when a caller tries to delete another account's blog.
	ErrForbidden = errors.New("only the creator may delete this blog")
)

const (
	MaxTitleLength  = 300
	MaxAuthorLength = 200
	MaxURLLength    = 2048
)

// ID represents Blog identifier.
type ID = uuid.UUID

// Owner summarizes the account that created a blog.
type Owner struct {
	ID       account.ID
	Username string
	Name     string
}

// Blog is a user-submitted link with a like counter.
type Blog struct {
	ID     ID
	Title  string
	Author string
	URL    string
	Likes  int
	// Seq is the creation-order marker assigned by the store. It is strictly
	// increasing and never reused.
	Seq       int64
	Owner     Owner
	CreatedAt time.Time
}

// Params represents the input values required to create a Blog.
type Params struct {
	ID        ID
	Title     string
	Author    string
	URL       string
	Owner     Owner
	CreatedAt time.Time
}

// New creates a new Blog after validating params. Likes start at zero and Seq
// is left for the repository to assign.
func New(params Params) (*Blog, error) {
	title := strings.TrimSpace(params.Title)
	author := strings.TrimSpace(params.Author)
	url := strings.TrimSpace(params.URL)

	if err := validateField("title", title, MaxTitleLength); err != nil {
		return nil, err
	}
	if err := validateField("author", author, MaxAuthorLength); err != nil {
		return nil, err
	}
	if err := validateField("url", url, MaxURLLength); err != nil {
		return nil, err
	}
	if params.Owner.ID == uuid.Nil {
		return nil, fmt.Errorf("%w: owner is required", ErrInvalidBlog)
	}

	id := params.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Blog{
		ID:        id,
		Title:     title,
		Author:    author,
		URL:       url,
		Owner:     params.Owner,
		CreatedAt: params.CreatedAt,
	}, nil
}

func validateField(name, value string, max int) error {
	if value == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidBlog, name)
	}
	if utf8.RuneCountInString(value) > max {
		return fmt.Errorf("%w: %s must be at most %d characters", ErrInvalidBlog, name, max)
	}
	return nil
}

// OwnedBy reports whether the given account created the blog.
func (b *Blog) OwnedBy(id account.ID) bool {
	return id != uuid.Nil && b.Owner.ID == id
}

// Clone returns a copy safe to hand out across goroutines.
func (b *Blog) Clone() *Blog {
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// RanksBefore reports whether a sorts before other: more likes first, then
// earlier creation.
func (b *Blog) RanksBefore(other *Blog) bool {
	if b.Likes != other.Likes {
		return b.Likes > other.Likes
	}
	return b.Seq < other.Seq
}

// SortByRanking orders blogs in place by likes descending, creation order ascending.
func SortByRanking(blogs []*Blog) {
	sort.SliceStable(blogs, func(i, j int) bool {
		return blogs[i].RanksBefore(blogs[j])
	})
}
