package domain

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page selects one page of a listing, numbered from 1.
type Page struct {
	Number int
	Size   int
}

// NewPage validates page parameters. Zero values take the defaults.
func NewPage(number, size int) (Page, error) {
	if number == 0 {
		number = 1
	}
	if size == 0 {
		size = DefaultPageSize
	}
	if number < 1 {
		return Page{}, &ValidationError{Field: "page", Message: "must be at least 1"}
	}
	if size < 1 || size > MaxPageSize {
		return Page{}, &ValidationError{Field: "size", Message: "must be between 1 and 100"}
	}
	return Page{Number: number, Size: size}, nil
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Limit()
}

func (p Page) Limit() int {
	if p.Size <= 0 {
		return DefaultPageSize
	}
	return p.Size
}

type PageResult[T any] struct {
	Total int
	Page  int
	Size  int
	Items []T
}
