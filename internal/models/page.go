// internal/models/page.go
package models

import "math"

// Direction is the ordering applied to a sort property.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortProperty names a Car attribute that listings and searches may be ordered by.
type SortProperty string

const (
	SortByID        SortProperty = "id"
	SortByMake      SortProperty = "make"
	SortByModel     SortProperty = "model"
	SortByModelYear SortProperty = "modelYear"
	SortByColor     SortProperty = "color"
	SortByPrice     SortProperty = "price"
)

// SortProperties lists every property accepted in a sort parameter.
var SortProperties = []SortProperty{
	SortByID,
	SortByMake,
	SortByModel,
	SortByModelYear,
	SortByColor,
	SortByPrice,
}

type Order struct {
	Property  SortProperty
	Direction Direction
}

// PageRequest addresses one page of a listing. Page is zero-based.
// Callers must pass Page >= 0 and Size > 0.
type PageRequest struct {
	Page int
	Size int
	Sort []Order
}

// Offset is the index of the first element of the page. It saturates at
// math.MaxInt so that a far-away page stays beyond the last one.
func (p PageRequest) Offset() int {
	if p.Page <= 0 || p.Size <= 0 {
		return 0
	}
	if p.Page > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return p.Page * p.Size
}

// Page is one slice of a larger result set as reported by a backing store.
type Page[T any] struct {
	Content       []T
	TotalElements int64
	Number        int
	Size          int
}

func NewPage[T any](content []T, req PageRequest, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		Number:        req.Page,
		Size:          req.Size,
	}
}

func (p Page[T]) TotalPages() int {
	if p.Size <= 0 {
		return 0
	}
	return int((p.TotalElements + int64(p.Size) - 1) / int64(p.Size))
}

func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages()-1
}

func (p Page[T]) HasPrevious() bool {
	return p.Number > 0
}
