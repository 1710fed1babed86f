package model

// Page is a zero-based fixed-size slice of a filtered list.
type Page[T any] struct {
	Items   []T  `json:"items"`
	Index   int  `json:"index"`
	Size    int  `json:"size"`
	Total   int  `json:"total"`
	HasMore bool `json:"hasMore"`
}

// Paginate cuts page number index out of items.
// Pages past the end are empty, not an error.
func Paginate[T any](items []T, index, size int) (Page[T], error) {
	if index < 0 || size <= 0 {
		return Page[T]{}, InvalidPageError{Index: index, Size: size}
	}

	total := len(items)
	res := Page[T]{
		Items: []T{},
		Index: index,
		Size:  size,
		Total: total,
	}

	// Compared by division, index*size may overflow.
	if total == 0 || index > (total-1)/size {
		return res, nil
	}

	from := index * size
	to := from + min(size, total-from)

	res.Items = make([]T, to-from)
	copy(res.Items, items[from:to])
	res.HasMore = index < (total-1)/size

	return res, nil
}
