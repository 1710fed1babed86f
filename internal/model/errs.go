package model

import "fmt"

var (
	_ error = KeyNotFoundError{}
	_ error = SeriesNotFoundError{}
	_ error = CardNotFoundError{}
	_ error = InvalidPageError{}
	_ error = InvalidCountError{}
)

type KeyNotFoundError struct {
	Key string
}

func (err KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %s not found", err.Key)
}

type SeriesNotFoundError struct {
	ID string
}

func (err SeriesNotFoundError) Error() string {
	return fmt.Sprintf("series %s not found", err.ID)
}

type CardNotFoundError struct {
	ID string
}

func (err CardNotFoundError) Error() string {
	return fmt.Sprintf("card %s not found", err.ID)
}

type InvalidPageError struct {
	Index int
	Size  int
}

func (err InvalidPageError) Error() string {
	return fmt.Sprintf("invalid page %d of size %d", err.Index, err.Size)
}

type InvalidCountError struct {
	CardID  string
	Counter Counter
	Value   int
}

func (err InvalidCountError) Error() string {
	return fmt.Sprintf("invalid %s count for %s: %d", err.Counter, err.CardID, err.Value)
}
