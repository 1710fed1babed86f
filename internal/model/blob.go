package model

import (
	"time"
)

type Blob struct {
	Key      string
	Value    []byte
	Modified time.Time
}
