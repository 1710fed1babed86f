package embedded_dataset

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/horockey/cardshelf/internal/gateway/dataset"
	"github.com/horockey/cardshelf/internal/model"
)

//go:embed cards.json
var bundled []byte

var _ dataset.Source = embeddedDataset{}

type embeddedDataset struct{}

// New returns the dataset compiled into the binary.
func New() embeddedDataset {
	return embeddedDataset{}
}

func (embeddedDataset) Name() string {
	return "embedded"
}

func (embeddedDataset) Load(_ context.Context) (model.Bundle, error) {
	bundle, err := dataset.Decode(bundled)
	if err != nil {
		return model.Bundle{}, fmt.Errorf("decoding bundled dataset: %w", err)
	}
	return bundle, nil
}

// Raw returns a copy of the bundled cards.json.
func Raw() []byte {
	res := make([]byte, len(bundled))
	copy(res, bundled)
	return res
}
