package models

import (
	"encoding/json"
	"fmt"
)

// Classification is one of the two file categories. It drives the download
// directory, the rename prefix and the destination directory.
type Classification int

const (
	ClassificationA Classification = iota + 1
	ClassificationB
)

func (c Classification) String() string {
	switch c {
	case ClassificationA:
		return "A"
	case ClassificationB:
		return "B"
	default:
		return fmt.Sprintf("Classification(%d)", int(c))
	}
}

func (c Classification) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}
