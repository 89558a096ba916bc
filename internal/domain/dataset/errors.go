package dataset

import "errors"

// ErrInvalidDataset is returned when a dataset cannot be decoded or fails validation.
var ErrInvalidDataset = errors.New("invalid dataset")
