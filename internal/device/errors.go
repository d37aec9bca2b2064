package device

import "errors"

// ErrInvalidInput is returned for validation failures translated from
// the underlying cache/pagemap error kinds — the category a kernel
// transport would map to EINVAL.
var ErrInvalidInput = errors.New("device: invalid input")
