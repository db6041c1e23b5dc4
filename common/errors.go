package common

import "errors"

// ErrSizeMismatch is returned (wrapped) when the planes handed to a pass differ in size.
var ErrSizeMismatch = errors.New("plane size mismatch")
