package catalog

import "errors"

var (
	ErrUnknownProduct   = errors.New("unknown product")
	ErrUnknownVariant   = errors.New("unknown variant")
	ErrDuplicateProduct = errors.New("product already exists")
	ErrDuplicateVariant = errors.New("variant already exists")
	ErrInvalidProduct   = errors.New("invalid product")
	ErrInvalidVariant   = errors.New("invalid variant")
	ErrInvalidWeight    = errors.New("weight per unit must be > 0")
	ErrInvalidPrice     = errors.New("unit price must be >= 0")
)
