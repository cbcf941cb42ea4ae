package apperrors

import "errors"

// ErrFetch indicates the raw rate document could not be obtained from the network or filesystem.
var ErrFetch = errors.New("fetch error")

// ErrParse indicates a rate document that is not a well-formed feed.
var ErrParse = errors.New("parse error")

// ErrValidation indicates a parsed rate batch that cannot replace the rate table.
var ErrValidation = errors.New("validation error")

// ErrRateUnavailable indicates no direct or synthesizable rate exists for a currency pair.
var ErrRateUnavailable = errors.New("rate unavailable")

// ErrUnknownCurrency indicates a currency without a known subunit scale.
var ErrUnknownCurrency = errors.New("unknown currency")

// ErrInvalidCache indicates a missing cache path where one is required.
var ErrInvalidCache = errors.New("invalid cache path")
