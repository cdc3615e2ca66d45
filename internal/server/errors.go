package server

import "errors"

// Message returned when the downloader produced nothing usable
const unknownErrorMessage = "Unknown error occurred."

// ErrMissingURL is returned when /download/ is called without a URL
var ErrMissingURL = errors.New("url is required")
