package console

import "errors"

// ErrParse is returned for a command line that cannot be split into words.
var ErrParse = errors.New("cannot parse command line")
