package feed

import "errors"

var (
	ErrFeedUnreachable  = errors.New("feed unreachable")
	ErrInvalidFeed      = errors.New("invalid feed document")
	ErrNoItemFound      = errors.New("no item found")
	ErrNoEnclosureFound = errors.New("no enclosure found")
)
