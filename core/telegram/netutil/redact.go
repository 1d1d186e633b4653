package netutil

import (
	"errors"
	"net/url"
)

// WithoutURL drops the request URL from err. Bot API URLs carry the bot token.
func WithoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
