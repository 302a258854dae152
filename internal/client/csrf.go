package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html"
)

const csrfFieldName = "csrfmiddlewaretoken"

var ErrNoCSRFToken = errors.New("csrf token field not found")

// LoadCSRFToken fetches a server-rendered page, keeps its session cookies
// and reads the token from the hidden csrfmiddlewaretoken field.
func (c *Client) LoadCSRFToken(ctx context.Context, pagePath string) error {
	req, err := c.newRequest(ctx, http.MethodGet, pagePath, nil)
	if err != nil {
		return err
	}

	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	token, err := FindCSRFToken(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading csrf token from %s: %w", pagePath, err)
	}
	c.SetCSRFToken(token)
	return nil
}

// FindCSRFToken returns the value of the first input named
// csrfmiddlewaretoken in an HTML document.
func FindCSRFToken(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return "", ErrNoCSRFToken
			}
			return "", z.Err()
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data != "input" {
				continue
			}
			var name, value string
			for _, attr := range tok.Attr {
				switch attr.Key {
				case "name":
					name = attr.Val
				case "value":
					value = attr.Val
				}
			}
			if name == csrfFieldName && value != "" {
				return value, nil
			}
		}
	}
}
