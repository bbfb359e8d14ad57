package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrClientPhone        = errors.New("phone must be 11 digits starting with 7")
	ErrClientOperatorCode = errors.New("operator code must match phone digits 2-4 and be in [900,999]")
)

// Client is a message recipient. Phone numbers follow the 7XXXXXXXXXX
// format; the operator code duplicates digits 2-4 of the phone and is
// what mailings filter on, together with the free-text tag.
type Client struct {
	ID           int64
	Phone        string
	OperatorCode int
	Tag          string
	Timezone     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Validate enforces the phone/operator-code consistency invariant and
// checks that the timezone resolves.
func (c *Client) Validate() error {
	if len(c.Phone) != 11 || c.Phone[0] != '7' {
		return ErrClientPhone
	}
	if _, err := strconv.ParseUint(c.Phone, 10, 64); err != nil {
		return ErrClientPhone
	}
	code, err := strconv.Atoi(c.Phone[1:4])
	if err != nil || code != c.OperatorCode || c.OperatorCode < 900 || c.OperatorCode > 999 {
		return ErrClientOperatorCode
	}
	if _, err = c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the client's IANA timezone name.
func (c *Client) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("client %d timezone: %w", c.ID, err)
	}
	return loc, nil
}

// PhoneNumber returns the phone as the integer the send gateway expects.
func (c *Client) PhoneNumber() int64 {
	n, _ := strconv.ParseInt(c.Phone, 10, 64)
	return n
}
