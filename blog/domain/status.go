package domain

import (
	"database/sql/driver"
	"fmt"
)

// Status is the moderation state of a post or comment.
type Status uint8

const (
	StatusShow Status = iota + 1
	StatusHide
)

// ParseStatus converts the wire form of a status. Anything other than
// "show" or "hide" fails with ErrInvalidStatus.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "show":
		return StatusShow, nil
	case "hide":
		return StatusHide, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

func (s Status) String() string {
	switch s {
	case StatusShow:
		return "show"
	case StatusHide:
		return "hide"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

func (s Status) Valid() bool {
	return s == StatusShow || s == StatusHide
}

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status as its text form.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStatus, uint8(s))
	}
	return s.String(), nil
}

func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
}
