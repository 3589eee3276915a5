package domain

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Capacity is the maximum number of confirmed inscriptions an event accepts.
// The zero value is unbounded.
type Capacity struct {
	limit   int
	bounded bool
}

// Unbounded returns a Capacity with no upper limit.
func Unbounded() Capacity { return Capacity{} }

// Limited returns a Capacity of n seats. Negative values are clamped to zero.
func Limited(n int) Capacity {
	if n < 0 {
		n = 0
	}
	return Capacity{limit: n, bounded: true}
}

// Bounded reports whether the capacity has an upper limit.
func (c Capacity) Bounded() bool { return c.bounded }

// Limit returns the seat limit. It is meaningless when Bounded is false.
func (c Capacity) Limit() int { return c.limit }

func (c Capacity) String() string {
	if !c.bounded {
		return "unbounded"
	}
	return strconv.Itoa(c.limit)
}

// MarshalJSON encodes an unbounded capacity as null and a bounded one as a number.
func (c Capacity) MarshalJSON() ([]byte, error) {
	if !c.bounded {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(c.limit)), nil
}

func (c *Capacity) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Unbounded()
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("capacity: %w", err)
	}
	*c = Limited(n)
	return nil
}

// Scan maps a nullable integer column onto Capacity (NULL is unbounded).
func (c *Capacity) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*c = Unbounded()
	case int64:
		*c = Limited(int(v))
	case int32:
		*c = Limited(int(v))
	case int:
		*c = Limited(v)
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return fmt.Errorf("capacity: %w", err)
		}
		*c = Limited(n)
	default:
		return fmt.Errorf("capacity: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (c Capacity) Value() (driver.Value, error) {
	if !c.bounded {
		return nil, nil
	}
	return int64(c.limit), nil
}

// EventSnapshot is a read-only view of an event owned by the event catalog.
// swagger:model EventSnapshot
type EventSnapshot struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Capacity         Capacity  `json:"capacity" swaggertype:"integer"`
	ConfirmedCount   int       `json:"confirmed_count"`
	Published        bool      `json:"published"`
	RegistrationOpen bool      `json:"registration_open"`
	StartDate        time.Time `json:"start_date"`
	Price            int64     `json:"price"`
}

// EventCatalog is the read-only source of event metadata.
type EventCatalog interface {
	GetEvent(ctx context.Context, id string) (*EventSnapshot, error)
}
