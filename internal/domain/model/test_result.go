package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type TestResult struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	TestName    string    `db:"test_name" json:"test_name"`
	Score       float64   `db:"score" json:"score"`
	Hits        *float64  `db:"hits" json:"hits"`
	Misses      *float64  `db:"misses" json:"misses"`
	FalseAlarms *float64  `db:"false_alarms" json:"false_alarms"`
	Extra       Extra     `db:"extra" json:"extra"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TestResultWithUsername is a result joined with its owner's username, used by
// the admin listing.
type TestResultWithUsername struct {
	TestResult
	Username string `db:"username" json:"username"`
}

// Extra holds the free-form fields submitted alongside a result as a single
// JSON document. A nil Extra is stored and rendered as null.
type Extra []byte

func (e Extra) IsNull() bool {
	return len(e) == 0 || bytes.Equal(e, []byte("null"))
}

// Fields decodes the document into a map. A null document yields a nil map.
func (e Extra) Fields() (map[string]json.RawMessage, error) {
	if e.IsNull() {
		return nil, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(e, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func (e Extra) MarshalJSON() ([]byte, error) {
	if e.IsNull() {
		return []byte("null"), nil
	}
	return e, nil
}

func (e *Extra) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*e = nil
		return nil
	}
	*e = append((*e)[:0], data...)
	return nil
}

func (e Extra) Value() (driver.Value, error) {
	if e.IsNull() {
		return nil, nil
	}
	return string(e), nil
}

func (e *Extra) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*e = nil
	case []byte:
		*e = append(Extra(nil), v...)
	case string:
		*e = Extra(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("model.Extra: cannot scan %T: %w", src, err)
		}
		*e = b
	}
	return nil
}
