package directory

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/louisbranch/userdesk/internal/services/userdesk/roster"
)

// record is the JSON shape of one user in list and create responses.
type record struct {
	ID         wireID `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department,omitempty"`
}

func (r record) user() roster.User {
	return roster.User{
		ID:         roster.ID(r.ID),
		Name:       r.Name,
		Email:      r.Email,
		Department: r.Department,
	}
}

// createRequest never carries an id; the server assigns one.
type createRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

type updateRequest struct {
	ID         wireID `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// wireID accepts ids encoded as JSON numbers or strings and writes integer
// ids back as numbers so the endpoint sees the type it issued.
type wireID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *wireID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
		*id = wireID(value)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = wireID(number.String())
	return nil
}

// MarshalJSON implements json.Marshaler. Any id that is a valid JSON number
// literal goes out as a number, whatever its magnitude.
func (id wireID) MarshalJSON() ([]byte, error) {
	if id != "" {
		if out, err := json.Marshal(json.Number(id)); err == nil {
			return out, nil
		}
	}
	return json.Marshal(string(id))
}
