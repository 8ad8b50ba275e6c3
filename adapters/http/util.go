package authhttp

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
)

// E.164: plus sign, then 2-15 digits with a non-zero lead.
var reE164 = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

func decodeJSON(r *http.Request, dst any) error {
	if r == nil || r.Body == nil {
		return errors.New("missing_body")
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// Reject trailing garbage.
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("invalid_json")
	}
	return nil
}
