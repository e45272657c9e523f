package inventory

import "encoding/json"

// MarshalJSON emits a bare string when the header has a single value,
// and a JSON array when it was recorded with repeats (e.g. Set-Cookie).
func (h HeaderValue) MarshalJSON() ([]byte, error) {
	if h.multi != nil {
		return json.Marshal(h.multi)
	}
	return json.Marshal(h.single)
}

// UnmarshalJSON accepts either form on the way back in.
func (h *HeaderValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		h.single = s
		h.multi = nil
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	h.multi = list
	h.single = ""
	return nil
}
