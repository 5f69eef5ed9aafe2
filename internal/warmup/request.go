package warmup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidRequest = errors.New("invalid warm request")

// Request asks the warmer to resolve every location of one artist.
type Request struct {
	ArtistID int `json:"artist_id"`
}

// DecodeRequest accepts either {"artist_id": N} or a bare integer.
func DecodeRequest(value []byte) (Request, error) {
	value = bytes.TrimSpace(value)
	var req Request
	if len(value) > 0 && value[0] == '{' {
		if err := json.Unmarshal(value, &req); err != nil {
			return Request{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	} else {
		id, err := strconv.Atoi(string(value))
		if err != nil {
			return Request{}, fmt.Errorf("%w: %q", ErrInvalidRequest, value)
		}
		req.ArtistID = id
	}
	if req.ArtistID <= 0 {
		return Request{}, fmt.Errorf("%w: artist id %d", ErrInvalidRequest, req.ArtistID)
	}
	return req, nil
}

// Encode returns the message key and value published for r.
func (r Request) Encode() (key, value []byte, err error) {
	value, err = json.Marshal(r)
	if err != nil {
		return nil, nil, err
	}
	return []byte(strconv.Itoa(r.ArtistID)), value, nil
}
