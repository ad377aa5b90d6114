package envelope

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
)

const (
	// NonceSize is the AES-GCM nonce length.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag length.
	TagSize = 16
)

// Envelope is one encrypted secret: the nonce and the ciphertext with its
// authentication tag appended.
//
// Its JSON form is {"iv":[...],"data":[...]} with bytes as integers, which is
// how existing browser installations persisted envelopes.
type Envelope struct {
	Nonce []byte
	Data  []byte
}

type wireEnvelope struct {
	IV   byteArray `json:"iv"`
	Data byteArray `json:"data"`
}

// Validate checks the nonce length and that Data can hold a tag.
func (e Envelope) Validate() error {
	if len(e.Nonce) != NonceSize {
		return errors.Join(ErrInvalidEnvelope, errors.New("nonce must be 12 bytes"))
	}
	if len(e.Data) < TagSize {
		return errors.Join(ErrInvalidEnvelope, errors.New("ciphertext shorter than tag"))
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireEnvelope{IV: e.Nonce, Data: e.Data})
}

// UnmarshalJSON implements json.Unmarshaler. Structural checks are left to
// Validate so a decoded but unusable envelope can still be inspected.
func (e *Envelope) UnmarshalJSON(b []byte) error {
	var w wireEnvelope
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	e.Nonce = w.IV
	e.Data = w.Data
	return nil
}

// Marshal returns the stored form of the envelope.
func (e Envelope) Marshal() ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(e)
}

// Parse decodes and validates a stored envelope.
func Parse(b []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(b, &e); err != nil {
		return Envelope{}, errors.Join(ErrInvalidEnvelope, err)
	}
	if err := e.Validate(); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

// byteArray encodes as a JSON array of integers instead of base64.
type byteArray []byte

func (a byteArray) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(len(a)*4 + 2)
	buf.WriteByte('[')
	for i, b := range a {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Itoa(int(b)))
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func (a *byteArray) UnmarshalJSON(b []byte) error {
	var ints []int
	if err := json.Unmarshal(b, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return errors.New("byte value out of range: " + strconv.Itoa(v))
		}
		out[i] = byte(v)
	}
	*a = out
	return nil
}
