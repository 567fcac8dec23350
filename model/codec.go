package model

import (
	"fmt"

	"gopkg.in/launchdarkly/go-jsonstream.v1/jreader"
	"gopkg.in/launchdarkly/go-jsonstream.v1/jwriter"
)

// DecodeError means a JSON document could not be bound to an entity: either it was not
// valid JSON, or its shape did not match (for instance a string where a number belongs).
type DecodeError struct {
	Entity string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %s", e.Entity, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

type jsonWritable interface {
	WriteToJSONWriter(*jwriter.Writer)
}

func decode(entity string, data []byte, read func(*jreader.Reader)) error {
	r := jreader.NewReader(data)
	read(&r)
	if err := r.Error(); err != nil {
		return &DecodeError{Entity: entity, Err: err}
	}
	if err := r.RequireEOF(); err != nil {
		return &DecodeError{Entity: entity, Err: err}
	}
	return nil
}

func encode(v jsonWritable) ([]byte, error) {
	w := jwriter.NewWriter()
	v.WriteToJSONWriter(&w)
	if err := w.Error(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// readString treats null as an empty string.
func readString(r *jreader.Reader) string {
	s, _ := r.StringOrNull()
	return s
}
