package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

type Attribute struct {
	Key   string
	Value any
}

// CustomData is a JSON object that remembers key insertion order, so the
// outbound document serializes the attributes exactly as the client sent them.
// The zero value is an empty object.
type CustomData struct {
	attrs []Attribute
	index map[string]int
}

func NewCustomData(attrs ...Attribute) CustomData {
	var cd CustomData
	for _, a := range attrs {
		cd.Set(a.Key, a.Value)
	}
	return cd
}

func (c CustomData) Len() int {
	return len(c.attrs)
}

func (c CustomData) Get(key string) (any, bool) {
	i, ok := c.index[key]
	if !ok {
		return nil, false
	}
	return c.attrs[i].Value, true
}

func (c CustomData) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Set replaces an existing key in place or appends a new one.
func (c *CustomData) Set(key string, value any) {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[key]; ok {
		c.attrs[i].Value = value
		return
	}
	c.index[key] = len(c.attrs)
	c.attrs = append(c.attrs, Attribute{Key: key, Value: value})
}

// Entries returns a copy of the attributes in insertion order.
func (c CustomData) Entries() []Attribute {
	out := make([]Attribute, len(c.attrs))
	copy(out, c.attrs)
	return out
}

func (c CustomData) Keys() []string {
	keys := make([]string, len(c.attrs))
	for i, a := range c.attrs {
		keys[i] = a.Key
	}
	return keys
}

func (c CustomData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range c.attrs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(a.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(a.Value)
		if err != nil {
			return nil, fmt.Errorf("custom_data.%s: %w", a.Key, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (c *CustomData) UnmarshalJSON(data []byte) error {
	*c = CustomData{}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("custom_data must be a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("custom_data: unexpected key token %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("custom_data.%s: %w", key, err)
		}
		c.Set(key, value)
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
