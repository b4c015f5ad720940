// Package codec provides the JSON serializer shared by statistics and the websocket hub.
package codec

import (
	json "github.com/goccy/go-json"
)

type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte, v interface{}) error
}

type jsonCodec struct{}

func NewJSON() Codec {
	return jsonCodec{}
}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
