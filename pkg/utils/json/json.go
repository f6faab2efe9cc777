// Package json routes all serialization through sonic so the stores and
// the API layer agree on one codec.
package json

import (
	"github.com/bytedance/sonic"
)

var (
	config = sonic.Config{
		CopyString:       true,
		ValidateString:   true,
		SortMapKeys:      true,
		CompactMarshaler: true,
	}.Froze()
)

func Marshal(v interface{}) ([]byte, error) {
	return config.Marshal(v)
}

func MarshalIndent(v interface{}, prefix, indent string) ([]byte, error) {
	return config.MarshalIndent(v, prefix, indent)
}

func Unmarshal(data []byte, v interface{}) error {
	return config.Unmarshal(data, v)
}

func MarshalString(v interface{}) (string, error) {
	return config.MarshalToString(v)
}

func UnmarshalString(data string, v interface{}) error {
	return config.UnmarshalFromString(data, v)
}
