package buffers

import (
	"bytes"
	"testing"
)

func TestEncodeJSONThenDecodeJSONRoundTrips(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	in := payload{Name: "Ada", Age: 36}

	encoded, err := EncodeJSON(in, 0)
	if err != nil {
		t.Fatalf("EncodeJSON: %v", err)
	}

	var out payload
	if err := DecodeJSON(bytes.NewReader(encoded), &out); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if out != in {
		t.Fatalf("DecodeJSON result = %+v, want %+v", out, in)
	}
}
