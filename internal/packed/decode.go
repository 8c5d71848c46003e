// Package packed implements the wire format for stored scientific objects:
// base64( zlib( msgpack({"data": <tagged object>}) ) ). The format is
// bit-exact with the payloads already in the object store, so Decode must
// stay strict: a corrupt payload fails at the offending stage instead of
// silently truncating.
package packed

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"matapi/internal/model"
)

// Decode turns a transport-encoded payload string into a typed scientific
// object. It is pure and deterministic; any stage failure aborts the whole
// decode and surfaces as a *DecodeError tagged with the stage.
func Decode(payload string) (model.Object, error) {
	compressed, err := base64.StdEncoding.Strict().DecodeString(payload)
	if err != nil {
		return nil, stageErr(StageBase64, err)
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, stageErr(StageInflate, err)
	}
	packedBytes, err := io.ReadAll(zr)
	if cerr := zr.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, stageErr(StageInflate, err)
	}

	var envelope map[string]any
	if err := msgpack.Unmarshal(packedBytes, &envelope); err != nil {
		return nil, stageErr(StageUnpack, err)
	}

	data, ok := envelope["data"]
	if !ok {
		return nil, stageErrf(StageUnpack, "payload envelope has no data field")
	}

	obj, err := Rebuild(data)
	if err != nil {
		return nil, err
	}
	return obj, nil
}
