// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: BUSL-1.1

package structs

import (
	"bytes"
	"encoding/json"

	msgpack "github.com/hashicorp/go-msgpack/v2/codec"
	"github.com/hashicorp/go-version"
)

// SchemaVersion is the wire-format version stamped into encoded Schedules.
// Bump it when a field is added or removed from the wire contract of
// spec.md §6; readers log (never fail) on a version mismatch.
var SchemaVersion = version.Must(version.NewVersion("1.0.0"))

// msgpackHandle is shared by Encode/Decode so every caller gets identical
// wire framing, matching the teacher's own RPC codec configuration.
var msgpackHandle = &msgpack.MsgpackHandle{}

// EncodeMsgpack serializes s using the compact alternate wire format,
// prefixed with the current SchemaVersion string.
func (s *Schedule) EncodeMsgpack() ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf, msgpackHandle)
	envelope := struct {
		SchemaVersion string    `msgpack:"schema_version"`
		Schedule      *Schedule `msgpack:"schedule"`
	}{
		SchemaVersion: SchemaVersion.String(),
		Schedule:      s,
	}
	if err := enc.Encode(envelope); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeScheduleMsgpack decodes bytes produced by EncodeMsgpack. A
// SchemaVersion mismatch between encoder and decoder is not fatal — it is
// returned via the second value for the caller to log, per spec.md §7's
// "recover locally, annotate" policy; the Schedule is still decoded and
// returned.
func DecodeScheduleMsgpack(data []byte) (*Schedule, error, error) {
	var envelope struct {
		SchemaVersion string    `msgpack:"schema_version"`
		Schedule      *Schedule `msgpack:"schedule"`
	}
	dec := msgpack.NewDecoder(bytes.NewReader(data), msgpackHandle)
	if err := dec.Decode(&envelope); err != nil {
		return nil, nil, err
	}

	var versionWarning error
	if envelope.SchemaVersion != "" {
		if got, err := version.NewVersion(envelope.SchemaVersion); err == nil {
			if !got.Equal(SchemaVersion) {
				versionWarning = &SchemaVersionMismatchError{Got: got, Want: SchemaVersion}
			}
		}
	}
	return envelope.Schedule, versionWarning, nil
}

// SchemaVersionMismatchError is a non-fatal warning surfaced by
// DecodeScheduleMsgpack when the encoded payload's schema version differs
// from the running SchemaVersion.
type SchemaVersionMismatchError struct {
	Got, Want *version.Version
}

func (e *SchemaVersionMismatchError) Error() string {
	return "structs: schedule schema version mismatch: got " + e.Got.String() + " want " + e.Want.String()
}

// EncodeJSON serializes s using the mandated self-describing JSON format
// (spec.md §6), field names as documented.
func (s *Schedule) EncodeJSON() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeScheduleJSON is the inverse of EncodeJSON.
func DecodeScheduleJSON(data []byte) (*Schedule, error) {
	var s Schedule
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}
