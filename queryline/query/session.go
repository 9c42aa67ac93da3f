package query

import (
	"encoding/json"

	qlerrors "github.com/queryline/queryline/queryline/errors"
)

// Session persistence is an explicit codec step at the system boundary: the
// engine itself only ever sees Spec values.

// EncodeSession serializes a spec for session storage.
func EncodeSession(spec *Spec) ([]byte, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSession, "encode query session", err)
	}
	return b, nil
}

// DecodeSession restores a spec from its session form. A decoded spec is an
// equally valid Spec source as freshly submitted parameters.
func DecodeSession(b []byte) (*Spec, error) {
	var spec Spec
	if err := json.Unmarshal(b, &spec); err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSession, "decode query session", err)
	}
	return &spec, nil
}
