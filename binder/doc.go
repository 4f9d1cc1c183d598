// Package binder extracts raw request sources and binds them to schemas.
//
// Query and form values arrive as url.Values; ConvertQuery turns them into
// the mapping a schema validates, keeping every value of sequence fields.
// JSONBody decodes a JSON body into plain values with numbers kept as
// json.Number, so integer and float inputs validate without precision loss.
//
//	raw, err := binder.JSONBody(r)
//	if errors.Is(err, binder.ErrUnsupportedMediaType) {
//		// respond 415
//	}
//	out := binder.Bind(raw, itemSchema, false)
//	if out.Failed() {
//		// out.Issues lists what is wrong
//	}
//
// Extraction never validates and Bind never reads the request, so the two
// steps can be reported separately.
package binder
