package handler

import (
	"github.com/dmitrymomot/httpvalidate/binder"
	"github.com/dmitrymomot/httpvalidate/pkg/schema"
)

// AggregatedError groups validation issues by request source.
// A key is present only for sources that were declared and failed;
// path_params is never populated.
type AggregatedError struct {
	BodyParams  schema.Issues `json:"body_params,omitempty"`
	FormParams  schema.Issues `json:"form_params,omitempty"`
	QueryParams schema.Issues `json:"query_params,omitempty"`
	PathParams  schema.Issues `json:"path_params,omitempty"`
}

// Empty reports whether no source failed.
func (a AggregatedError) Empty() bool {
	return len(a.BodyParams) == 0 && len(a.FormParams) == 0 &&
		len(a.QueryParams) == 0 && len(a.PathParams) == 0
}

// Aggregate combines the per-source outcomes of one request.
// It reports whether any source failed, with the failed sources' issues.
func Aggregate(query, body, form binder.Outcome) (bool, AggregatedError) {
	var agg AggregatedError
	if query.Failed() {
		agg.QueryParams = query.Issues
	}
	if body.Failed() {
		agg.BodyParams = body.Issues
	}
	if form.Failed() {
		agg.FormParams = form.Issues
	}
	return !agg.Empty(), agg
}

// validationErrorBody is the respond-mode payload.
type validationErrorBody struct {
	ValidationError AggregatedError `json:"validation_error"`
}
