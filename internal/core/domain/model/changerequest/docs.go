// Package changerequest models change control: a change request proposes
// order edits, and each required approver of the order reviews it.
//
// A request is created Proposed with one review row per approver. The
// author's own row is approved on submission. Once every row is Approved the
// request is Approved; a single Rejected row rejects it. Applying an approved
// request to the order happens outside this package.
package changerequest
