// Package services provides domain services for order editing that do not
// belong to a single aggregate root. They are pure: every input is passed in
// and nothing is persisted here.
//
// The package includes:
//   - FieldClassifier: splits edited fields into change-controlled and direct buckets
//   - DecideEditPath: picks direct apply, change control, or both
//   - LineItemReconciler: resolves line item instructions into mutations or deltas
//   - ParticipantGuard: limits who may rewrite an order's approver set
//   - ChangeRequestDescriber: renders the summary stored on a change request
//   - CancellationPolicy: vetoes cancellation while linked fulfillment is active
//   - EditabilityPolicy: decides whether an order accepts edits at all
//   - ReadinessEvaluator: derives the ready-for-booking flag
package services
