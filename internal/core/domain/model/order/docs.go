// Package order provides the purchase order aggregate shared between a buyer
// organization and its counterparties (supplier, forwarder, consignee, agent,
// broker, trucker).
//
// The package includes:
//   - Order: the aggregate root holding details, status, line items and participants
//   - Status: the order status state machine
//   - Field, FieldValues, Details: the editable order fields and their codecs
//   - LineItem, LineItemDraft, LineItemInstructions: line items and the
//     add/edit/remove/replace instructions that mutate them
//   - Participant: a user entitled to act on the order, optionally a required approver
//
// Key business rules:
//   - Every order has a buyer and a supplier organization
//   - Status follows Received -> Accepted -> Booked -> InTransit -> Delivered,
//     and Received, Accepted and Booked orders may be Cancelled
//   - Only Received and Accepted orders are eligible for change control
//   - Line items are replaced as whole units, never diffed field by field
//   - The participant set is always replaced as a whole and never empty
package order
