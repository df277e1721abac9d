package order

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/pkg/errs"
)

// DateLayout is the wire and storage format of date-valued fields.
const DateLayout = "2006-01-02"

// Field names an editable order field as it appears in an edit payload.
type Field string

const (
	FieldPONumber            Field = "poNumber"
	FieldOrigin              Field = "origin"
	FieldDestination         Field = "destination"
	FieldTerms               Field = "terms"
	FieldShipMode            Field = "shipMode"
	FieldCargoReadyDate      Field = "cargoReadyDate"
	FieldDeliveryDate        Field = "deliveryDate"
	FieldSpecialInstructions Field = "specialInstructions"
	FieldIsHot               Field = "isHot"
	FieldSupplierOrg         Field = "supplierOrgId"
	FieldForwarderOrg        Field = "forwarderOrgId"
	FieldConsigneeOrg        Field = "consigneeOrgId"
	FieldAgentOrg            Field = "agentOrgId"
	FieldBrokerOrg           Field = "brokerOrgId"
	FieldTruckerOrg          Field = "truckerOrgId"
)

// AllFields returns every editable field in display order.
func AllFields() []Field {
	return []Field{
		FieldPONumber, FieldOrigin, FieldDestination, FieldTerms, FieldShipMode,
		FieldCargoReadyDate, FieldDeliveryDate, FieldSpecialInstructions, FieldIsHot,
		FieldSupplierOrg, FieldForwarderOrg, FieldConsigneeOrg, FieldAgentOrg, FieldBrokerOrg, FieldTruckerOrg,
	}
}

// ParseField validates a field name received from a caller.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if !slices.Contains(AllFields(), f) {
		return "", errs.NewValueIsInvalidErrorWithCause("field", fmt.Errorf("%q is not an editable order field", name))
	}
	return f, nil
}

// IsParticipantField reports the counterparty organization fields. Editing any
// of them changes who takes part in the order's message thread.
func (f Field) IsParticipantField() bool {
	switch f {
	case FieldSupplierOrg, FieldForwarderOrg, FieldConsigneeOrg, FieldAgentOrg, FieldBrokerOrg, FieldTruckerOrg:
		return true
	default:
		return false
	}
}

// Label is the human-readable name used in change request descriptions.
func (f Field) Label() string {
	var b strings.Builder
	for i, r := range string(f) {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	label := strings.TrimSuffix(b.String(), " id")
	return strings.ToUpper(label[:1]) + label[1:]
}

// Details holds the editable shipping information and counterparty references
// of an order. The buyer organization is not part of Details because it never changes.
type Details struct {
	PONumber            string
	Origin              string
	Destination         string
	Terms               string
	ShipMode            string
	CargoReadyDate      *time.Time
	DeliveryDate        *time.Time
	SpecialInstructions string
	IsHot               bool
	SupplierOrgID       kernel.UUID
	ForwarderOrgID      *kernel.UUID
	ConsigneeOrgID      *kernel.UUID
	AgentOrgID          *kernel.UUID
	BrokerOrgID         *kernel.UUID
	TruckerOrgID        *kernel.UUID
}

// Validate checks the invariants every stored order satisfies.
func (d Details) Validate() error {
	if err := d.SupplierOrgID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause(string(FieldSupplierOrg), err)
	}
	return nil
}

// fieldCodec converts one field between Details and its string representation.
type fieldCodec struct {
	get func(Details) string
	set func(*Details, string) error
}

func textCodec(ref func(*Details) *string) fieldCodec {
	return fieldCodec{
		get: func(d Details) string { return *ref(&d) },
		set: func(d *Details, v string) error {
			*ref(d) = strings.TrimSpace(v)
			return nil
		},
	}
}

func dateCodec(field Field, ref func(*Details) **time.Time) fieldCodec {
	return fieldCodec{
		get: func(d Details) string {
			if t := *ref(&d); t != nil {
				return t.Format(DateLayout)
			}
			return ""
		},
		set: func(d *Details, v string) error {
			if v == "" {
				*ref(d) = nil
				return nil
			}
			t, err := time.Parse(DateLayout, v)
			if err != nil {
				return errs.NewValueIsInvalidErrorWithCause(string(field), err)
			}
			*ref(d) = &t
			return nil
		},
	}
}

func orgCodec(field Field, ref func(*Details) **kernel.UUID) fieldCodec {
	return fieldCodec{
		get: func(d Details) string {
			if id := *ref(&d); id != nil {
				return id.String()
			}
			return ""
		},
		set: func(d *Details, v string) error {
			if v == "" {
				*ref(d) = nil
				return nil
			}
			id, err := kernel.UUIDFromString(v)
			if err != nil {
				return errs.NewValueIsInvalidErrorWithCause(string(field), err)
			}
			*ref(d) = &id
			return nil
		},
	}
}

func getFieldCodecs() map[Field]fieldCodec {
	return map[Field]fieldCodec{
		FieldPONumber:            textCodec(func(d *Details) *string { return &d.PONumber }),
		FieldOrigin:              textCodec(func(d *Details) *string { return &d.Origin }),
		FieldDestination:         textCodec(func(d *Details) *string { return &d.Destination }),
		FieldTerms:               textCodec(func(d *Details) *string { return &d.Terms }),
		FieldShipMode:            textCodec(func(d *Details) *string { return &d.ShipMode }),
		FieldSpecialInstructions: textCodec(func(d *Details) *string { return &d.SpecialInstructions }),
		FieldCargoReadyDate:      dateCodec(FieldCargoReadyDate, func(d *Details) **time.Time { return &d.CargoReadyDate }),
		FieldDeliveryDate:        dateCodec(FieldDeliveryDate, func(d *Details) **time.Time { return &d.DeliveryDate }),
		FieldIsHot: {
			get: func(d Details) string { return strconv.FormatBool(d.IsHot) },
			set: func(d *Details, v string) error {
				b, err := strconv.ParseBool(v)
				if err != nil {
					return errs.NewValueIsInvalidErrorWithCause(string(FieldIsHot), err)
				}
				d.IsHot = b
				return nil
			},
		},
		FieldSupplierOrg: {
			get: func(d Details) string { return d.SupplierOrgID.String() },
			set: func(d *Details, v string) error {
				if v == "" {
					return errs.NewValueIsRequiredError(string(FieldSupplierOrg))
				}
				id, err := kernel.UUIDFromString(v)
				if err != nil {
					return errs.NewValueIsInvalidErrorWithCause(string(FieldSupplierOrg), err)
				}
				d.SupplierOrgID = id
				return nil
			},
		},
		FieldForwarderOrg: orgCodec(FieldForwarderOrg, func(d *Details) **kernel.UUID { return &d.ForwarderOrgID }),
		FieldConsigneeOrg: orgCodec(FieldConsigneeOrg, func(d *Details) **kernel.UUID { return &d.ConsigneeOrgID }),
		FieldAgentOrg:     orgCodec(FieldAgentOrg, func(d *Details) **kernel.UUID { return &d.AgentOrgID }),
		FieldBrokerOrg:    orgCodec(FieldBrokerOrg, func(d *Details) **kernel.UUID { return &d.BrokerOrgID }),
		FieldTruckerOrg:   orgCodec(FieldTruckerOrg, func(d *Details) **kernel.UUID { return &d.TruckerOrgID }),
	}
}

// Value returns the string representation of field f.
func (d Details) Value(f Field) string {
	if codec, ok := getFieldCodecs()[f]; ok {
		return codec.get(d)
	}
	return ""
}

// FieldChange is one field moving from one value to another.
type FieldChange struct {
	Field Field
	From  string
	To    string
}

// FieldValues is the field part of an edit payload: proposed values keyed by field.
// Values use the string representation of Details.Value; an empty string clears
// optional fields.
type FieldValues map[Field]string

// Fields returns the fields present, in display order.
func (v FieldValues) Fields() []Field {
	fields := make([]Field, 0, len(v))
	for _, f := range AllFields() {
		if _, ok := v[f]; ok {
			fields = append(fields, f)
		}
	}
	return fields
}

// Select returns the subset of values whose field satisfies keep.
func (v FieldValues) Select(keep func(Field) bool) FieldValues {
	out := make(FieldValues)
	for f, value := range v {
		if keep(f) {
			out[f] = value
		}
	}
	return out
}

// Changes validates every value against current and returns the fields whose
// normalized value differs, in display order. Unknown fields are rejected.
func (v FieldValues) Changes(current Details) ([]FieldChange, error) {
	codecs := getFieldCodecs()
	for f := range v {
		if _, ok := codecs[f]; !ok {
			return nil, errs.NewValueIsInvalidErrorWithCause("field", fmt.Errorf("%q is not an editable order field", f))
		}
	}

	changes := make([]FieldChange, 0, len(v))
	for _, f := range v.Fields() {
		codec := codecs[f]
		next := current
		if err := codec.set(&next, v[f]); err != nil {
			return nil, err
		}
		from, to := codec.get(current), codec.get(next)
		if from != to {
			changes = append(changes, FieldChange{Field: f, From: from, To: to})
		}
	}
	return changes, nil
}

// WithoutUnchanged drops the values that equal the current ones. Resubmitting
// current values therefore neither raises change requests nor writes.
func (v FieldValues) WithoutUnchanged(current Details) (FieldValues, error) {
	changes, err := v.Changes(current)
	if err != nil {
		return nil, err
	}
	out := make(FieldValues, len(changes))
	for _, c := range changes {
		out[c.Field] = c.To
	}
	return out, nil
}

// ApplyTo returns a copy of d with all values set.
func (v FieldValues) ApplyTo(d Details) (Details, error) {
	codecs := getFieldCodecs()
	for _, f := range v.Fields() {
		if err := codecs[f].set(&d, v[f]); err != nil {
			return Details{}, err
		}
	}
	if len(v.Fields()) != len(v) {
		return Details{}, errs.NewValueIsInvalidError("field")
	}
	return d, nil
}

// HasParticipantField reports whether any counterparty field is present.
func (v FieldValues) HasParticipantField() bool {
	for f := range v {
		if f.IsParticipantField() {
			return true
		}
	}
	return false
}
