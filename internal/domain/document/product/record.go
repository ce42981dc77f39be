// Package product models a single structured product entry inside an
// ingested document. Every field is optional: an unset field is a nil
// pointer, never a zero value, so scoring code can tell "absent" from
// "empty string" or "0".
package product

// Record holds the scalar fields of one product. All fields may be unset.
type Record struct {
	pickUpTime      *string
	dropOffLocation *string
	dropOffTime     *string
	pickUpLocation  *string
	quantity        *float64
	price           *float64
}

// New creates a Record. Nil pointers mean the field is unset.
func New(
	pickUpTime, dropOffLocation, dropOffTime, pickUpLocation *string,
	quantity, price *float64,
) Record {
	return Record{
		pickUpTime:      pickUpTime,
		dropOffLocation: dropOffLocation,
		dropOffTime:     dropOffTime,
		pickUpLocation:  pickUpLocation,
		quantity:        quantity,
		price:           price,
	}
}

// PickUpTime returns the pick-up time field.
func (r *Record) PickUpTime() *string { return r.pickUpTime }

// DropOffLocation returns the drop-off location field.
func (r *Record) DropOffLocation() *string { return r.dropOffLocation }

// DropOffTime returns the drop-off time field.
func (r *Record) DropOffTime() *string { return r.dropOffTime }

// PickUpLocation returns the pick-up location field.
func (r *Record) PickUpLocation() *string { return r.pickUpLocation }

// Quantity returns the quantity field.
func (r *Record) Quantity() *float64 { return r.quantity }

// Price returns the price field.
func (r *Record) Price() *float64 { return r.price }

// Texts returns the values of all set string fields.
func (r *Record) Texts() []string {
	var out []string
	for _, p := range []*string{r.pickUpTime, r.dropOffLocation, r.dropOffTime, r.pickUpLocation} {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}

// Numbers returns the values of all set numeric fields.
func (r *Record) Numbers() []float64 {
	var out []float64
	for _, p := range []*float64{r.quantity, r.price} {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out
}
