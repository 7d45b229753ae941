package restaurant

// InfoPatch is a partial update of top-level record fields.
// Nil fields are unchanged.
type InfoPatch struct {
	Name    *string
	Cuisine *string
	Borough *string
}

// IsEmpty reports whether the patch changes nothing.
func (p InfoPatch) IsEmpty() bool {
	return p.Name == nil && p.Cuisine == nil && p.Borough == nil
}

// Apply mirrors the patch into r.
func (p InfoPatch) Apply(r *Restaurant) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Cuisine != nil {
		r.Cuisine = *p.Cuisine
	}
	if p.Borough != nil {
		r.Borough = *p.Borough
	}
}

// AddressPatch replaces the textual address fields. The coordinate is never
// part of it.
type AddressPatch struct {
	Building string
	Street   string
	Zipcode  string
}

// Address builds the full address sub-document, keeping coord unchanged.
func (p AddressPatch) Address(coord Coord) Address {
	return Address{
		Building: p.Building,
		Street:   p.Street,
		Zipcode:  p.Zipcode,
		Coord:    coord,
	}
}
