package entity

// Customer is the bundle of homeowner data the form filler types into
// contractor contact/booking forms.
type Customer struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Description string `json:"description"`
}

// SemanticField names one logical form field independent of how a given
// site labels it in markup.
type SemanticField string

const (
	FieldFirstName   SemanticField = "first_name"
	FieldLastName    SemanticField = "last_name"
	FieldEmail       SemanticField = "email"
	FieldPhone       SemanticField = "phone"
	FieldAddress     SemanticField = "address"
	FieldCity        SemanticField = "city"
	FieldPostalCode  SemanticField = "postal_code"
	FieldDescription SemanticField = "description"
)

// Value returns the customer data for a semantic field.
func (c Customer) Value(f SemanticField) string {
	switch f {
	case FieldFirstName:
		return c.FirstName
	case FieldLastName:
		return c.LastName
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	case FieldAddress:
		return c.Address
	case FieldCity:
		return c.City
	case FieldPostalCode:
		return c.PostalCode
	case FieldDescription:
		return c.Description
	}
	return ""
}
