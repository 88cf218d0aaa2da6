package form

const (
	CheckboxInput ElementType = "checkbox"
	ColorInput    ElementType = "color"
	DateInput     ElementType = "date"
	DateTimeInput ElementType = "datetime-local"
	EmailInput    ElementType = "email"
	FileInput     ElementType = "file"
	HiddenInput   ElementType = "hidden"
	ImageInput    ElementType = "image"
	MonthInput    ElementType = "month"
	NumberInput   ElementType = "number"
	PasswordInput ElementType = "password"
	RadioInput    ElementType = "radio"
	RangeInput    ElementType = "range"
	SearchInput   ElementType = "search"
	TelInput      ElementType = "tel"
	TextInput     ElementType = "text"
	TimeInput     ElementType = "time"
	URLInput      ElementType = "url"
	WeekInput     ElementType = "week"
	TextArea      ElementType = "textarea"
	Select        ElementType = "select"
)

// Error codes used as keys in Element.ErrorMessages.
const (
	CodeRequired  = "required"
	CodeInvalid   = "invalid"
	CodeMaxLength = "max_length"
	CodeMinLength = "min_length"
	CodeChoice    = "choice"
)

// ElementType defines the type of a form input element:
// https://developer.mozilla.org/en-US/docs/Web/HTML/Element/input
type ElementType string

// Form is the top level type for defining a web form for user input.  A Form
// is only a definition.  Bind it to submitted data with Bind, or use Factory
// to embed it as a nested form in another form.
type Form struct {
	// The Name appears as the heading of the form (or of its section when the
	// form is nested in another form).
	Name string
	// The Description appears under the Name.
	Description string
	// Each element creates an input field on the form.
	Elements []Element
	// Validators run after every element is cleaned successfully.  An error
	// returned by a validator is reported under NonFieldErrors.
	Validators []func(cleaned map[string]interface{}) error
}

// Element represents a single form element (field).
type Element struct {
	// ID of the element.  Must be unique.  Defaults to the bound field name
	// when rendered.
	ID string
	// Name of the element.  Used as key to retrieve the value on submission.
	// When the form is bound with a prefix, the submitted key is the prefixed
	// name (see Bound.FieldName).
	Name string
	// The Label of the field as it appears on the rendered form.
	Label string
	// If set, the field will be filled with the given value, or the
	// appropriate option will be selected, when rendered unbound.
	Value string
	// Whether the element represents a required form field.
	Required bool
	// An optional description for the field.  If set will be displayed under
	// the input field.  Can be used to provide extra information such as input
	// constraints.
	Description string
	// Type is the HTML input element type.  Empty means TextInput.
	Type ElementType
	// ValueList should contain a set of values that represent the permissible
	// or recommended options available to the element.  For input type
	// elements, it represents suggested values (datalist).  For select and
	// radio elements, it represents the values in the list and submitted
	// values must be one of them.
	ValueList []string
	// Read only fields can't be edited.
	ReadOnly bool
	// MaxLength and MinLength limit the number of characters of text input.
	// Zero disables the check.
	MaxLength int
	MinLength int
	// StripHTML removes any markup from submitted text before validation.
	StripHTML bool
	// ErrorMessages overrides the default message for an error code
	// (CodeRequired, CodeInvalid, ...).
	ErrorMessages map[string]string
}

// Names returns the names of all elements in the form, in order.
func (f *Form) Names() []string {
	names := make([]string, len(f.Elements))
	for idx := range f.Elements {
		names[idx] = f.Elements[idx].Name
	}
	return names
}

// Element returns the element with the given name, or nil if the form has no
// such element.
func (f *Form) Element(name string) *Element {
	for idx := range f.Elements {
		if f.Elements[idx].Name == name {
			return &f.Elements[idx]
		}
	}
	return nil
}

func (e *Element) inputType() ElementType {
	if e.Type == "" {
		return TextInput
	}
	return e.Type
}
