package form

// BoundElement is an Element prepared for rendering: its name and ID carry
// the form prefix, and Value holds the submitted value when the form is bound.
type BoundElement struct {
	Element
	// HTMLName is the prefixed name of the input.
	HTMLName string
	Checked  bool
	Errors   []string
}

// Section is one rendered block of a form: the fields of the parent or of a
// single nested form.
type Section struct {
	// Key of the nested form config.  Empty for the parent section.
	Key         string
	Name        string
	Description string
	// Required is the static requiredness of a nested form and RequiredKey
	// the name of the parent field that toggles it.
	Required    bool
	RequiredKey string
	Elements    []BoundElement
	// Errors not tied to a single field.
	Errors []string
}

// sectioner is implemented by the forms that know how to render themselves.
type sectioner interface {
	sections(errs Errors) []Section
}

// Sections returns the render view of the form.  The errors are shown only
// when the form is bound.
func (b *Bound) Sections() []Section {
	var errs Errors
	if b.IsBound() {
		errs = b.Errors()
	}
	return b.sections(errs)
}

func (b *Bound) sections(errs Errors) []Section {
	sec := Section{
		Name:        b.Form.Name,
		Description: b.Form.Description,
		Elements:    make([]BoundElement, len(b.Form.Elements)),
		Errors:      errs[b.FieldName(NonFieldErrors)],
	}
	for idx, elem := range b.Form.Elements {
		name := b.FieldName(elem.Name)
		be := BoundElement{Element: elem, HTMLName: name, Errors: errs[name]}
		if be.ID == "" {
			be.ID = name
		} else {
			be.ID = b.FieldName(be.ID)
		}
		if b.IsBound() {
			be.Value = b.data.Get(name)
		}
		if elem.inputType() == CheckboxInput {
			be.Checked = ParseBool([]string{be.Value})
		}
		if be.Type == "" {
			be.Type = TextInput
		}
		sec.Elements[idx] = be
	}
	return []Section{sec}
}

// Sections returns the render view of the parent fields followed by one or
// more sections per nested form, in config order.  Errors of nested forms
// that are not required are not shown.
func (n *Nested) Sections() []Section {
	var errs Errors
	if n.IsBound() {
		errs = n.Errors()
	}
	return n.sections(errs)
}

func (n *Nested) sections(errs Errors) []Section {
	secs := n.Bound.sections(errs)
	for _, cfg := range n.Configs {
		child, ok := n.Forms[cfg.Key].(sectioner)
		if !ok {
			continue
		}
		childSecs := child.sections(errs)
		if len(childSecs) == 0 {
			continue
		}
		childSecs[0].Key = cfg.Key
		childSecs[0].Required = cfg.Required
		childSecs[0].RequiredKey = cfg.RequiredKey
		secs = append(secs, childSecs...)
	}
	return secs
}
