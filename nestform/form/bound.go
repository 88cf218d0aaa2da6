package form

import (
	"net/url"
)

// Values holds submitted form data.
type Values = url.Values

// Kwargs carries named arguments between the save steps of a form.
type Kwargs map[string]interface{}

// Copy returns a shallow copy of the mapping.  Copying a nil Kwargs returns an
// empty, non-nil mapping.
func (kw Kwargs) Copy() Kwargs {
	out := make(Kwargs, len(kw))
	for k, v := range kw {
		out[k] = v
	}
	return out
}

// With returns a copy of kw with the entries of others added.  Later mappings
// win on key collisions.
func (kw Kwargs) With(others ...Kwargs) Kwargs {
	out := kw.Copy()
	for _, other := range others {
		for k, v := range other {
			out[k] = v
		}
	}
	return out
}

// SaveFunc performs the persistence step of a bound form.
type SaveFunc func(b *Bound, kwargs Kwargs) (interface{}, error)

// Child is the behaviour a form needs to be embedded in a Nested form.  Both
// *Bound and *Nested satisfy it.
type Child interface {
	// FieldNames returns the bound (prefixed) names of the fields of the form.
	FieldNames() []string
	IsValid() bool
	Errors() Errors
	Save(kwargs Kwargs) (interface{}, error)
}

// Factory creates a form bound to data under prefix.  It is the type stored
// in NestedConfig.Class.
type Factory func(data Values, prefix string) (Child, error)

// JoinPrefix combines an outer and an inner field prefix.
func JoinPrefix(outer, inner string) string {
	switch {
	case outer == "":
		return inner
	case inner == "":
		return outer
	}
	return outer + "_" + inner
}

// Bound is a Form bound to submitted data under a field prefix.
type Bound struct {
	Form   *Form
	Prefix string
	// OnSave is called by Save.  When nil, Save does nothing and returns nil.
	OnSave SaveFunc

	data      Values
	validated bool
	errors    Errors
	cleaned   map[string]interface{}
}

// Bind binds the form to data.  A nil data mapping creates an unbound form,
// which can be rendered but is never valid.
func Bind(f *Form, data Values, prefix string) *Bound {
	return &Bound{Form: f, Prefix: prefix, data: data}
}

// Factory returns a Factory that binds the form and saves it with save.
func (f *Form) Factory(save SaveFunc) Factory {
	return func(data Values, prefix string) (Child, error) {
		b := Bind(f, data, prefix)
		b.OnSave = save
		return b, nil
	}
}

// FieldName returns the key under which the named field is submitted.
func (b *Bound) FieldName(name string) string {
	return JoinPrefix(b.Prefix, name)
}

// FieldNames returns the bound names of all the elements of the form.
func (b *Bound) FieldNames() []string {
	names := b.Form.Names()
	for idx := range names {
		names[idx] = b.FieldName(names[idx])
	}
	return names
}

// IsBound reports whether the form was given data.
func (b *Bound) IsBound() bool {
	return b.data != nil
}

// Data returns the submitted data the form is bound to.
func (b *Bound) Data() Values {
	return b.data
}

// HasField reports whether the form defines an element with the given
// (unprefixed) name.
func (b *Bound) HasField(name string) bool {
	return b.Form.Element(name) != nil
}

func (b *Bound) fullClean() {
	if b.validated {
		return
	}
	b.validated = true
	b.errors = make(Errors)
	b.cleaned = make(map[string]interface{})
	if !b.IsBound() {
		return
	}
	for idx := range b.Form.Elements {
		elem := &b.Form.Elements[idx]
		key := b.FieldName(elem.Name)
		value, ferr := elem.clean(b.data[key])
		if ferr != nil {
			b.errors.Add(key, ferr.msg)
			continue
		}
		b.cleaned[elem.Name] = value
	}
	if len(b.errors) > 0 {
		return
	}
	for _, validator := range b.Form.Validators {
		if err := validator(b.cleaned); err != nil {
			b.errors.Add(b.FieldName(NonFieldErrors), err.Error())
		}
	}
}

// Errors returns the validation errors of the form keyed by bound field name.
// The form is cleaned on first use.
func (b *Bound) Errors() Errors {
	b.fullClean()
	return b.errors
}

// IsValid reports whether the form is bound and has no errors.
func (b *Bound) IsValid() bool {
	return b.IsBound() && b.Errors().Len() == 0
}

// CleanedData returns the cleaned values of the fields that validated, keyed
// by the unprefixed element name.
func (b *Bound) CleanedData() map[string]interface{} {
	b.fullClean()
	return b.cleaned
}

// Bool returns the cleaned boolean value of a field, or false if it is
// missing or not boolean.
func (b *Bound) Bool(name string) bool {
	v, _ := b.CleanedData()[name].(bool)
	return v
}

// String returns the cleaned string value of a field.
func (b *Bound) String(name string) string {
	v, _ := b.CleanedData()[name].(string)
	return v
}

// Int returns the cleaned integer value of a field.
func (b *Bound) Int(name string) int64 {
	v, _ := b.CleanedData()[name].(int64)
	return v
}

// Save runs OnSave with the given arguments.  It returns ErrNotValid without
// calling OnSave when the form is not valid.
func (b *Bound) Save(kwargs Kwargs) (interface{}, error) {
	if !b.IsValid() {
		return nil, ErrNotValid
	}
	if b.OnSave == nil {
		return nil, nil
	}
	return b.OnSave(b, kwargs)
}
