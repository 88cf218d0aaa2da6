package form

import (
	"fmt"
	"sort"
	"strings"
)

// SavedKey is the key under which the result of the parent's SaveForm is
// passed to the post-save nested forms.  It can't be used as a config Key.
const SavedKey = "saved"

// Hooks are the save steps a form embedding a Nested provides.  Embed
// NestedBase to get the default behaviour for the hooks you don't override.
type Hooks interface {
	// PreSaveKwargs returns the arguments passed to every pre-save nested
	// form and to SaveForm.
	PreSaveKwargs() Kwargs
	// PostSaveKwargs returns the arguments passed to every post-save nested
	// form, given the accumulated pre-save arguments and results.
	PostSaveKwargs(kwargs Kwargs) Kwargs
	// SaveForm saves the parent form itself.  Its result is what Save
	// returns.
	SaveForm(kwargs Kwargs) (interface{}, error)
}

// NestedBase provides the default Hooks.  It does not define Save, so a
// type embedding NestedBase next to another type with a Save method keeps
// that Save.
type NestedBase struct{}

// PreSaveKwargs returns an empty mapping.
func (NestedBase) PreSaveKwargs() Kwargs {
	return Kwargs{}
}

// PostSaveKwargs returns the given arguments unchanged (as a copy).
func (NestedBase) PostSaveKwargs(kwargs Kwargs) Kwargs {
	return kwargs.Copy()
}

// SaveForm does nothing.
func (NestedBase) SaveForm(Kwargs) (interface{}, error) {
	return nil, nil
}

// NestedConfig describes one nested form slot of a parent form.
type NestedConfig struct {
	// Class creates the nested form.  Required.
	Class Factory
	// Key identifies the slot.  Required and unique within the parent.  The
	// result of a pre-save nested form is passed on under this key.
	Key string
	// FieldPrefix is prepended (with "_") to the field names of the nested
	// form.  Without a prefix the nested form reads the same keys as the
	// parent.
	FieldPrefix string
	// Required is the static requiredness of the nested form.
	Required bool
	// RequiredKey names a boolean field of the parent.  When the parent
	// defines that field, its value decides whether the nested form is
	// required, regardless of Required.
	RequiredKey string
	// Pre and Post select the save phase: before or after the parent's
	// SaveForm.  A form with neither set is validated but never saved.
	Pre  bool
	Post bool
}

// Nested is a form composed of its own fields and a set of nested forms.
type Nested struct {
	*Bound
	Configs []NestedConfig
	// Forms holds the nested form of every config, by config Key.
	Forms map[string]Child

	hooks     Hooks
	validated bool
	errors    Errors
}

// NewNested binds every configured nested form to the data of parent.
// Parent fields and nested forms are validated together by IsValid and saved
// in phases by Save, calling back into hooks.  A nil hooks uses NestedBase.
//
// A nested form with a FieldPrefix reads each field under its prefixed name
// first.  When that name was not submitted, it reads the name the field has
// without the FieldPrefix, unless the parent or another nested form has a
// field of that name.
//
// Configuration problems are returned as a *ConfigError before any form is
// usable.  Nested forms whose field names overlap are rejected with
// ErrPrefixCollision.
func NewNested(parent *Bound, hooks Hooks, configs []NestedConfig) (*Nested, error) {
	if hooks == nil {
		hooks = NestedBase{}
	}
	n := &Nested{
		Bound:   parent,
		Configs: configs,
		Forms:   make(map[string]Child, len(configs)),
		hooks:   hooks,
	}

	// field name -> config key that reads it
	owners := make(map[string]string)
	// prefix and field set -> config key
	signatures := make(map[string]string)
	fields := make([][]string, len(configs))
	for idx, cfg := range configs {
		switch {
		case cfg.Class == nil:
			return nil, &ConfigError{Keys: []string{cfg.Key}, Msg: fmt.Sprintf("config %d has no form class", idx), Err: ErrConfig}
		case cfg.Key == "":
			return nil, &ConfigError{Msg: fmt.Sprintf("config %d has no key", idx), Err: ErrConfig}
		case cfg.Key == SavedKey:
			return nil, &ConfigError{Keys: []string{cfg.Key}, Msg: "key is reserved", Err: ErrConfig}
		}
		if _, dupe := n.Forms[cfg.Key]; dupe {
			return nil, &ConfigError{Keys: []string{cfg.Key}, Msg: "duplicate key", Err: ErrConfig}
		}

		prefix := JoinPrefix(parent.Prefix, cfg.FieldPrefix)
		child, err := cfg.Class(nil, prefix)
		if err != nil {
			return nil, &ConfigError{Keys: []string{cfg.Key}, Msg: err.Error(), Err: ErrConfig}
		}

		names := child.FieldNames()
		sig := signature(prefix, names)
		if other, ok := signatures[sig]; ok {
			return nil, &ConfigError{
				Keys: []string{other, cfg.Key},
				Msg:  "nested forms of the same fields need distinct field prefixes",
				Err:  ErrPrefixCollision,
			}
		}
		signatures[sig] = cfg.Key

		var shared []string
		other := ""
		for _, name := range names {
			if owner, ok := owners[name]; ok {
				shared = append(shared, name)
				other = owner
				continue
			}
			owners[name] = cfg.Key
		}
		if len(shared) > 0 {
			sort.Strings(shared)
			return nil, &ConfigError{
				Keys:   []string{other, cfg.Key},
				Fields: shared,
				Msg:    "nested forms share field names; set a FieldPrefix",
				Err:    ErrPrefixCollision,
			}
		}
		fields[idx] = names
		n.Forms[cfg.Key] = child
	}

	data := parent.Data()
	if data == nil {
		return n, nil
	}
	for _, name := range parent.FieldNames() {
		if _, ok := owners[name]; !ok {
			owners[name] = ""
		}
	}
	for idx, cfg := range configs {
		prefix := JoinPrefix(parent.Prefix, cfg.FieldPrefix)
		childData := data
		if cfg.FieldPrefix != "" {
			childData = inheritData(data, parent.Prefix, prefix, fields[idx], owners)
		}
		child, err := cfg.Class(childData, prefix)
		if err != nil {
			return nil, &ConfigError{Keys: []string{cfg.Key}, Msg: err.Error(), Err: ErrConfig}
		}
		n.Forms[cfg.Key] = child
	}
	return n, nil
}

// inheritData returns data with the values of the fields of a prefixed nested
// form that were only submitted under their name without the nested prefix.
// Names in owned are left to the forms that define them.
func inheritData(data Values, outer, prefix string, names []string, owned map[string]string) Values {
	view := make(Values, len(data)+len(names))
	for k, v := range data {
		view[k] = v
	}
	for _, name := range names {
		if _, ok := data[name]; ok {
			continue
		}
		bare := JoinPrefix(outer, strings.TrimPrefix(name, prefix+"_"))
		if _, ok := owned[bare]; ok {
			continue
		}
		if v, ok := data[bare]; ok {
			view[name] = v
		}
	}
	return view
}

func signature(prefix string, names []string) string {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	return prefix + "\x00" + strings.Join(sorted, "\x00")
}

// Child returns the nested form stored under key, or nil.
func (n *Nested) Child(key string) Child {
	return n.Forms[key]
}

// FieldNames returns the bound names of the parent fields followed by those
// of every nested form.
func (n *Nested) FieldNames() []string {
	names := n.Bound.FieldNames()
	for _, cfg := range n.Configs {
		names = append(names, n.Forms[cfg.Key].FieldNames()...)
	}
	return names
}

// IsRequired reports whether the nested form of cfg must be valid for the
// parent to be valid.
func (n *Nested) IsRequired(cfg NestedConfig) bool {
	if cfg.RequiredKey != "" && n.Bound.HasField(cfg.RequiredKey) {
		return n.Bound.Bool(cfg.RequiredKey)
	}
	return cfg.Required
}

func (n *Nested) validate() {
	if n.validated {
		return
	}
	n.validated = true
	n.errors = make(Errors)
	n.errors.Merge(n.Bound.Errors())
	for _, cfg := range n.Configs {
		if !n.IsRequired(cfg) {
			continue
		}
		if child := n.Forms[cfg.Key]; !child.IsValid() {
			n.errors.Merge(child.Errors())
		}
	}
}

// Errors returns the errors of the parent fields and of every required
// nested form.
func (n *Nested) Errors() Errors {
	n.validate()
	return n.errors
}

// IsValid reports whether the parent is bound and neither its own fields nor
// any required nested form has errors.
func (n *Nested) IsValid() bool {
	return n.Bound.IsBound() && n.Errors().Len() == 0
}

// Save saves the form in three steps: the required pre-save nested forms,
// the parent (Hooks.SaveForm), and the required post-save nested forms.
//
// Every pre-save form is called with the PreSaveKwargs, the given kwargs,
// and the results of the pre-save forms before it, each under its config
// Key.  SaveForm gets the same arguments after the last pre-save form.  The
// post-save forms get what PostSaveKwargs returns for those arguments plus
// the SaveForm result under SavedKey.  Save returns the SaveForm result.
//
// Nothing is saved if the form is not valid.  A failing step stops the
// remaining ones.
func (n *Nested) Save(kwargs Kwargs) (interface{}, error) {
	if !n.IsValid() {
		return nil, ErrNotValid
	}

	acc := n.hooks.PreSaveKwargs().With(kwargs)
	for _, cfg := range n.Configs {
		if !cfg.Pre || !n.IsRequired(cfg) {
			continue
		}
		result, err := n.Forms[cfg.Key].Save(acc.Copy())
		if err != nil {
			return nil, fmt.Errorf("pre-save nested form %q: %w", cfg.Key, err)
		}
		acc[cfg.Key] = result
	}

	saved, err := n.hooks.SaveForm(acc.Copy())
	if err != nil {
		return nil, err
	}

	post := n.hooks.PostSaveKwargs(acc.With(Kwargs{SavedKey: saved}))
	for _, cfg := range n.Configs {
		if !cfg.Post || !n.IsRequired(cfg) {
			continue
		}
		if _, err := n.Forms[cfg.Key].Save(post.Copy()); err != nil {
			return nil, fmt.Errorf("post-save nested form %q: %w", cfg.Key, err)
		}
	}
	return saved, nil
}
