package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/G-Node/nestform/nestform"
	"github.com/G-Node/nestform/nestform/db"
	"github.com/G-Node/nestform/nestform/form"
)

// Record kinds stored by the registration form.
const (
	kindAccount    = "account"
	kindAddress    = "address"
	kindNewsletter = "newsletter"
)

var accountDef = form.Form{
	Name:        "Account",
	Description: "Register a lab account",
	Elements: []form.Element{
		{Name: "username", Label: "User name", Required: true, MaxLength: 40, StripHTML: true},
		{Name: "email", Label: "E-mail", Type: form.EmailInput, Required: true},
		{Name: "full_name", Label: "Full name", StripHTML: true},
		{Name: "has_address", Label: "Add a postal address", Type: form.CheckboxInput},
		{Name: "wants_newsletter", Label: "Subscribe to the newsletter", Type: form.CheckboxInput},
	},
	Validators: []func(map[string]interface{}) error{
		func(cleaned map[string]interface{}) error {
			if cleaned["username"] == cleaned["email"] {
				return errors.New("The user name must not be the e-mail address.")
			}
			return nil
		},
	},
}

var addressDef = form.Form{
	Name:        "Address",
	Description: "Postal address",
	Elements: []form.Element{
		{Name: "street", Label: "Street", Required: true, StripHTML: true},
		{Name: "city", Label: "City", Required: true, StripHTML: true, ErrorMessages: map[string]string{form.CodeRequired: "Please enter a city."}},
		{Name: "postcode", Label: "Postcode", Required: true, MinLength: 4, MaxLength: 10},
		{Name: "country", Label: "Country", Type: form.Select, Required: true, ValueList: []string{"Germany", "Austria", "Switzerland"}},
	},
}

var newsletterDef = form.Form{
	Name:        "Newsletter",
	Description: "Newsletter subscription",
	Elements: []form.Element{
		{Name: "topic", Label: "Topic", Type: form.RadioInput, Required: true, ValueList: []string{"data", "events", "all"}},
		{Name: "frequency", Label: "Issues per month", Type: form.NumberInput},
	},
}

// storeRecord saves the cleaned values of b as a Record of the given kind
// using the database and user the service passes with the save arguments.
func storeRecord(kind string, b *form.Bound, kwargs form.Kwargs, parentID int64) (*db.Record, error) {
	conn, ok := kwargs[nestform.KwargDB].(*db.Connection)
	if !ok {
		return nil, fmt.Errorf("saving %s: no database connection", kind)
	}
	rec := &db.Record{Kind: kind, ParentID: parentID, ValueMap: make(map[string]string)}
	rec.UserName, _ = kwargs[nestform.KwargUser].(string)
	for name, value := range b.CleanedData() {
		if value == nil {
			continue
		}
		rec.ValueMap[name] = fmt.Sprint(value)
	}
	if err := conn.InsertRecord(rec); err != nil {
		return nil, fmt.Errorf("saving %s: %w", kind, err)
	}
	return rec, nil
}

func saveAddress(b *form.Bound, kwargs form.Kwargs) (interface{}, error) {
	return storeRecord(kindAddress, b, kwargs, 0)
}

func saveNewsletter(b *form.Bound, kwargs form.Kwargs) (interface{}, error) {
	account, ok := kwargs[form.SavedKey].(*db.Record)
	if !ok {
		return nil, fmt.Errorf("saving newsletter: no saved account")
	}
	return storeRecord(kindNewsletter, b, kwargs, account.ID)
}

// accountForm is the registration form: the account fields with an address
// saved before, and a newsletter subscription saved after the account.
type accountForm struct {
	*form.Nested
	form.NestedBase
}

func (af *accountForm) PreSaveKwargs() form.Kwargs {
	return form.Kwargs{"source": "web"}
}

// SaveForm stores the account and links the address saved before it.
func (af *accountForm) SaveForm(kwargs form.Kwargs) (interface{}, error) {
	rec, err := storeRecord(kindAccount, af.Bound, kwargs, 0)
	if err != nil {
		return nil, err
	}
	if addr, ok := kwargs["address"].(*db.Record); ok {
		rec.ValueMap["address_id"] = strconv.FormatInt(addr.ID, 10)
		addr.ParentID = rec.ID
		conn := kwargs[nestform.KwargDB].(*db.Connection)
		if err := conn.UpdateRecord(addr); err != nil {
			return nil, err
		}
		if err := conn.UpdateRecord(rec); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func newAccountForm(data form.Values, prefix string) (form.Child, error) {
	af := new(accountForm)
	nested, err := form.NewNested(form.Bind(&accountDef, data, prefix), af, []form.NestedConfig{
		{
			Class:       addressDef.Factory(saveAddress),
			Key:         "address",
			FieldPrefix: "address",
			RequiredKey: "has_address",
			Pre:         true,
		},
		{
			Class:       newsletterDef.Factory(saveNewsletter),
			Key:         "newsletter",
			FieldPrefix: "newsletter",
			RequiredKey: "wants_newsletter",
			Post:        true,
		},
	})
	if err != nil {
		return nil, err
	}
	af.Nested = nested
	return af, nil
}

// welcome is the job run after every registration.
func welcome(values map[string][]string) ([]string, error) {
	username := ""
	if v := values["username"]; len(v) > 0 {
		username = v[0]
	}
	if username == "" {
		return nil, fmt.Errorf("registration without user name")
	}
	msgs := []string{fmt.Sprintf("Account %s registered", username)}
	if form.ParseBool(values["has_address"]) {
		msgs = append(msgs, fmt.Sprintf("Address in %s stored", first(values["address_city"])))
	}
	if form.ParseBool(values["wants_newsletter"]) {
		msgs = append(msgs, fmt.Sprintf("Subscribed to %s newsletter", first(values["newsletter_topic"])))
	}
	return msgs, nil
}

func first(v []string) string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}
