package form

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var defaultMessages = map[string]string{
	CodeRequired: "This field is required.",
	CodeInvalid:  "Enter a valid value.",
	CodeChoice:   "Select a valid choice.",
}

var stripPolicy = bluemonday.StrictPolicy()

// fieldError is a failed cleaning step: an error code and its rendered
// message.
type fieldError struct {
	code string
	msg  string
}

func (e *Element) errorf(code string, args ...interface{}) *fieldError {
	msg, ok := e.ErrorMessages[code]
	if !ok {
		switch code {
		case CodeMaxLength:
			msg = "Ensure this value has at most %d characters (it has %d)."
		case CodeMinLength:
			msg = "Ensure this value has at least %d characters (it has %d)."
		default:
			msg = defaultMessages[code]
		}
		if len(args) > 0 {
			msg = fmt.Sprintf(msg, args...)
		}
	}
	return &fieldError{code: code, msg: msg}
}

// ParseBool interprets a submitted checkbox value.  Missing and empty values
// are false, as are "false" and "0" in any case.  Anything else is true.
func ParseBool(raw []string) bool {
	if len(raw) == 0 {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(raw[0])) {
	case "", "false", "0":
		return false
	}
	return true
}

// clean converts the raw submitted values of the element to its Go value.
// Text-like elements clean to string, checkboxes to bool, and numbers to
// int64.
func (e *Element) clean(raw []string) (interface{}, *fieldError) {
	etype := e.inputType()
	if etype == CheckboxInput {
		val := ParseBool(raw)
		if e.Required && !val {
			return nil, e.errorf(CodeRequired)
		}
		return val, nil
	}

	var value string
	if len(raw) > 0 {
		value = strings.TrimSpace(raw[0])
	}
	if e.StripHTML && value != "" {
		value = strings.TrimSpace(stripPolicy.Sanitize(value))
	}
	if value == "" {
		if e.Required {
			return nil, e.errorf(CodeRequired)
		}
		if etype == NumberInput {
			return nil, nil
		}
		return "", nil
	}

	if n := utf8.RuneCountInString(value); e.MaxLength > 0 && n > e.MaxLength {
		return nil, e.errorf(CodeMaxLength, e.MaxLength, n)
	} else if e.MinLength > 0 && n < e.MinLength {
		return nil, e.errorf(CodeMinLength, e.MinLength, n)
	}

	switch etype {
	case NumberInput, RangeInput:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, e.errorf(CodeInvalid)
		}
		return n, nil
	case EmailInput:
		if !validEmail(value) {
			return nil, e.errorf(CodeInvalid)
		}
	case URLInput:
		u, err := url.Parse(value)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, e.errorf(CodeInvalid)
		}
	case Select, RadioInput:
		if len(e.ValueList) > 0 && !contains(e.ValueList, value) {
			return nil, e.errorf(CodeChoice)
		}
	}
	return value, nil
}

func validEmail(s string) bool {
	at := strings.LastIndex(s, "@")
	if at < 1 || at == len(s)-1 {
		return false
	}
	domain := s[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(s, " \t\n")
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
