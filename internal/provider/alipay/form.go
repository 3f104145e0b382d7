package alipay

import (
	"bytes"
	"html/template"
	"sort"
)

// ProcessForm is a signed submission ready to send the customer to the gateway.
type ProcessForm struct {
	PostTo string   `json:"post_to"`
	Fields FieldSet `json:"fields"`
}

// RedirectURL renders the form as a GET link.
func (f *ProcessForm) RedirectURL() string {
	return f.PostTo + "?" + f.Fields.Encode()
}

var formTmpl = template.Must(template.New("alipay").Parse(`<form action="{{.PostTo}}" method="post" id="alipay_form">
{{- range .Fields}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- end}}
<button type="submit">Pay with Alipay</button>
</form>
<script>document.getElementById("alipay_form").submit();</script>
`))

type formField struct {
	Name, Value string
}

// HTML renders an auto-submitting form. Values are escaped by html/template.
func (f *ProcessForm) HTML() (string, error) {
	keys := make([]string, 0, len(f.Fields))
	for k := range f.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]formField, len(keys))
	for i, k := range keys {
		fields[i] = formField{Name: k, Value: f.Fields[k]}
	}

	var buf bytes.Buffer
	err := formTmpl.Execute(&buf, struct {
		PostTo string
		Fields []formField
	}{f.PostTo, fields})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
