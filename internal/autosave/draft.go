package autosave

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrNoAction = errors.New("draft has no form action")

// Draft is a form being filled in offline. Action is the form's URL path.
type Draft struct {
	Action string         `yaml:"action"`
	Fields map[string]any `yaml:"fields"`
}

func LoadDraft(path string) (*Draft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading draft: %w", err)
	}

	var d Draft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("error parsing draft %s: %w", path, err)
	}
	if d.Action == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoAction)
	}
	return &d, nil
}

// Values encodes the fields as form values and marks the submission as an
// auto-save. Lists become repeated values, nulls become empty strings.
func (d *Draft) Values() url.Values {
	vals := make(url.Values, len(d.Fields)+1)

	keys := make([]string, 0, len(d.Fields))
	for k := range d.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := d.Fields[k].(type) {
		case []any:
			for _, item := range v {
				vals.Add(k, formValue(item))
			}
		default:
			vals.Set(k, formValue(v))
		}
	}
	vals.Set("auto_save", "true")
	return vals
}

func formValue(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "on"
		}
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
