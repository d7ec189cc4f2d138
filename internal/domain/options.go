package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseOptionList decodes an option list from its stored string form.
// Producers are expected to emit a JSON array of {id, text} objects.
// A legacy "{id=A, text=...}" map-dump form still exists in older rows
// and is accepted as a compatibility shim; drop it once upstream stops
// producing it.
func ParseOptionList(raw string) ([]Option, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil, nil
	}

	var opts []Option
	if err := json.Unmarshal([]byte(raw), &opts); err == nil && wellFormed(opts) {
		return opts, nil
	}

	var loose []string
	if err := json.Unmarshal([]byte(raw), &loose); err == nil {
		out := make([]Option, 0, len(loose))
		for _, item := range loose {
			if opt, ok := parseLegacyOption(item); ok {
				out = append(out, opt)
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("parse options: unrecognized format %q", truncate(raw, 40))
}

func wellFormed(opts []Option) bool {
	for _, o := range opts {
		if o.ID == "" {
			return false
		}
	}
	return len(opts) > 0
}

// parseLegacyOption handles the "{id=A, text=some text}" pseudo key=value
// form produced by stringified map dumps.
func parseLegacyOption(item string) (Option, bool) {
	item = strings.Trim(strings.TrimSpace(item), "{}")
	var opt Option
	for _, pair := range strings.Split(item, ", ") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "id":
			opt.ID = strings.TrimSpace(value)
		case "text":
			opt.Text = strings.TrimSpace(value)
		}
	}
	return opt, opt.ID != ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
