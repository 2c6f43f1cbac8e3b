package files

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	keyProfiles    = "profiles"
	keyLastProfile = "last_profile"
	// keyLegacyLast is the older spelling of keyLastProfile. It is read when
	// last_profile is absent and never written.
	keyLegacyLast = "last"
)

// document is the on-disk shape: {"profiles": {...}, "last_profile": name}.
// Profiles keep their document order in both directions.
type document struct {
	order    []string
	profiles map[string]Profile
	last     string
}

func (d document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"` + keyProfiles + `":{`)
	for i, name := range d.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(d.profiles[name])
		if err != nil {
			return nil, fmt.Errorf("profile %q: %w", name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	if d.last != "" {
		last, err := json.Marshal(d.last)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"` + keyLastProfile + `":`)
		buf.Write(last)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *document) UnmarshalJSON(data []byte) error {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return fmt.Errorf("profiles document must be a JSON object")
	}

	d.order = nil
	d.profiles = make(map[string]Profile)
	d.last = ""

	profiles := root.Get(keyProfiles)
	if profiles.Exists() && profiles.Type != gjson.Null {
		if !profiles.IsObject() {
			return fmt.Errorf("%q must be an object", keyProfiles)
		}
		var decodeErr error
		profiles.ForEach(func(k, v gjson.Result) bool {
			name := k.String()
			p := NewProfile()
			if err := json.Unmarshal([]byte(v.Raw), &p); err != nil {
				decodeErr = fmt.Errorf("profile %q: %w", name, err)
				return false
			}
			if _, dup := d.profiles[name]; !dup {
				d.order = append(d.order, name)
			}
			d.profiles[name] = p
			return true
		})
		if decodeErr != nil {
			return decodeErr
		}
	}

	if last := root.Get(keyLastProfile); last.Exists() {
		d.last = last.String()
	} else if legacy := root.Get(keyLegacyLast); legacy.Exists() {
		d.last = legacy.String()
	}
	return nil
}
