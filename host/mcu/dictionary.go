package mcu

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Dictionary represents the parsed MCU dictionary
type Dictionary struct {
	Version       string                    `json:"version"`
	BuildVersions string                    `json:"build_versions"`
	Config        map[string]string         `json:"config"`
	Commands      map[string]int            `json:"commands"`
	Responses     map[string]int            `json:"responses"`
	Enumerations  map[string]map[string]int `json:"enumerations,omitempty"`

	commandsByName  map[string]MessageFormat
	responsesByID   map[uint16]MessageFormat
	responsesByName map[string]MessageFormat
}

// MessageFormat is one command or response of the dictionary, keyed in the
// JSON by its name followed by its "param=%type" list.
type MessageFormat struct {
	ID     uint16
	Name   string
	Params []string
	Types  []string
}

// ParseDictionary decodes the JSON dictionary and indexes its messages by name
func ParseDictionary(data []byte) (*Dictionary, error) {
	dict := &Dictionary{}
	if err := json.Unmarshal(data, dict); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal dictionary")
	}

	dict.commandsByName = make(map[string]MessageFormat, len(dict.Commands))
	for msg, id := range dict.Commands {
		format, err := parseMessageFormat(msg, id)
		if err != nil {
			return nil, err
		}
		dict.commandsByName[format.Name] = format
	}

	dict.responsesByID = make(map[uint16]MessageFormat, len(dict.Responses))
	dict.responsesByName = make(map[string]MessageFormat, len(dict.Responses))
	for msg, id := range dict.Responses {
		format, err := parseMessageFormat(msg, id)
		if err != nil {
			return nil, err
		}
		dict.responsesByID[format.ID] = format
		dict.responsesByName[format.Name] = format
	}

	return dict, nil
}

func parseMessageFormat(msg string, id int) (MessageFormat, error) {
	if id < 0 || id > 0xFFFF {
		return MessageFormat{}, errors.Errorf("message %q has invalid id %d", msg, id)
	}

	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return MessageFormat{}, errors.Errorf("empty message with id %d", id)
	}

	format := MessageFormat{ID: uint16(id), Name: fields[0]}
	for _, field := range fields[1:] {
		parts := strings.SplitN(field, "=", 2)
		if len(parts) != 2 {
			return MessageFormat{}, errors.Errorf("message %q: malformed parameter %q", msg, field)
		}
		format.Params = append(format.Params, parts[0])
		format.Types = append(format.Types, parts[1])
	}
	return format, nil
}

// Command looks up a command by name
func (d *Dictionary) Command(name string) (MessageFormat, bool) {
	format, ok := d.commandsByName[name]
	return format, ok
}

// Response looks up a response by name
func (d *Dictionary) Response(name string) (MessageFormat, bool) {
	format, ok := d.responsesByName[name]
	return format, ok
}

// ResponseByID looks up a response by its command ID
func (d *Dictionary) ResponseByID(id uint16) (MessageFormat, bool) {
	format, ok := d.responsesByID[id]
	return format, ok
}

// EnumerationValue resolves a value name of an enumeration to its index
func (d *Dictionary) EnumerationValue(enum, value string) (int, bool) {
	values, ok := d.Enumerations[enum]
	if !ok {
		return 0, false
	}
	idx, ok := values[value]
	return idx, ok
}

// EnumerationNames returns the value names of an enumeration in index order
func (d *Dictionary) EnumerationNames(enum string) []string {
	values := d.Enumerations[enum]
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return values[names[i]] < values[names[j]]
	})
	return names
}

// CommandNames returns every command name, sorted
func (d *Dictionary) CommandNames() []string {
	names := make([]string, 0, len(d.commandsByName))
	for name := range d.commandsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
