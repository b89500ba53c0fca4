package core

import "sync"

// Constant is a firmware constant exposed to the host
type Constant struct {
	Name  string
	Value interface{} // string or integer
}

// Enumeration maps value names to their index (sink names, for example)
type Enumeration struct {
	Name   string
	Values []string
}

// Dictionary is the JSON data dictionary the host fetches with identify
type Dictionary struct {
	mu            sync.RWMutex
	constants     map[string]*Constant
	enumerations  map[string]*Enumeration
	commandReg    *CommandRegistry
	version       string
	buildVersions string
	cached        []byte
}

var globalDictionary = NewDictionary(globalRegistry)

// NewDictionary creates a dictionary describing the commands of cmdReg
func NewDictionary(cmdReg *CommandRegistry) *Dictionary {
	return &Dictionary{
		constants:     make(map[string]*Constant),
		enumerations:  make(map[string]*Enumeration),
		commandReg:    cmdReg,
		version:       "muxer-0.1.0",
		buildVersions: "go-tinygo",
	}
}

// RegisterConstant adds a constant to the global dictionary
func RegisterConstant(name string, value interface{}) {
	globalDictionary.AddConstant(name, value)
}

// RegisterEnumeration adds an enumeration to the global dictionary
func RegisterEnumeration(name string, values []string) {
	globalDictionary.AddEnumeration(name, values)
}

// AddConstant adds or replaces a constant
func (d *Dictionary) AddConstant(name string, value interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.constants[name] = &Constant{Name: name, Value: value}
	d.cached = nil
}

// AddEnumeration adds or replaces an enumeration.
// Values are copied so the caller may reuse its slice.
func (d *Dictionary) AddEnumeration(name string, values []string) {
	valuesCopy := make([]string, len(values))
	copy(valuesCopy, values)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.enumerations[name] = &Enumeration{Name: name, Values: valuesCopy}
	d.cached = nil
}

// SetVersion sets the firmware version string
func (d *Dictionary) SetVersion(version string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.version = version
	d.cached = nil
}

// BuildDictionary renders and caches the dictionary.
// Call it after every command, constant and enumeration is registered.
func (d *Dictionary) BuildDictionary() {
	// Snapshot the registry before taking our own lock to keep lock order
	// registry -> dictionary out of the picture entirely.
	commands := d.commandReg.Commands()

	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = d.render(commands)
	DebugPrintln("[DICT] built, size=" + itoa(len(d.cached)))
}

// Generate returns the dictionary JSON
func (d *Dictionary) Generate() []byte {
	d.mu.RLock()
	cached := d.cached
	d.mu.RUnlock()
	if cached != nil {
		return cached
	}

	commands := d.commandReg.Commands()
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.render(commands)
}

// render builds the JSON by hand; encoding/json is too heavy for the MCU.
// Caller must hold the lock.
func (d *Dictionary) render(commands []*Command) []byte {
	out := make([]byte, 0, 2048)
	out = append(out, `{"version":`...)
	out = appendQuoted(out, d.version)
	out = append(out, `,"build_versions":`...)
	out = appendQuoted(out, d.buildVersions)

	out = append(out, `,"config":{`...)
	names := make([]string, 0, len(d.constants))
	for name := range d.constants {
		names = append(names, name)
	}
	sortStrings(names)
	for i, name := range names {
		if i > 0 {
			out = append(out, ',')
		}
		out = appendQuoted(out, name)
		out = append(out, ':')
		out = appendQuoted(out, valueToString(d.constants[name].Value))
	}

	// Registry order is ID order, so no sorting needed here
	out = append(out, `},"commands":{`...)
	out = appendMessages(out, commands, false)
	out = append(out, `},"responses":{`...)
	out = appendMessages(out, commands, true)
	out = append(out, '}')

	if len(d.enumerations) > 0 {
		out = append(out, `,"enumerations":{`...)
		names = names[:0]
		for name := range d.enumerations {
			names = append(names, name)
		}
		sortStrings(names)
		for i, name := range names {
			if i > 0 {
				out = append(out, ',')
			}
			out = appendQuoted(out, name)
			out = append(out, `:{`...)
			first := true
			for idx, value := range d.enumerations[name].Values {
				if value == "" {
					continue
				}
				if !first {
					out = append(out, ',')
				}
				out = appendQuoted(out, value)
				out = append(out, ':')
				out = append(out, itoa(idx)...)
				first = false
			}
			out = append(out, '}')
		}
		out = append(out, '}')
	}

	return append(out, '}')
}

func appendMessages(out []byte, commands []*Command, responses bool) []byte {
	first := true
	for _, cmd := range commands {
		if cmd.IsResponse() != responses {
			continue
		}
		if !first {
			out = append(out, ',')
		}
		out = appendQuoted(out, cmd.Message())
		out = append(out, ':')
		out = append(out, itoa(int(cmd.ID))...)
		first = false
	}
	return out
}

// appendQuoted appends s as a JSON string. Dictionary strings are plain
// identifiers and formats, so only quotes and backslashes need escaping.
func appendQuoted(out []byte, s string) []byte {
	out = append(out, '"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			out = append(out, '\\')
		}
		out = append(out, c)
	}
	return append(out, '"')
}

// GetChunk returns a copy of up to count dictionary bytes starting at offset.
// An offset past the end yields an empty chunk, which ends the host's transfer.
func (d *Dictionary) GetChunk(offset uint32, count uint8) []byte {
	data := d.Generate()
	if offset >= uint32(len(data)) {
		return []byte{}
	}
	end := offset + uint32(count)
	if end > uint32(len(data)) {
		end = uint32(len(data))
	}
	chunk := make([]byte, end-offset)
	copy(chunk, data[offset:end])
	return chunk
}

// GetGlobalDictionary returns the global dictionary instance
func GetGlobalDictionary() *Dictionary {
	return globalDictionary
}
