package core

import (
	"bytes"
	"encoding/json"
	"testing"
)

type dictionaryJSON struct {
	Version      string                    `json:"version"`
	Config       map[string]string         `json:"config"`
	Commands     map[string]int            `json:"commands"`
	Responses    map[string]int            `json:"responses"`
	Enumerations map[string]map[string]int `json:"enumerations"`
}

func parseDictionary(t *testing.T, data []byte) dictionaryJSON {
	t.Helper()
	var dict dictionaryJSON
	if err := json.Unmarshal(data, &dict); err != nil {
		t.Fatalf("Dictionary is not valid JSON: %v\n%s", err, data)
	}
	return dict
}

func TestDictionary(t *testing.T) {
	dict := NewDictionary(NewCommandRegistry())

	dict.AddConstant("TEST_CONST", uint32(42))
	dict.AddConstant("TEST_STR", `say "hi"`)
	dict.AddEnumeration("test_sinks", []string{"a", "", "c"})

	dict.commandReg.Register("test_resp", "value=%u", nil)
	dict.commandReg.Register("test_cmd", "arg=%u", func(data *[]byte) error {
		return nil
	})
	dict.commandReg.Register("test_noargs", "", func(data *[]byte) error {
		return nil
	})

	parsed := parseDictionary(t, dict.Generate())

	if parsed.Version != "muxer-0.1.0" {
		t.Errorf("Unexpected version %q", parsed.Version)
	}
	if parsed.Config["TEST_CONST"] != "42" || parsed.Config["TEST_STR"] != `say "hi"` {
		t.Errorf("Unexpected constants %v", parsed.Config)
	}
	if parsed.Responses["test_resp value=%u"] != 0 {
		t.Errorf("Missing response: %v", parsed.Responses)
	}
	if id, ok := parsed.Commands["test_cmd arg=%u"]; !ok || id != 1 {
		t.Errorf("Missing command: %v", parsed.Commands)
	}
	if _, ok := parsed.Commands["test_noargs"]; !ok {
		t.Errorf("Argument-less command should be keyed by its bare name: %v", parsed.Commands)
	}

	enum := parsed.Enumerations["test_sinks"]
	if len(enum) != 2 || enum["a"] != 0 || enum["c"] != 2 {
		t.Errorf("Unexpected enumeration %v", enum)
	}
}

func TestDictionaryCache(t *testing.T) {
	dict := NewDictionary(NewCommandRegistry())
	dict.BuildDictionary()
	before := dict.Generate()

	dict.AddConstant("LATE", 1)
	after := dict.Generate()
	if bytes.Equal(before, after) {
		t.Error("Adding a constant must invalidate the cached dictionary")
	}

	dict.SetVersion("custom-1")
	if parsed := parseDictionary(t, dict.Generate()); parsed.Version != "custom-1" {
		t.Errorf("Expected version custom-1, got %q", parsed.Version)
	}
}

func TestDictionaryGetChunk(t *testing.T) {
	dict := NewDictionary(NewCommandRegistry())
	dict.AddConstant("SOME_CONSTANT", "value")
	dict.BuildDictionary()
	full := dict.Generate()

	var rebuilt []byte
	for offset := uint32(0); ; {
		chunk := dict.GetChunk(offset, 40)
		if len(chunk) == 0 {
			break
		}
		if len(chunk) > 40 {
			t.Fatalf("Chunk larger than requested: %d", len(chunk))
		}
		rebuilt = append(rebuilt, chunk...)
		offset += uint32(len(chunk))
	}

	if !bytes.Equal(rebuilt, full) {
		t.Errorf("Chunks do not reassemble the dictionary")
	}
	if chunk := dict.GetChunk(uint32(len(full))+10, 40); len(chunk) != 0 {
		t.Errorf("Offset past the end should give an empty chunk, got %d bytes", len(chunk))
	}
}

func TestDictionaryPinmuxEnumerations(t *testing.T) {
	resetGlobals(t)
	InitCoreCommands()
	InitPinmuxCommands()
	GetGlobalDictionary().BuildDictionary()

	parsed := parseDictionary(t, GetGlobalDictionary().Generate())

	if parsed.Responses["identify_response offset=%u data=%*s"] != 0 {
		t.Errorf("identify_response must have ID 0: %v", parsed.Responses)
	}
	if parsed.Commands["identify offset=%u count=%c"] != 1 {
		t.Errorf("identify must have ID 1: %v", parsed.Commands)
	}
	if _, ok := parsed.Commands["pinmux_select bank=%c sink=%c source=%c"]; !ok {
		t.Errorf("Missing pinmux_select: %v", parsed.Commands)
	}
	if _, ok := parsed.Responses["pinmux_result bank=%c sink=%c source=%c ok=%c"]; !ok {
		t.Errorf("Missing pinmux_result: %v", parsed.Responses)
	}

	pins := parsed.Enumerations["pinmux_pin_sink"]
	if len(pins) != NumPinSinks || pins["ser0_tx"] != int(PinSer0Tx) || pins["microsd_clk"] != int(PinMicroSDClk) {
		t.Errorf("Unexpected pin sink enumeration %v", pins)
	}
	blocks := parsed.Enumerations["pinmux_block_sink"]
	if len(blocks) != NumBlockSinks || blocks["gpio_3_ios_3"] != int(BlockGpio3Ios3) {
		t.Errorf("Unexpected block sink enumeration %v", blocks)
	}
	if parsed.Config["PINMUX_PIN_SINKS"] != itoa(NumPinSinks) {
		t.Errorf("Unexpected PINMUX_PIN_SINKS %q", parsed.Config["PINMUX_PIN_SINKS"])
	}
}
