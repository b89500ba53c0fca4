package core

import (
	"errors"
	"testing"

	"muxer/protocol"
)

func TestCommandRegistry(t *testing.T) {
	registry := NewCommandRegistry()

	// Register a command
	var called bool
	handler := func(data *[]byte) error {
		called = true
		return nil
	}

	id := registry.Register("test_command", "arg=%u", handler)

	if id != 0 {
		t.Errorf("Expected first command to have ID 0, got %d", id)
	}

	cmd, ok := registry.GetCommand(id)
	if !ok {
		t.Fatal("Failed to retrieve registered command")
	}
	if cmd.Name != "test_command" {
		t.Errorf("Expected command name 'test_command', got '%s'", cmd.Name)
	}
	if cmd.Message() != "test_command arg=%u" {
		t.Errorf("Unexpected dictionary message '%s'", cmd.Message())
	}

	var data []byte
	if err := registry.Dispatch(id, &data); err != nil {
		t.Errorf("Dispatch failed: %v", err)
	}
	if !called {
		t.Error("Command handler was not called")
	}

	if err := registry.Dispatch(999, &data); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Expected ErrUnknownCommand, got %v", err)
	}
}

func TestCommandRegistryMultiple(t *testing.T) {
	registry := NewCommandRegistry()

	id1 := registry.Register("command1", "arg1=%u", func(data *[]byte) error { return nil })
	id2 := registry.Register("command2", "arg2=%u", func(data *[]byte) error { return nil })
	id3 := registry.Register("command3", "", nil)

	if id1 != 0 || id2 != 1 || id3 != 2 {
		t.Errorf("Command IDs not sequential: %d, %d, %d", id1, id2, id3)
	}
	if registry.Count() != 3 {
		t.Errorf("Expected 3 entries, got %d", registry.Count())
	}

	// Same name keeps its ID
	if again := registry.Register("command2", "other=%c", nil); again != id2 {
		t.Errorf("Re-registering command2 returned %d, expected %d", again, id2)
	}

	if cmd, _ := registry.GetCommand(id3); !cmd.IsResponse() || cmd.Message() != "command3" {
		t.Errorf("command3 should be an argument-less response, got %+v", cmd)
	}
}

func TestDispatchResponseRejected(t *testing.T) {
	registry := NewCommandRegistry()
	id := registry.Register("some_response", "value=%u", nil)

	var data []byte
	if err := registry.Dispatch(id, &data); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("Dispatching a response should fail with ErrUnknownCommand, got %v", err)
	}
}

func TestCommandWithArguments(t *testing.T) {
	registry := NewCommandRegistry()

	var receivedValue uint32

	handler := func(data *[]byte) error {
		val, err := protocol.DecodeVLQUint(data)
		if err != nil {
			return err
		}
		receivedValue = val
		return nil
	}

	id := registry.Register("test_args", "value=%u", handler)

	output := protocol.NewScratchOutput()
	protocol.EncodeVLQUint(output, 12345)
	data := output.Result()

	if err := registry.Dispatch(id, &data); err != nil {
		t.Errorf("Dispatch failed: %v", err)
	}
	if receivedValue != 12345 {
		t.Errorf("Expected value 12345, got %d", receivedValue)
	}
	if len(data) != 0 {
		t.Errorf("Handler should consume its arguments, %d bytes left", len(data))
	}
}

func TestGlobalRegistry(t *testing.T) {
	resetGlobals(t)

	id := RegisterCommand("global_test", "arg=%u", func(data *[]byte) error {
		return nil
	})

	cmd, ok := GetGlobalRegistry().GetCommandByName("global_test")
	if !ok || cmd.ID != id {
		t.Errorf("Global registry lookup failed: %+v", cmd)
	}

	var data []byte
	if err := DispatchCommand(id, &data); err != nil {
		t.Errorf("DispatchCommand failed: %v", err)
	}
}

// resetGlobals gives a test fresh global registry, dictionary, firmware
// state and pinmux, and restores debug output afterwards.
func resetGlobals(t *testing.T) *Pinmux {
	t.Helper()
	globalRegistry = NewCommandRegistry()
	globalDictionary = NewDictionary(globalRegistry)
	ResetFirmwareState()
	mux := NewPinmux()
	SetPinmux(mux)
	SetGlobalTransport(nil)
	t.Cleanup(func() {
		SetPinmux(nil)
		SetGlobalTransport(nil)
		SetDebugEnabled(false)
		SetDebugWriter(nil)
	})
	return mux
}
