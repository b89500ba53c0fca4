// Package mcu is the host side client of the pinmux firmware.
package mcu

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
	level "github.com/go-kit/kit/log/level"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"muxer/host/serial"
	"muxer/protocol"
)

// Fixed before the dictionary is known
const (
	identifyResponseID = 0
	identifyID         = 1
	identifyChunkSize  = 40
)

// MCU represents a connection to the firmware
type MCU struct {
	logger kitlog.Logger

	port      io.ReadWriteCloser
	transport *protocol.HostTransport

	dictionary     *Dictionary
	dictionaryData []byte

	// ResponseTimeout bounds the wait for a command's response
	ResponseTimeout time.Duration

	// mu serializes request/response exchanges
	mu        sync.Mutex
	connected bool
}

// Response is a decoded response frame
type Response struct {
	Name   string
	Fields map[string]uint32
	Data   map[string][]byte
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU(logger kitlog.Logger) *MCU {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &MCU{
		logger:          logger,
		ResponseTimeout: time.Second,
	}
}

// Connect opens the serial port and attaches to it
func (m *MCU) Connect(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return err
	}

	m.logger.Log("event", "serial.open", "device", cfg.Device, "baud", cfg.Baud)
	m.Attach(port)

	// Give the firmware time to initialize if it just powered on
	time.Sleep(100 * time.Millisecond)
	return nil
}

// Attach starts the protocol on an already open connection
func (m *MCU) Attach(port io.ReadWriteCloser) {
	m.port = port
	m.transport = protocol.NewHostTransport(port)
	m.transport.SetResponseHandler(m.handleResponse)
	m.connected = true
}

// Close closes the connection to the MCU
func (m *MCU) Close() error {
	if !m.connected {
		return nil
	}
	m.connected = false
	return m.transport.Close()
}

// IsConnected returns whether the MCU is connected
func (m *MCU) IsConnected() bool {
	return m.connected
}

// RetrieveDictionary retrieves the complete dictionary from the MCU
func (m *MCU) RetrieveDictionary() error {
	if !m.connected {
		return errors.New("not connected to MCU")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var dictBuffer bytes.Buffer
	offset := uint32(0)
	for {
		chunk, err := m.sendIdentify(offset, identifyChunkSize)
		if err != nil {
			return errors.Wrapf(err, "failed to retrieve dictionary chunk at offset %d", offset)
		}

		dictBuffer.Write(chunk)
		offset += uint32(len(chunk))

		// A short chunk is the last one
		if len(chunk) < identifyChunkSize {
			break
		}
	}

	level.Debug(m.logger).Log("event", "dictionary.retrieved", "bytes", dictBuffer.Len())

	dict, err := ParseDictionary(dictBuffer.Bytes())
	if err != nil {
		return err
	}

	m.dictionaryData = dictBuffer.Bytes()
	m.dictionary = dict
	m.logger.Log("event", "dictionary.parsed", "version", dict.Version,
		"commands", len(dict.Commands), "responses", len(dict.Responses))
	return nil
}

// sendIdentify requests one dictionary chunk
func (m *MCU) sendIdentify(offset uint32, count uint8) ([]byte, error) {
	err := m.transport.SendCommand(identifyID, func(output protocol.OutputBuffer) {
		protocol.EncodeVLQUint(output, offset)
		protocol.EncodeVLQUint(output, uint32(count))
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to send identify command")
	}

	payload, err := m.waitResponse(identifyResponseID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to receive identify response")
	}

	respOffset, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode response offset")
	}
	if respOffset != offset {
		return nil, errors.Errorf("offset mismatch: expected %d, got %d", offset, respOffset)
	}

	data, err := protocol.DecodeVLQBytes(&payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode response data")
	}
	return data, nil
}

// waitResponse returns the payload of the next response with cmdID, past
// the command ID. Other responses are skipped.
func (m *MCU) waitResponse(cmdID uint16) ([]byte, error) {
	deadline := time.Now().Add(m.ResponseTimeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, protocol.ErrResponseTimeout
		}

		resp, err := m.transport.ReceiveResponse(remaining)
		if err != nil {
			return nil, err
		}

		payload := resp.Payload
		id, err := protocol.DecodeVLQUint(&payload)
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode response command ID")
		}
		if uint16(id) == cmdID {
			return payload, nil
		}
		level.Debug(m.logger).Log("event", "response.skipped", "id", id, "waiting_for", cmdID)
	}
}

// handleResponse logs every response frame as it arrives
func (m *MCU) handleResponse(cmdID uint16, data *[]byte) error {
	level.Debug(m.logger).Log("event", "response", "id", cmdID, "bytes", len(*data))
	return nil
}

// GetDictionary returns the parsed dictionary
func (m *MCU) GetDictionary() *Dictionary {
	return m.dictionary
}

// GetDictionaryRaw returns the raw dictionary data
func (m *MCU) GetDictionaryRaw() []byte {
	return m.dictionaryData
}

// SendCommand sends a command by name; args are its parameters in
// dictionary order.
func (m *MCU) SendCommand(name string, args ...uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sendCommand(name, args)
}

func (m *MCU) sendCommand(name string, args []uint32) error {
	if !m.connected {
		return errors.New("not connected to MCU")
	}
	if m.dictionary == nil {
		return errors.New("dictionary not loaded")
	}

	format, ok := m.dictionary.Command(name)
	if !ok {
		return errors.Errorf("unknown command: %s", name)
	}
	if len(args) != len(format.Params) {
		return errors.Errorf("%s takes %d arguments, got %d", name, len(format.Params), len(args))
	}

	level.Debug(m.logger).Log("event", "command.send", "name", name, "id", format.ID)
	err := m.transport.SendCommand(format.ID, func(output protocol.OutputBuffer) {
		for _, arg := range args {
			protocol.EncodeVLQUint(output, arg)
		}
	})
	return errors.Wrapf(err, "failed to send %s", name)
}

// Query sends a command and waits for the named response
func (m *MCU) Query(name string, args []uint32, response string) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	timer := prometheus.NewTimer(mcuQueryDurationSeconds.WithLabelValues(name))
	defer timer.ObserveDuration()

	resp, err := m.query(name, args, response)
	if err != nil {
		mcuQueryErrorsTotal.WithLabelValues(name).Inc()
	}
	return resp, err
}

func (m *MCU) query(name string, args []uint32, response string) (*Response, error) {
	if err := m.sendCommand(name, args); err != nil {
		return nil, err
	}

	format, ok := m.dictionary.Response(response)
	if !ok {
		return nil, errors.Errorf("unknown response: %s", response)
	}

	payload, err := m.waitResponse(format.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "no %s response to %s", response, name)
	}
	return decodeResponse(format, payload)
}

// decodeResponse decodes the parameters of a response payload
func decodeResponse(format MessageFormat, payload []byte) (*Response, error) {
	resp := &Response{
		Name:   format.Name,
		Fields: make(map[string]uint32, len(format.Params)),
	}
	for i, param := range format.Params {
		switch format.Types[i] {
		case "%*s", "%.*s":
			data, err := protocol.DecodeVLQBytes(&payload)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: failed to decode %s", format.Name, param)
			}
			if resp.Data == nil {
				resp.Data = map[string][]byte{}
			}
			resp.Data[param] = append([]byte(nil), data...)
		default:
			v, err := protocol.DecodeVLQUint(&payload)
			if err != nil {
				return nil, errors.Wrapf(err, "%s: failed to decode %s", format.Name, param)
			}
			resp.Fields[param] = v
		}
	}
	return resp, nil
}

// Config is the firmware configuration state
type Config struct {
	IsConfig   bool
	CRC        uint32
	IsShutdown bool
}

// GetConfig queries the firmware configuration state
func (m *MCU) GetConfig() (Config, error) {
	resp, err := m.Query("get_config", nil, "config")
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		IsConfig:   resp.Fields["is_config"] != 0,
		CRC:        resp.Fields["crc"],
		IsShutdown: resp.Fields["is_shutdown"] != 0,
	}
	if cfg.IsShutdown {
		mcuFirmwareShutdown.Set(1)
	} else {
		mcuFirmwareShutdown.Set(0)
	}
	return cfg, nil
}

// EmergencyStop disconnects every sink and shuts the firmware down
func (m *MCU) EmergencyStop() error {
	return m.SendCommand("emergency_stop")
}

// SetDebug toggles the firmware's debug output
func (m *MCU) SetDebug(enable bool) error {
	var v uint32
	if enable {
		v = 1
	}
	return m.SendCommand("set_debug", v)
}

// PrintDictionary writes a summary of the dictionary
func (m *MCU) PrintDictionary(w io.Writer) {
	if m.dictionary == nil {
		fmt.Fprintln(w, "No dictionary loaded")
		return
	}
	d := m.dictionary

	fmt.Fprintf(w, "Version: %s\n", d.Version)
	fmt.Fprintf(w, "Build: %s\n", d.BuildVersions)

	fmt.Fprintln(w, "\nConfig:")
	for _, k := range sortedKeys(d.Config) {
		fmt.Fprintf(w, "  %s = %s\n", k, d.Config[k])
	}

	fmt.Fprintf(w, "\nCommands (%d):\n", len(d.Commands))
	for _, msg := range sortedByID(d.Commands) {
		fmt.Fprintf(w, "  [%d] %s\n", d.Commands[msg], msg)
	}

	fmt.Fprintf(w, "\nResponses (%d):\n", len(d.Responses))
	for _, msg := range sortedByID(d.Responses) {
		fmt.Fprintf(w, "  [%d] %s\n", d.Responses[msg], msg)
	}

	if len(d.Enumerations) > 0 {
		fmt.Fprintf(w, "\nEnumerations (%d):\n", len(d.Enumerations))
		for _, name := range sortedKeys(d.Enumerations) {
			fmt.Fprintf(w, "  %s: %d values\n", name, len(d.Enumerations[name]))
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedByID(m map[string]int) []string {
	keys := sortedKeys(m)
	sort.SliceStable(keys, func(i, j int) bool { return m[keys[i]] < m[keys[j]] })
	return keys
}
