package protocol

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ErrAckTimeout       = errors.New("ACK timeout")
	ErrNak              = errors.New("frame not acknowledged")
	ErrResponseTimeout  = errors.New("response timeout")
	ErrTransportStopped = errors.New("transport stopped")
)

// ResponseHandler is called from the read loop for every response frame
type ResponseHandler func(cmdID uint16, data *[]byte) error

// HostTransport is the host side of the link: it sends command frames,
// waits for their ACK and collects response frames.
type HostTransport struct {
	port io.ReadWriteCloser

	currentSeq     uint32 // atomic uint8, 0x10-0x1F
	isSynchronized uint32 // atomic bool

	inputBuffer *FifoBuffer

	ackChan      chan Message
	responseChan chan Message

	handlerMu       sync.RWMutex
	responseHandler ResponseHandler

	// sendMu serializes command round trips so ACKs match their frame
	sendMu sync.Mutex

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewHostTransport starts a transport reading from port
func NewHostTransport(port io.ReadWriteCloser) *HostTransport {
	t := &HostTransport{
		port:           port,
		currentSeq:     MessageDest,
		isSynchronized: 1,
		inputBuffer:    NewFifoBuffer(1024),
		ackChan:        make(chan Message, 1),
		responseChan:   make(chan Message, 16),
		stopChan:       make(chan struct{}),
		doneChan:       make(chan struct{}),
	}
	go t.readLoop()
	return t
}

// SendCommand sends a command and waits up to two seconds for its ACK
func (t *HostTransport) SendCommand(cmdID uint16, args func(output OutputBuffer)) error {
	return t.SendCommandWithTimeout(cmdID, args, 2*time.Second)
}

// SendCommandWithTimeout sends a command and waits for its ACK
func (t *HostTransport) SendCommandWithTimeout(cmdID uint16, args func(output OutputBuffer), timeout time.Duration) error {
	t.sendMu.Lock()
	defer t.sendMu.Unlock()

	scratch := NewScratchOutput()
	EncodeVLQUint(scratch, uint32(cmdID))
	if args != nil {
		args(scratch)
	}

	seq := uint8(atomic.LoadUint32(&t.currentSeq))
	frame, err := AppendFrame(nil, seq, scratch.Result())
	if err != nil {
		return err
	}

	n, err := t.port.Write(frame)
	if err != nil {
		return err
	}
	if n != len(frame) {
		return io.ErrShortWrite
	}

	return t.waitForAck(seq, timeout)
}

// waitForAck waits for the ACK of the frame sent with seq. The firmware
// acknowledges with the next sequence it expects.
func (t *HostTransport) waitForAck(seq uint8, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case ack := <-t.ackChan:
		if ack.Sequence != nextSequence(seq) {
			return ErrNak
		}
		atomic.StoreUint32(&t.currentSeq, uint32(ack.Sequence))
		return nil
	case <-timer.C:
		return ErrAckTimeout
	case <-t.stopChan:
		return ErrTransportStopped
	}
}

// ReceiveResponse returns the next response frame
func (t *HostTransport) ReceiveResponse(timeout time.Duration) (Message, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case resp := <-t.responseChan:
		return resp, nil
	case <-timer.C:
		return Message{}, ErrResponseTimeout
	case <-t.stopChan:
		return Message{}, ErrTransportStopped
	}
}

// SetResponseHandler sets a callback run for every response frame
func (t *HostTransport) SetResponseHandler(handler ResponseHandler) {
	t.handlerMu.Lock()
	t.responseHandler = handler
	t.handlerMu.Unlock()
}

func (t *HostTransport) readLoop() {
	defer close(t.doneChan)

	buffer := make([]byte, 256)
	for {
		n, err := t.port.Read(buffer)
		if n > 0 {
			t.inputBuffer.Write(buffer[:n])
			t.processMessages()
		}
		if err == nil {
			continue
		}

		select {
		case <-t.stopChan:
			return
		default:
		}
		if err == io.EOF {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// processMessages parses every complete frame in the input buffer
func (t *HostTransport) processMessages() {
	data := t.inputBuffer.Data()
	for len(data) > 0 {
		if atomic.LoadUint32(&t.isSynchronized) == 0 {
			var found bool
			data, found = skipToSync(data)
			if found {
				atomic.StoreUint32(&t.isSynchronized, 1)
			}
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}

		msg, n, err := ScanFrame(data)
		if err == ErrFrameIncomplete {
			break
		}
		if err != nil {
			atomic.StoreUint32(&t.isSynchronized, 0)
			continue
		}
		data = data[n:]

		// The input buffer is reused, keep our own copy of the payload
		msg.Payload = append([]byte(nil), msg.Payload...)
		t.dispatchMessage(msg)
	}

	if consumed := t.inputBuffer.Available() - len(data); consumed > 0 {
		t.inputBuffer.Pop(consumed)
	}
}

// dispatchMessage routes an empty frame to the ACK channel and anything
// else to the response handler and channel.
func (t *HostTransport) dispatchMessage(msg Message) {
	if len(msg.Payload) == 0 {
		select {
		case t.ackChan <- msg:
		default:
			// Stale ACK nobody waits for
		}
		return
	}

	t.handlerMu.RLock()
	handler := t.responseHandler
	t.handlerMu.RUnlock()
	if handler != nil {
		payload := msg.Payload
		if cmdID, err := DecodeVLQUint(&payload); err == nil {
			_ = handler(uint16(cmdID), &payload)
		}
	}

	select {
	case t.responseChan <- msg:
	default:
		// Full: drop the oldest response
		select {
		case <-t.responseChan:
		default:
		}
		t.responseChan <- msg
	}
}

// Close stops the read loop and closes the port
func (t *HostTransport) Close() error {
	t.stopOnce.Do(func() { close(t.stopChan) })
	err := t.port.Close()
	<-t.doneChan
	return err
}

// Reset drops pending ACKs and responses and restarts the sequence
func (t *HostTransport) Reset() {
	atomic.StoreUint32(&t.isSynchronized, 1)
	atomic.StoreUint32(&t.currentSeq, MessageDest)
	for len(t.ackChan) > 0 {
		<-t.ackChan
	}
	for len(t.responseChan) > 0 {
		<-t.responseChan
	}
}

// GetCurrentSequence returns the sequence the next frame will carry
func (t *HostTransport) GetCurrentSequence() uint8 {
	return uint8(atomic.LoadUint32(&t.currentSeq))
}
