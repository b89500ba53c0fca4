// Pinmux sink tables
// The sink set and every sink's source count are fixed for the board; the
// index of a sink is the offset of its register inside its bank.
package core

// DefaultSourcesNumber is the source count of a sink that is not specially
// provisioned: source 0 disables it, source 1 routes the default signal.
const DefaultSourcesNumber = 2

// PinSink identifies an output pin whose driving signal is selected by the pinmux.
type PinSink uint8

// Output pin sinks, in register order.
const (
	PinSer0Tx PinSink = iota
	PinSer1Tx
	PinRs232Tx
	PinRs485Tx
	PinScl0
	PinSda0
	PinScl1
	PinSda1
	PinRphG2Sda
	PinRphG3Scl
	PinRphG7Cs1
	PinRphG8Cs0
	PinRphG9Cipo
	PinRphG10Copi
	PinRphG11Sclk
	PinRphTxd0
	PinRphG12
	PinRphG13
	PinAhTmpio0
	PinAhTmpio1
	PinAhTmpio2
	PinAhTmpio3
	PinAhTmpio10
	PinAhTmpio11
	PinAhTmpio12
	PinAhTmpio13
	PinMb2
	PinMb4
	PinMb5
	PinMb6
	PinMb7
	PinMb10
	PinPmod0_1
	PinPmod0_2
	PinPmod0_3
	PinPmod0_4
	PinPmod1_1
	PinPmod1_2
	PinPmod1_3
	PinPmod1_4
	PinMicroSDDat3
	PinMicroSDCmd
	PinMicroSDClk

	NumPinSinks = iota
)

var pinSinkNames = [...]string{
	PinSer0Tx:      "ser0_tx",
	PinSer1Tx:      "ser1_tx",
	PinRs232Tx:     "rs232_tx",
	PinRs485Tx:     "rs485_tx",
	PinScl0:        "scl0",
	PinSda0:        "sda0",
	PinScl1:        "scl1",
	PinSda1:        "sda1",
	PinRphG2Sda:    "rph_g2_sda",
	PinRphG3Scl:    "rph_g3_scl",
	PinRphG7Cs1:    "rph_g7_cs1",
	PinRphG8Cs0:    "rph_g8_cs0",
	PinRphG9Cipo:   "rph_g9_cipo",
	PinRphG10Copi:  "rph_g10_copi",
	PinRphG11Sclk:  "rph_g11_sclk",
	PinRphTxd0:     "rph_txd0",
	PinRphG12:      "rph_g12",
	PinRphG13:      "rph_g13",
	PinAhTmpio0:    "ah_tmpio0",
	PinAhTmpio1:    "ah_tmpio1",
	PinAhTmpio2:    "ah_tmpio2",
	PinAhTmpio3:    "ah_tmpio3",
	PinAhTmpio10:   "ah_tmpio10",
	PinAhTmpio11:   "ah_tmpio11",
	PinAhTmpio12:   "ah_tmpio12",
	PinAhTmpio13:   "ah_tmpio13",
	PinMb2:         "mb2",
	PinMb4:         "mb4",
	PinMb5:         "mb5",
	PinMb6:         "mb6",
	PinMb7:         "mb7",
	PinMb10:        "mb10",
	PinPmod0_1:     "pmod0_1",
	PinPmod0_2:     "pmod0_2",
	PinPmod0_3:     "pmod0_3",
	PinPmod0_4:     "pmod0_4",
	PinPmod1_1:     "pmod1_1",
	PinPmod1_2:     "pmod1_2",
	PinPmod1_3:     "pmod1_3",
	PinPmod1_4:     "pmod1_4",
	PinMicroSDDat3: "microsd_dat3",
	PinMicroSDCmd:  "microsd_cmd",
	PinMicroSDClk:  "microsd_clk",
}

// Fails to compile if the name table and the identity list disagree.
var _ = [1]struct{}{}[len(pinSinkNames)-NumPinSinks]

// SourcesNumber returns how many sources the pin accepts, including
// the "disabled" source 0.
func (p PinSink) SourcesNumber() uint8 {
	switch p {
	case PinSer1Tx, PinRphG2Sda, PinRphG3Scl, PinRphTxd0,
		PinAhTmpio0, PinAhTmpio1, PinMb5, PinMb6:
		return 3
	case PinAhTmpio10, PinAhTmpio11, PinAhTmpio12, PinAhTmpio13,
		PinPmod0_1, PinPmod0_2, PinPmod0_3, PinPmod0_4,
		PinPmod1_1, PinPmod1_2, PinPmod1_3, PinPmod1_4:
		return 4
	}
	return DefaultSourcesNumber
}

// Valid reports whether p names a sink of the pin table.
func (p PinSink) Valid() bool {
	return int(p) < NumPinSinks
}

func (p PinSink) String() string {
	if !p.Valid() {
		return "pin_sink(" + itoa(int(p)) + ")"
	}
	return pinSinkNames[p]
}

// ParsePinSink looks up a pin sink by its table name.
func ParsePinSink(name string) (PinSink, bool) {
	for i, n := range pinSinkNames {
		if n == name {
			return PinSink(i), true
		}
	}
	return 0, false
}

// PinSinkNames returns the pin sink names in register order.
func PinSinkNames() []string {
	names := make([]string, NumPinSinks)
	copy(names, pinSinkNames[:])
	return names
}

// BlockSink identifies a block input whose signal is selected by the pinmux.
type BlockSink uint8

// Block input sinks, in register order.
const (
	BlockUart0Rx BlockSink = iota
	BlockUart1Rx
	BlockUart2Rx
	BlockUart3Rx
	BlockUart4Rx
	BlockI2c0Sda
	BlockI2c0Scl
	BlockI2c1Sda
	BlockI2c1Scl
	BlockSpi0Cipo
	BlockSpi1Cipo
	BlockSpi2Cipo
	BlockGpio1Ios2
	BlockGpio1Ios3
	BlockGpio1Ios12
	BlockGpio1Ios13
	BlockGpio2Ios0
	BlockGpio2Ios1
	BlockGpio3Ios0
	BlockGpio3Ios1
	BlockGpio3Ios2
	BlockGpio3Ios3

	NumBlockSinks = iota
)

var blockSinkNames = [...]string{
	BlockUart0Rx:    "uart_0_rx",
	BlockUart1Rx:    "uart_1_rx",
	BlockUart2Rx:    "uart_2_rx",
	BlockUart3Rx:    "uart_3_rx",
	BlockUart4Rx:    "uart_4_rx",
	BlockI2c0Sda:    "i2c_0_sda",
	BlockI2c0Scl:    "i2c_0_scl",
	BlockI2c1Sda:    "i2c_1_sda",
	BlockI2c1Scl:    "i2c_1_scl",
	BlockSpi0Cipo:   "spi_0_cipo",
	BlockSpi1Cipo:   "spi_1_cipo",
	BlockSpi2Cipo:   "spi_2_cipo",
	BlockGpio1Ios2:  "gpio_1_ios_2",
	BlockGpio1Ios3:  "gpio_1_ios_3",
	BlockGpio1Ios12: "gpio_1_ios_12",
	BlockGpio1Ios13: "gpio_1_ios_13",
	BlockGpio2Ios0:  "gpio_2_ios_0",
	BlockGpio2Ios1:  "gpio_2_ios_1",
	BlockGpio3Ios0:  "gpio_3_ios_0",
	BlockGpio3Ios1:  "gpio_3_ios_1",
	BlockGpio3Ios2:  "gpio_3_ios_2",
	BlockGpio3Ios3:  "gpio_3_ios_3",
}

var _ = [1]struct{}{}[len(blockSinkNames)-NumBlockSinks]

// SourcesNumber returns how many sources the block input accepts, including
// the "disabled" source 0.
func (b BlockSink) SourcesNumber() uint8 {
	switch b {
	case BlockUart1Rx, BlockUart2Rx, BlockI2c1Sda, BlockI2c1Scl,
		BlockSpi1Cipo, BlockSpi2Cipo:
		return 3
	case BlockGpio3Ios0, BlockGpio3Ios1, BlockGpio3Ios2, BlockGpio3Ios3:
		return 3
	case BlockUart0Rx:
		return 4
	}
	return DefaultSourcesNumber
}

// Valid reports whether b names a sink of the block table.
func (b BlockSink) Valid() bool {
	return int(b) < NumBlockSinks
}

func (b BlockSink) String() string {
	if !b.Valid() {
		return "block_sink(" + itoa(int(b)) + ")"
	}
	return blockSinkNames[b]
}

// ParseBlockSink looks up a block sink by its table name.
func ParseBlockSink(name string) (BlockSink, bool) {
	for i, n := range blockSinkNames {
		if n == name {
			return BlockSink(i), true
		}
	}
	return 0, false
}

// BlockSinkNames returns the block sink names in register order.
func BlockSinkNames() []string {
	names := make([]string, NumBlockSinks)
	copy(names, blockSinkNames[:])
	return names
}
