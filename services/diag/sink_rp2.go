//go:build rp2040 || rp2350

package diag

import (
	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
)

// UARTSink writes lines to one of the hardware UARTs.
type UARTSink struct {
	u *uartx.UART
}

// NewUARTSink configures the named UART ("uart0" or "uart1") at the given
// baud rate on its default pins. Unknown names fall back to uart0.
func NewUARTSink(name string, baud uint32) *UARTSink {
	hw := uartx.UART0
	if name == "uart1" {
		hw = uartx.UART1
	}
	_ = hw.Configure(uartx.UARTConfig{BaudRate: baud})
	return &UARTSink{u: hw}
}

func (s *UARTSink) WriteLine(line string) {
	_, _ = s.u.Write([]byte(line))
	_, _ = s.u.Write([]byte("\r\n"))
}
