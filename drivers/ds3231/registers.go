package ds3231

// Default I2C address.
const Address = 0x68

// Register map (datasheet table 1).
const (
	regTime    = 0x00 // seconds..year, 7 bytes
	regAlarm1  = 0x07 // seconds, minutes, hours, day/date
	regAlarm2  = 0x0B // minutes, hours, day/date
	regControl = 0x0E
	regStatus  = 0x0F
	regAging   = 0x10
	regTemp    = 0x11 // MSB + fractional MSB
)

// Control register bits.
const (
	ctrlA1IE  = 1 << 0 // alarm 1 interrupt enable
	ctrlA2IE  = 1 << 1 // alarm 2 interrupt enable
	ctrlINTCN = 1 << 2 // interrupt (not square wave) on INT/SQW
	ctrlCONV  = 1 << 5 // force temperature conversion
	ctrlBBSQW = 1 << 6
	ctrlEOSC  = 1 << 7 // oscillator disabled on battery when set
)

// Status register bits.
const (
	statA1F   = 1 << 0 // alarm 1 fired
	statA2F   = 1 << 1 // alarm 2 fired
	statBSY   = 1 << 2
	statEN32K = 1 << 3
	statOSF   = 1 << 7 // oscillator stop flag
)

// Alarm register bits.
const (
	alarmSkip  = 1 << 7 // AxMx: exclude this register from the match
	alarmDay   = 1 << 6 // DY/DT: match day-of-week instead of day-of-month
	centuryBit = 1 << 7 // month register
	hour12Bit  = 1 << 6 // hours register: 12-hour mode
	hourPMBit  = 1 << 5
)
