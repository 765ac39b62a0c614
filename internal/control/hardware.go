package control

// Hardware is the control interface of one sound card: the info/read/write
// triad plus the dB conversion queries backed by the driver's TLV tables.
// All dB values are integer hundredths of a dB, as ALSA reports them.
//
// Implementations are not safe for concurrent use; the panel confines all
// hardware access to its event loop.
type Hardware interface {
	Info(id ID) (Info, error)
	Read(id ID) ([]int, error)
	Write(id ID, values []int) error

	// DBRange returns the lowest and highest gain of the element
	DBRange(id ID) (min, max int, err error)
	// ToDB converts a raw value to gain
	ToDB(id ID, raw int) (int, error)
	// FromDB converts a gain to the nearest raw value, rounding up when dir > 0
	FromDB(id ID, cdb int, dir int) (int, error)

	Close() error
}

// MuteDB is the gain ALSA reports for a muted (negative infinity) step
const MuteDB = -9999999
