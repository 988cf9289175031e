package serial

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// DefaultBaudRate is used when Config.BaudRate is zero.
const DefaultBaudRate = 1200

// Port is an exclusively held serial device in raw mode.
// It is not safe for concurrent use by multiple goroutines.
type Port struct {
	fd        int
	file      *os.File
	closeOnce sync.Once
	config    Config
	logger    *slog.Logger
}

// Config holds configuration parameters for opening a serial port.
type Config struct {
	Device   string
	BaudRate int       // default 1200
	Trace    io.Writer // receives "<<< " and ">>> " lines; nil disables tracing
	Logger   *slog.Logger
}

// Open opens cfg.Device and configures it with Configure.
// The returned Port must be closed by the caller.
func Open(cfg Config) (*Port, error) {
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// O_NONBLOCK keeps the open from waiting on carrier detect; it is
	// cleared once the line is configured.
	fd, err := unix.Open(cfg.Device, unix.O_RDWR|unix.O_SYNC|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &Error{Kind: ErrDeviceOpen, Op: "open", Device: cfg.Device, Err: err}
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		unix.Close(fd)
		return nil, &Error{Kind: ErrDeviceOpen, Op: "stat", Device: cfg.Device, Err: err}
	}
	if st.Mode&unix.S_IFMT != unix.S_IFCHR {
		unix.Close(fd)
		return nil, &Error{Kind: ErrDeviceOpen, Op: "open", Device: cfg.Device, Err: unix.ENOTTY}
	}

	p := &Port{
		fd:     fd,
		file:   os.NewFile(uintptr(fd), cfg.Device),
		config: cfg,
		logger: cfg.Logger.With("device", cfg.Device),
	}

	if err := p.Configure(cfg.BaudRate); err != nil {
		p.Close()
		return nil, err
	}

	// Turn back into blocking mode now that config is done
	if err := unix.SetNonblock(fd, false); err != nil {
		p.Close()
		return nil, &Error{Kind: ErrTermios, Op: "fcntl(O_NONBLOCK)", Device: cfg.Device, Err: err}
	}

	p.logger.Debug("serial port opened", "baud", cfg.BaudRate)
	return p, nil
}

// Configure claims the device exclusively and puts it into raw 8N1 mode at
// the given baud rate. Reads return once at least one byte is available, with
// a 100ms inter-byte timer.
func (p *Port) Configure(baudRate int) error {
	dev := p.config.Device

	if err := unix.IoctlSetInt(p.fd, unix.TIOCEXCL, 0); err != nil {
		return &Error{Kind: ErrExclusiveLock, Op: "ioctl(TIOCEXCL)", Device: dev, Err: err}
	}

	baud, err := baudToUnix(baudRate)
	if err != nil {
		return &Error{Kind: ErrTermios, Op: "cfsetspeed", Device: dev, Err: err}
	}

	termios, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return &Error{Kind: ErrTermios, Op: "tcgetattr", Device: dev, Err: err}
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	termios.Cflag &^= unix.CSIZE | unix.PARENB | unix.CSTOPB
	termios.Cflag |= unix.CS8 | unix.CREAD

	// Baud rate
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// Fetch bytes as they become available
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 1

	// TCSETSF drains output and flushes pending input first, like TCSAFLUSH.
	if err := unix.IoctlSetTermios(p.fd, unix.TCSETSF, termios); err != nil {
		return &Error{Kind: ErrTermios, Op: "tcsetattr", Device: dev, Err: err}
	}

	p.config.BaudRate = baudRate
	return nil
}

// Read reads up to len(b) bytes. It returns 0 and a nil error when the read
// timer expires with nothing received.
func (p *Port) Read(b []byte) (int, error) {
	n, err := p.file.Read(b)
	if err == io.EOF && n == 0 {
		err = nil
	}
	if n > 0 {
		p.trace("<<< ", b[:n])
	}
	return n, err
}

// Write writes b to the device. The bytes are traced before the write is
// attempted. A short write is reported as io.ErrShortWrite.
func (p *Port) Write(b []byte) (int, error) {
	p.trace(">>> ", b)

	n, err := p.file.Write(b)
	if err != nil {
		var pe *os.PathError
		if errors.As(err, &pe) {
			err = pe.Err
		}
		return n, &Error{Kind: ErrWrite, Op: "write", Device: p.config.Device, Err: err}
	}
	return n, nil
}

// Device returns the path the port was opened with.
func (p *Port) Device() string {
	return p.config.Device
}

// BaudRate returns the configured line speed.
func (p *Port) BaudRate() int {
	return p.config.BaudRate
}

// Close releases the device.
// Safe to call multiple times; subsequent calls are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		if p.file != nil {
			err = p.file.Close()
		}
		p.logger.Debug("serial port closed")
	})
	return err
}

func (p *Port) trace(prefix string, b []byte) {
	if p.config.Trace == nil {
		return
	}
	fmt.Fprintf(p.config.Trace, "%s%s\n", prefix, Vis(b))
}

func baudToUnix(baud int) (uint32, error) {
	switch baud {
	case 50:
		return unix.B50, nil
	case 75:
		return unix.B75, nil
	case 110:
		return unix.B110, nil
	case 134:
		return unix.B134, nil
	case 150:
		return unix.B150, nil
	case 200:
		return unix.B200, nil
	case 300:
		return unix.B300, nil
	case 600:
		return unix.B600, nil
	case 1200:
		return unix.B1200, nil
	case 1800:
		return unix.B1800, nil
	case 2400:
		return unix.B2400, nil
	case 4800:
		return unix.B4800, nil
	case 9600:
		return unix.B9600, nil
	case 19200:
		return unix.B19200, nil
	case 38400:
		return unix.B38400, nil
	case 57600:
		return unix.B57600, nil
	case 115200:
		return unix.B115200, nil
	case 230400:
		return unix.B230400, nil
	case 460800:
		return unix.B460800, nil
	case 500000:
		return unix.B500000, nil
	case 576000:
		return unix.B576000, nil
	case 921600:
		return unix.B921600, nil
	case 1000000:
		return unix.B1000000, nil
	case 1152000:
		return unix.B1152000, nil
	case 1500000:
		return unix.B1500000, nil
	case 2000000:
		return unix.B2000000, nil
	case 2500000:
		return unix.B2500000, nil
	case 3000000:
		return unix.B3000000, nil
	case 3500000:
		return unix.B3500000, nil
	case 4000000:
		return unix.B4000000, nil
	default:
		return 0, unix.EINVAL
	}
}
