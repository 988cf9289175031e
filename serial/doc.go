// Package serial provides a minimal, Linux-only serial port for talking to
// simple byte-stream devices such as a chronograph.
//
// The port is opened with synchronous writes, claimed exclusively with
// TIOCEXCL and switched to raw mode: 8N1, no input or output processing, no
// echo or signal characters. Reads return as soon as one byte is available,
// with a 100ms inter-byte timer.
//
// Features:
//   - Raw syscall-based termios setup via golang.org/x/sys/unix
//   - Exclusive access for the lifetime of the Port
//   - Optional tracing of every read and write, with non-printable bytes
//     escaped the way vis(3) renders them
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	port, err := serial.Open(serial.Config{
//	    Device:   "/dev/ttyUSB0",
//	    BaudRate: 1200,
//	    Trace:    os.Stdout,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	// Prints ">>> \rATST143500\r" before the bytes hit the wire.
//	if _, err := port.Write([]byte("\rATST143500\r")); err != nil {
//	    log.Println("Write failed:", err)
//	}
package serial
