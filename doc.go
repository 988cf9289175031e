// Package chronosync sets an external chronograph to the host's wall clock.
//
// A Syncer samples the local time every half second until the seconds field
// reads zero, then writes a single ATST command carrying the hour and minute
// to the device and stops. The device is never read and never acknowledges.
package chronosync
