//go:build release

package log

// Release builds only write debug output when it is switched on in the config.
const defaultDebug = false
