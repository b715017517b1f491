//go:build !release

package log

const defaultDebug = true
