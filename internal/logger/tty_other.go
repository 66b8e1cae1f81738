//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package logger

func isTerminalFd(int) bool {
	return false
}
