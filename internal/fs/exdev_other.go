//go:build !unix

package fs

func isEXDEV(error) bool {
	return false
}
