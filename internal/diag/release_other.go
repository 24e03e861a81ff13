//go:build !unix

package diag

func kernelRelease() string {
	return "unknown"
}
