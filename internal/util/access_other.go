//go:build !unix

package util

import "os"

func checkWritable(path string) error {
	f, err := os.CreateTemp(path, ".panostitch-write-check-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
