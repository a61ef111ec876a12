package actions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atomikpanda/pass/internal/ageutil"
	"github.com/atomikpanda/pass/internal/capability"
)

// WriteSecretFile decrypts the age ciphertext at src with key and writes the
// plaintext to path with perm. The plaintext goes to a private temporary file
// next to path, gets perm applied, and is then renamed over path, so no reader
// sees it with the old mode of an existing file.
func WriteSecretFile(src, path string, key *ageutil.Key, perm PathPermissions) capability.Action {
	return capability.ActionFunc(fmt.Sprintf("write secret %s (%s)", path, perm), func() error {
		if key == nil {
			return errors.New("secret " + src + " requires an age key")
		}
		plaintext, err := key.DecryptFile(ageutil.CiphertextPath(src))
		if err != nil {
			return err
		}
		return writePrivate(path, plaintext, perm)
	})
}

func writePrivate(path string, content []byte, perm PathPermissions) (err error) {
	// CreateTemp opens the file with mode 0600.
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := perm.apply(tmp); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
