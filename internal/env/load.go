package env

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnv reads .env files into the process environment without overriding
// variables that are already set. Missing files are not an error; it reports
// whether any file was loaded.
func LoadEnv(files ...string) (bool, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	loaded := false
	for _, f := range files {
		err := godotenv.Load(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return loaded, err
		}
		loaded = true
	}
	return loaded, nil
}
