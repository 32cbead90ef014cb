package secrets

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

// Source describes where a secret may come from. The first non-empty source
// wins in the order File, Value, Env.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// File points to a file containing the secret value.
	File string
	// Value is an inline secret value provided via configuration or flags.
	Value string
	// Env names an environment variable consulted as the last resort.
	Env string
}

// Load resolves the secret described by src. The returned secret is always
// trimmed. An error is returned when no source yields a usable value, so
// callers can refuse to start instead of running without credentials.
func Load(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", eris.Wrapf(err, "reading %s from file %q", name, file)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", eris.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	if secret := strings.TrimSpace(src.Value); secret != "" {
		return secret, nil
	}

	if env := strings.TrimSpace(src.Env); env != "" {
		if secret := strings.TrimSpace(os.Getenv(env)); secret != "" {
			return secret, nil
		}
		return "", eris.Errorf("%s is not configured (set %s)", name, env)
	}

	return "", eris.Errorf("%s is not configured", name)
}
