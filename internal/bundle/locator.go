// Package bundle finds the certificate bundle, provisioning profile and
// password for a credential pair on disk.
package bundle

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ErrMissingInput is returned when a pair lacks its .p12 or .mobileprovision.
var ErrMissingInput = errors.New("missing credential files")

const (
	DefaultPassword     = "nezushub.vip"
	DefaultPasswordFile = "password.txt"
)

// Bundle is a loaded credential pair.
type Bundle struct {
	Name        string
	P12Path     string
	ProfilePath string
	P12         []byte
	Profile     []byte
	Password    string
}

// Locator resolves pairs under Root, one directory per pair.
type Locator struct {
	Root            string
	DefaultPassword string
	PasswordFile    string
	Logger          *zap.Logger
}

// NewLocator returns a Locator with defaults for empty settings.
func NewLocator(root, defaultPassword, passwordFile string, logger *zap.Logger) *Locator {
	if root == "" {
		root = "."
	}
	if defaultPassword == "" {
		defaultPassword = DefaultPassword
	}
	if passwordFile == "" {
		passwordFile = DefaultPasswordFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{
		Root:            root,
		DefaultPassword: defaultPassword,
		PasswordFile:    passwordFile,
		Logger:          logger,
	}
}

// Load reads the pair named name from Root/name. The first .p12 and first
// .mobileprovision in lexical order are used. An override password file
// wins over the default password.
func (l *Locator) Load(name string) (*Bundle, error) {
	dir := filepath.Join(l.Root, name)

	p12Path, err := firstWithExt(dir, ".p12")
	if err != nil {
		return nil, err
	}
	profilePath, err := firstWithExt(dir, ".mobileprovision")
	if err != nil {
		return nil, err
	}
	if p12Path == "" || profilePath == "" {
		return nil, fmt.Errorf("%w for %s", ErrMissingInput, name)
	}

	p12, err := os.ReadFile(p12Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate bundle: %w", err)
	}
	profile, err := os.ReadFile(profilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read provisioning profile: %w", err)
	}

	password := l.DefaultPassword
	pwPath := filepath.Join(dir, l.PasswordFile)
	data, err := os.ReadFile(pwPath)
	switch {
	case err == nil:
		password = strings.TrimSpace(string(data))
		l.Logger.Debug("Using password override", zap.String("pair", name))
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read password file: %w", err)
	}

	return &Bundle{
		Name:        name,
		P12Path:     p12Path,
		ProfilePath: profilePath,
		P12:         p12,
		Profile:     profile,
		Password:    password,
	}, nil
}

// firstWithExt returns the first non-directory entry of dir, in lexical
// order, with extension ext. A missing dir has no entries.
func firstWithExt(dir, ext string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("failed to search %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ext {
			continue
		}
		return filepath.Join(dir, e.Name()), nil
	}
	return "", nil
}
