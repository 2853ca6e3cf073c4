package prefs

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Store é o análogo do localStorage/cookie do navegador: persiste o
// token e a preferência de tema em arquivos locais, best-effort. Ambos
// podem estar ausentes no primeiro load.
type Store struct {
	dir string
	log *zap.Logger
}

const (
	tokenFile = "token"
	themeFile = "theme"

	ThemeDark  = "dark"
	ThemeLight = "light"
)

func New(dir string, log *zap.Logger) *Store {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Warn("state dir unavailable, preferences will not persist", zap.String("dir", dir), zap.Error(err))
	}
	return &Store{dir: dir, log: log}
}

// Token retorna o token salvo, vazio quando ausente.
func (s *Store) Token() string {
	return s.read(tokenFile)
}

func (s *Store) SaveToken(token string) {
	s.write(tokenFile, token)
}

func (s *Store) ClearToken() {
	if err := os.Remove(filepath.Join(s.dir, tokenFile)); err != nil && !os.IsNotExist(err) {
		s.log.Warn("clear token failed", zap.Error(err))
	}
}

// Theme retorna o tema salvo; default dark, como o original.
func (s *Store) Theme() string {
	if t := s.read(themeFile); t == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

func (s *Store) SaveTheme(theme string) {
	if theme != ThemeDark && theme != ThemeLight {
		return
	}
	s.write(themeFile, theme)
}

func (s *Store) read(name string) string {
	b, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (s *Store) write(name, value string) {
	if err := os.WriteFile(filepath.Join(s.dir, name), []byte(value+"\n"), 0o600); err != nil {
		s.log.Warn("persist preference failed", zap.String("file", name), zap.Error(err))
	}
}
