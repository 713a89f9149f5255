// Package artifacts — плоское хранилище файлов (фото, подписи, PDF) с именами из uuid.
package artifacts

import (
	"errors"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"chantierplus/internal/apperr"
)

var ErrNotFound = errors.New("artifact not found")

// Store пишет каждый артефакт один раз под новым именем <uuid><ext>; без подкаталогов.
type Store struct {
	fs  afero.Fs
	dir string
}

func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Storage(err, "create artifact dir")
	}
	return &Store{fs: fs, dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Put сохраняет содержимое r и возвращает ссылку (имя файла).
func (s *Store) Put(ext string, r io.Reader) (string, error) {
	return s.put(uuid.NewString()+strings.ToLower(ext), r)
}

// PutOwned — как Put, но имя начинается с id компании: <owner>_<uuid><ext>.
func (s *Store) PutOwned(owner uuid.UUID, ext string, r io.Reader) (string, error) {
	return s.put(owner.String()+"_"+uuid.NewString()+strings.ToLower(ext), r)
}

// OwnedBy сообщает, выдана ли ссылка через PutOwned для owner.
func OwnedBy(ref string, owner uuid.UUID) bool {
	return owner != uuid.Nil && strings.HasPrefix(ref, owner.String()+"_")
}

// PutNamed сохраняет под заданным именем; файл не должен существовать.
func (s *Store) PutNamed(name string, r io.Reader) (string, error) {
	return s.put(name, r)
}

func (s *Store) put(name string, r io.Reader) (string, error) {
	p, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	f, err := s.fs.OpenFile(p, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", apperr.Storage(err, "create artifact")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(p)
		return "", apperr.Storage(err, "write artifact")
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(p)
		return "", apperr.Storage(err, "close artifact")
	}
	return name, nil
}

func (s *Store) Get(ref string) ([]byte, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	b, err := afero.ReadFile(s.fs, p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Storage(err, "read artifact")
	}
	return b, nil
}

func (s *Store) Exists(ref string) bool {
	p, err := s.resolve(ref)
	if err != nil {
		return false
	}
	ok, _ := afero.Exists(s.fs, p)
	return ok
}

func (s *Store) Delete(ref string) error {
	p, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return apperr.Storage(err, "delete artifact")
	}
	return nil
}

// ContentType — MIME по расширению ссылки.
func ContentType(ref string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(ref))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// resolve пускает только «голые» имена файлов внутри каталога.
func (s *Store) resolve(ref string) (string, error) {
	if ref == "" || ref == "." || ref == ".." ||
		strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return "", apperr.Validation("invalid artifact reference %q", ref)
	}
	return filepath.Join(s.dir, ref), nil
}
