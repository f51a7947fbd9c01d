// Package flatfile stores contacts as a newline-delimited text file, one
// "name;email" line per contact.
package flatfile

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"contactbook/contact"
)

const separator = ";"

type Option func(r *ContactRepository)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(r *ContactRepository) {
		r.logger = l
	}
}

// ContactRepository implements contact.Repository on top of a single file.
// Appends add one line, deletes rewrite the whole file from the remaining
// list, so after any successful delete the file mirrors the working list.
type ContactRepository struct {
	path   string
	logger *zap.SugaredLogger
}

func NewContactRepository(path string, opts ...Option) *ContactRepository {
	r := &ContactRepository{
		path:   path,
		logger: zap.NewNop().Sugar(),
	}
	for _, fn := range opts {
		fn(r)
	}
	return r
}

// AllContacts reads every well-formed line. A missing file is an empty
// list; malformed lines are skipped.
func (r *ContactRepository) AllContacts(ctx context.Context) ([]contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []contact.Contact{}, nil
		}
		return nil, fmt.Errorf("flatfile: opening %s: %w", r.path, err)
	}
	defer f.Close()

	contacts := []contact.Contact{}
	skipped := 0
	// Lines have no length limit: names are unbounded.
	reader := bufio.NewReader(f)
	for line := 1; ; line++ {
		text, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("flatfile: reading %s: %w", r.path, err)
		}
		if text == "" && err != nil {
			break
		}

		c, ok := parseLine(strings.TrimSuffix(text, "\n"))
		if !ok {
			skipped++
			r.logger.Debugw("skipping malformed contact line", "path", r.path, "line", line)
		} else {
			contacts = append(contacts, c)
		}

		if err != nil {
			break
		}
	}

	if skipped > 0 {
		r.logger.Warnw("skipped malformed contact lines", "path", r.path, "skipped", skipped)
	}
	return contacts, nil
}

// CreateContact appends c as one line.
func (r *ContactRepository) CreateContact(ctx context.Context, c contact.Contact) (contact.Contact, error) {
	if err := ctx.Err(); err != nil {
		return contact.Contact{}, err
	}

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return contact.Contact{}, fmt.Errorf("flatfile: creating directory: %w", err)
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return contact.Contact{}, fmt.Errorf("flatfile: opening %s: %w", r.path, err)
	}

	if _, err := f.WriteString(formatLine(c)); err != nil {
		_ = f.Close()
		return contact.Contact{}, fmt.Errorf("flatfile: appending to %s: %w", r.path, err)
	}
	if err := f.Close(); err != nil {
		return contact.Contact{}, fmt.Errorf("flatfile: closing %s: %w", r.path, err)
	}

	return contact.Contact{Name: c.Name, Email: c.Email}, nil
}

// DeleteContact recreates the file from remaining. The new content is
// written to a temporary file next to the original and renamed over it.
func (r *ContactRepository) DeleteContact(ctx context.Context, _ contact.Contact, remaining []contact.Contact) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, c := range remaining {
		buf.WriteString(formatLine(c))
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("flatfile: creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*")
	if err != nil {
		return fmt.Errorf("flatfile: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flatfile: writing %s: %w", tmpPath, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flatfile: syncing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flatfile: closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flatfile: chmod %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("flatfile: replacing %s: %w", r.path, err)
	}
	return nil
}

func formatLine(c contact.Contact) string {
	return c.Name + separator + c.Email + "\n"
}

// parseLine accepts exactly two non-blank fields.
func parseLine(line string) (contact.Contact, bool) {
	fields := strings.Split(strings.TrimSuffix(line, "\r"), separator)
	if len(fields) != 2 {
		return contact.Contact{}, false
	}

	name := strings.TrimSpace(fields[0])
	email := strings.TrimSpace(fields[1])
	if name == "" || email == "" {
		return contact.Contact{}, false
	}
	return contact.Contact{Name: name, Email: email}, true
}
