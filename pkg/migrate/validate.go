package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

const (
	gooseUp   = "-- +goose Up"
	gooseDown = "-- +goose Down"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.sql$`)

// ValidateDir checks the migrations on disk; see ValidateFS.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateFS checks every .sql file under dir and reports all problems at
// once: filenames must be YYYYMMDDHHMMSS_slug.sql, versions and slugs unique,
// and each file must carry a goose Up section followed by a Down section.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var (
		errs     error
		versions = map[string]string{}
		slugs    = map[string]string{}
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: filename must match YYYYMMDDHHMMSS_name.sql", name))
			continue
		}
		version, slug := m[1], m[2]
		if prev, ok := versions[version]; ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: version %s already used by %s", name, version, prev))
		}
		versions[version] = name
		if prev, ok := slugs[slug]; ok {
			errs = multierr.Append(errs, fmt.Errorf("%s: name %q already used by %s", name, slug, prev))
		}
		slugs[slug] = name

		body, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		errs = multierr.Append(errs, checkSections(name, string(body)))
	}

	if errs == nil && len(versions) == 0 {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return errs
}

func checkSections(name, body string) error {
	up := strings.Index(body, gooseUp)
	down := strings.Index(body, gooseDown)
	switch {
	case up < 0:
		return fmt.Errorf("%s: missing %q", name, gooseUp)
	case down < 0:
		return fmt.Errorf("%s: missing %q", name, gooseDown)
	case down < up:
		return fmt.Errorf("%s: %q must come before %q", name, gooseUp, gooseDown)
	}
	return nil
}
