// Package git installs packages by cloning git repositories into a packages
// directory.
//
// Each package lives in <dir>/<name>, a git working copy whose manifest
// (package.json by default) supplies the name, display name, version and
// author. The source URL used to install a package is recorded in the
// working copy's git config, so listing reports the same URL that was
// requested even when it carries a "#ref" suffix.
package git

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/matzehuels/gitpkg/pkg/backend"
	"github.com/matzehuels/gitpkg/pkg/errors"
	"github.com/matzehuels/gitpkg/pkg/observability"
)

const (
	DefaultManifestName = "package.json"

	configSection = "gitpkg"
	configURLKey  = "url"
	stagingPrefix = ".staging-"
)

// Options configures a Backend.
type Options struct {
	ManifestName  string        // Manifest filename (default: package.json)
	Depth         int           // Clone depth; 0 clones full history
	CloneAttempts int           // Tries per clone on transient network errors (default: 1)
	RetryDelay    time.Duration // Initial delay between tries (default: 1s)
	Logger        *log.Logger   // Defaults to log.Default()
}

// Backend is a backend.Backend over a directory of git working copies.
type Backend struct {
	dir           string
	manifestName  string
	depth         int
	cloneAttempts int
	retryDelay    time.Duration
	logger        *log.Logger

	mu sync.Mutex // serializes changes to dir
}

// New creates a backend rooted at dir, creating the directory if needed.
func New(dir string, opts Options) (*Backend, error) {
	if dir == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "packages directory cannot be empty")
	}
	if opts.ManifestName == "" {
		opts.ManifestName = DefaultManifestName
	}
	if err := errors.ValidateManifestFilename(opts.ManifestName); err != nil {
		return nil, err
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "cannot create packages directory %s", dir)
	}
	return &Backend{
		dir:           dir,
		manifestName:  opts.ManifestName,
		depth:         opts.Depth,
		cloneAttempts: max(opts.CloneAttempts, 1),
		retryDelay:    opts.RetryDelay,
		logger:        opts.Logger,
	}, nil
}

// Dir returns the packages directory.
func (b *Backend) Dir() string { return b.dir }

// List implements backend.Backend.
func (b *Backend) List(ctx context.Context) backend.Handle {
	return backend.Go(ctx, b.list)
}

// Add implements backend.Backend.
func (b *Backend) Add(ctx context.Context, url string) backend.Handle {
	return backend.Go(ctx, func(ctx context.Context) ([]backend.PackageInfo, error) {
		info, err := b.add(ctx, url)
		if err != nil {
			return nil, err
		}
		return []backend.PackageInfo{info}, nil
	})
}

// Remove implements backend.Backend.
func (b *Backend) Remove(ctx context.Context, name string) backend.Handle {
	return backend.Go(ctx, func(ctx context.Context) ([]backend.PackageInfo, error) {
		return nil, b.remove(name)
	})
}

func (b *Backend) add(ctx context.Context, url string) (backend.PackageInfo, error) {
	if err := errors.ValidateGitURL(url); err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeInvalidURL, err, "cannot install package [%s]", url)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	staging, err := os.MkdirTemp(b.dir, stagingPrefix+"*")
	if err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeInternal, err, "cannot create staging directory")
	}
	defer os.RemoveAll(staging)

	start := time.Now()
	repo, err := b.clone(ctx, staging, url)
	observability.Backend().OnClone(ctx, url, time.Since(start), err)
	if err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeCloneFailed, err, "cannot install package [%s]", url)
	}

	m, err := readManifest(filepath.Join(staging, b.manifestName))
	if err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "cannot install package [%s]", url)
	}
	if err := errors.ValidatePackageName(m.Name); err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeInvalidManifest, err, "cannot install package [%s]", url)
	}

	if err := recordSourceURL(repo, url); err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeInternal, err, "cannot record source of %s", m.Name)
	}

	dest := filepath.Join(b.dir, m.Name)
	if err := os.RemoveAll(dest); err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeRemoveFailed, err, "cannot replace package %s", m.Name)
	}
	if err := os.Rename(staging, dest); err != nil {
		return backend.PackageInfo{}, errors.Wrap(errors.ErrCodeInternal, err, "cannot move package %s into place", m.Name)
	}

	b.logger.Debug("installed package", "name", m.Name, "url", url, "dir", dest)
	return m.info(url, filepath.Join(dest, b.manifestName)), nil
}

func (b *Backend) clone(ctx context.Context, dir, url string) (*git.Repository, error) {
	var repo *git.Repository
	attempt := 0
	err := retry(ctx, b.cloneAttempts, b.retryDelay, func() error {
		attempt++
		if attempt > 1 {
			b.logger.Warn("retrying clone", "url", url, "attempt", attempt)
			if err := clearDir(dir); err != nil {
				return err
			}
		}
		r, err := b.cloneOnce(ctx, dir, url)
		repo = r
		return err
	})
	return repo, err
}

func (b *Backend) cloneOnce(ctx context.Context, dir, url string) (*git.Repository, error) {
	remote, ref := splitRef(url)
	opts := &git.CloneOptions{
		URL:   remote,
		Depth: b.depth,
		Tags:  git.NoTags,
	}
	if ref == "" {
		return git.PlainCloneContext(ctx, dir, false, opts)
	}

	opts.SingleBranch = true
	opts.ReferenceName = plumbing.NewBranchReferenceName(ref)
	repo, err := git.PlainCloneContext(ctx, dir, false, opts)
	if err == nil {
		return repo, nil
	}

	// Not a branch; retry as a tag in a clean directory.
	if rmErr := clearDir(dir); rmErr != nil {
		return nil, rmErr
	}
	opts.ReferenceName = plumbing.NewTagReferenceName(ref)
	if tagRepo, tagErr := git.PlainCloneContext(ctx, dir, false, opts); tagErr == nil {
		return tagRepo, nil
	}
	return nil, err
}

func (b *Backend) list(ctx context.Context) ([]backend.PackageInfo, error) {
	start := time.Now()
	pkgs, err := b.scan(ctx)
	observability.Backend().OnScan(ctx, len(pkgs), time.Since(start), err)
	return pkgs, err
}

func (b *Backend) scan(ctx context.Context) ([]backend.PackageInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries, err := os.ReadDir(b.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(errors.ErrCodeListFailed, err, "cannot read packages directory %s", b.dir)
	}

	var pkgs []backend.PackageInfo
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeListFailed, err, "listing canceled")
		}
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		path := filepath.Join(b.dir, entry.Name())
		repo, err := git.PlainOpen(path)
		if err != nil {
			if !stderrors.Is(err, git.ErrRepositoryNotExists) {
				b.logger.Warn("skipped package directory", "dir", path, "err", err)
			}
			continue
		}

		manifestPath := filepath.Join(path, b.manifestName)
		m, err := readManifest(manifestPath)
		if err != nil {
			b.logger.Warn("skipped package without manifest", "dir", path, "err", err)
			continue
		}

		url, err := sourceURL(repo)
		if err != nil {
			b.logger.Warn("skipped package without source", "dir", path, "err", err)
			continue
		}
		pkgs = append(pkgs, m.info(url, manifestPath))
	}
	return pkgs, nil
}

func (b *Backend) remove(name string) error {
	if err := errors.ValidatePackageName(name); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	dest := filepath.Join(b.dir, name)
	if _, err := os.Stat(dest); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodePackageNotFound, "package %s is not installed", name)
		}
		return errors.Wrap(errors.ErrCodeRemoveFailed, err, "cannot remove package %s", name)
	}
	if err := os.RemoveAll(dest); err != nil {
		return errors.Wrap(errors.ErrCodeRemoveFailed, err, "cannot remove package %s", name)
	}
	b.logger.Debug("removed package", "name", name, "dir", dest)
	return nil
}

// splitRef separates an optional "#ref" suffix from a package URL.
func splitRef(url string) (remote, ref string) {
	remote, ref, _ = strings.Cut(url, "#")
	return remote, ref
}

// recordSourceURL stores the requested URL in the repository config.
func recordSourceURL(repo *git.Repository, url string) error {
	cfg, err := repo.Config()
	if err != nil {
		return err
	}
	cfg.Raw.Section(configSection).SetOption(configURLKey, url)
	return repo.SetConfig(cfg)
}

// sourceURL returns the URL a package was installed from, falling back to
// the origin remote for working copies cloned by other tools.
func sourceURL(repo *git.Repository) (string, error) {
	cfg, err := repo.Config()
	if err != nil {
		return "", err
	}
	if url := cfg.Raw.Section(configSection).Option(configURLKey); url != "" {
		return url, nil
	}
	remote, ok := cfg.Remotes[git.DefaultRemoteName]
	if !ok || len(remote.URLs) == 0 {
		return "", stderrors.New("no origin remote")
	}
	return remote.URLs[0], nil
}

func clearDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

var _ backend.Backend = (*Backend)(nil)
