// Package filesystem stores index snapshots as versioned directories.
//
// Layout under the root directory:
//
//	CURRENT                  name of the current version
//	<version>/vectors.idx    flat vector index
//	<version>/meta.db        SQLite metadata
//	<version>/manifest.json  domain.SnapshotInfo
//	.staging-<version>/      a build being written
//
// A version directory is complete before it is renamed into place, and the
// CURRENT pointer is replaced with an atomic rename. Readers resolve CURRENT
// once per query and therefore see either the old snapshot or the new one.
package filesystem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/mediamind/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/mediamind/internal/adapters/driven/vectorindex/flat"
	"github.com/custodia-labs/mediamind/internal/core/domain"
	"github.com/custodia-labs/mediamind/internal/core/ports/driven"
	"github.com/custodia-labs/mediamind/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SnapshotStore = (*Store)(nil)

const (
	currentFile   = "CURRENT"
	vectorsFile   = "vectors.idx"
	metaFile      = "meta.db"
	manifestFile  = "manifest.json"
	stagingPrefix = ".staging-"

	// maxPointerReads bounds how often resolve follows a moving pointer.
	maxPointerReads = 3
)

// errVersionGone reports a version directory removed by retention.
var errVersionGone = errors.New("snapshot version removed")

// Store publishes and serves snapshots from a directory.
type Store struct {
	root string
	keep int
	now  func() time.Time

	// publishing serialises Publish calls.
	publishing sync.Mutex

	mu     sync.Mutex
	loaded *snapshot
}

// Option configures a Store.
type Option func(*Store)

// WithRetention sets how many versions are kept after a publish.
func WithRetention(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.keep = n
		}
	}
}

// WithClock overrides the clock used for version names.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store rooted at dir, creating it if needed.
func New(dir string, opts ...Option) (*Store, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("creating snapshot directory: %w", err)
	}
	s := &Store{
		root: dir,
		keep: domain.DefaultKeepSnapshots,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Publish writes a complete snapshot and makes it current.
func (s *Store) Publish(ctx context.Context, req driven.PublishRequest) (*domain.SnapshotInfo, error) {
	s.publishing.Lock()
	defer s.publishing.Unlock()

	// 1. Validate the id bijection before touching disk
	index, err := buildIndex(req.Vectors)
	if err != nil {
		return nil, err
	}
	metaIDs := make([]int64, len(req.Metas))
	for i, m := range req.Metas {
		metaIDs[i] = m.ID
	}
	if err := domain.CheckIdentity(index.IDs(), metaIDs); err != nil {
		return nil, err
	}

	info := domain.SnapshotInfo{
		Version:    s.newVersion(),
		Records:    index.Len(),
		Dimensions: index.Dimensions(),
		Model:      req.Model,
		CreatedAt:  s.now().UTC(),
	}

	// 2. Write everything into a staging directory
	staging := filepath.Join(s.root, stagingPrefix+info.Version)
	if err := os.MkdirAll(staging, 0700); err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	if err := s.writeSnapshot(ctx, staging, index, req.Metas, info); err != nil {
		os.RemoveAll(staging)
		return nil, err
	}

	// 3. Move it into place, then swap the pointer
	final := filepath.Join(s.root, info.Version)
	if err := os.Rename(staging, final); err != nil {
		os.RemoveAll(staging)
		return nil, fmt.Errorf("installing snapshot: %w", err)
	}
	if err := s.writeCurrent(info.Version); err != nil {
		return nil, err
	}
	logger.Debug("Snapshot %s is current (%d records, %d dims)", info.Version, info.Records, info.Dimensions)

	// 4. Drop versions beyond the retention count
	s.prune(info.Version)
	return &info, nil
}

func buildIndex(vectors []domain.VectorRecord) (*flat.Index, error) {
	index := flat.New(0)
	for _, v := range vectors {
		if err := index.Add(v.ID, v.Embedding); err != nil {
			if errors.Is(err, flat.ErrDuplicateID) {
				return nil, &domain.IndexConsistencyError{Detail: err.Error()}
			}
			return nil, fmt.Errorf("building index: %w", err)
		}
	}
	return index, nil
}

func (s *Store) writeSnapshot(
	ctx context.Context, dir string, index *flat.Index, metas []domain.MetaRecord, info domain.SnapshotInfo,
) error {
	if err := flat.WriteFile(filepath.Join(dir, vectorsFile), index); err != nil {
		return err
	}
	if err := sqlite.WriteMetaDB(ctx, filepath.Join(dir, metaFile), metas); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	manifest, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling manifest: %w", err)
	}
	if err := writeFileSync(filepath.Join(dir, manifestFile), manifest); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return syncDir(dir)
}

// writeCurrent replaces the pointer file atomically.
func (s *Store) writeCurrent(version string) error {
	tmp := filepath.Join(s.root, currentFile+".tmp")
	if err := writeFileSync(tmp, []byte(version+"\n")); err != nil {
		return fmt.Errorf("writing pointer: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.root, currentFile)); err != nil {
		return fmt.Errorf("swapping pointer: %w", err)
	}
	return syncDir(s.root)
}

func (s *Store) newVersion() string {
	return s.now().UTC().Format("20060102T150405.000000000Z") + "-" + uuid.New().String()[:8]
}

// CurrentVersion returns the version named by the pointer file.
func (s *Store) CurrentVersion() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.root, currentFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", domain.ErrNoSnapshot
	}
	if err != nil {
		return "", fmt.Errorf("reading pointer: %w", err)
	}
	version := strings.TrimSpace(string(data))
	if version == "" || strings.ContainsAny(version, `/\`) {
		return "", fmt.Errorf("%w: malformed pointer %q", domain.ErrIndexConsistency, version)
	}
	return version, nil
}

// Current returns the current snapshot. Loaded snapshots are cached until
// the pointer moves; callers must Close the returned snapshot.
func (s *Store) Current(ctx context.Context) (driven.Snapshot, error) {
	version, err := s.CurrentVersion()
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, version)
}

// resolve opens version. A version pruned between reading the pointer and
// loading it means a newer one was published, so the pointer is read again.
// Only a directory the pointer still names is reported as missing.
func (s *Store) resolve(ctx context.Context, version string) (driven.Snapshot, error) {
	for attempt := 0; ; attempt++ {
		snap, err := s.open(ctx, version)
		if err == nil {
			return snap, nil
		}
		if !errors.Is(err, errVersionGone) {
			return nil, err
		}
		next, err := s.CurrentVersion()
		if err != nil {
			return nil, err
		}
		if next == version || attempt == maxPointerReads {
			return nil, fmt.Errorf("%w: snapshot %s named by %s is missing", domain.ErrIndexConsistency, next, currentFile)
		}
		logger.Debug("Snapshot %s was pruned, following %s to %s", version, currentFile, next)
		version = next
	}
}

func (s *Store) open(ctx context.Context, version string) (*snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded != nil && s.loaded.info.Version == version {
		s.loaded.acquire()
		return s.loaded, nil
	}

	dir := filepath.Join(s.root, version)
	snap, err := load(ctx, dir)
	if err != nil {
		if _, statErr := os.Stat(dir); errors.Is(statErr, os.ErrNotExist) {
			return nil, errVersionGone
		}
		return nil, err
	}
	logger.Debug("Loaded snapshot %s", version)

	// The store holds one reference; in-flight readers of the previous
	// snapshot keep it open until they close it.
	if s.loaded != nil {
		s.loaded.Close()
	}
	s.loaded = snap
	snap.acquire()
	return snap, nil
}

// Close releases the cached snapshot.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded == nil {
		return nil
	}
	err := s.loaded.Close()
	s.loaded = nil
	return err
}

// Versions returns the installed versions, oldest first.
func (s *Store) Versions() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			versions = append(versions, e.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

func (s *Store) prune(current string) {
	versions, err := s.Versions()
	if err != nil {
		logger.Warn("Prune snapshots: %v", err)
		return
	}
	excess := len(versions) - s.keep
	for _, v := range versions {
		if excess <= 0 {
			break
		}
		if v == current {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.root, v)); err != nil {
			logger.Warn("Remove snapshot %s: %v", v, err)
			continue
		}
		logger.Debug("Removed snapshot %s", v)
		excess--
	}
}

// ==================== Snapshot ====================

// snapshot is a loaded version. It is reference counted so a pointer swap
// never closes the metadata database under an in-flight query.
type snapshot struct {
	info  domain.SnapshotInfo
	index *flat.Index
	meta  *sqlite.MetaStore
	refs  atomic.Int64
}

var _ driven.Snapshot = (*snapshot)(nil)

func load(ctx context.Context, dir string) (*snapshot, error) {
	var info domain.SnapshotInfo
	manifest, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("%w: reading manifest: %v", domain.ErrIndexConsistency, err)
	}
	if err := json.Unmarshal(manifest, &info); err != nil {
		return nil, fmt.Errorf("%w: parsing manifest: %v", domain.ErrIndexConsistency, err)
	}

	index, err := flat.ReadFile(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexConsistency, err)
	}
	meta, err := sqlite.OpenMetaStore(filepath.Join(dir, metaFile))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexConsistency, err)
	}

	metaIDs, err := meta.IDs(ctx)
	if err != nil {
		meta.Close()
		return nil, err
	}
	if err := domain.CheckIdentity(index.IDs(), metaIDs); err != nil {
		meta.Close()
		return nil, fmt.Errorf("snapshot %s: %w", info.Version, err)
	}

	snap := &snapshot{info: info, index: index, meta: meta}
	snap.refs.Store(1)
	return snap, nil
}

func (s *snapshot) acquire() {
	s.refs.Add(1)
}

func (s *snapshot) Info() domain.SnapshotInfo { return s.info }

func (s *snapshot) Index() driven.VectorIndex { return s.index }

func (s *snapshot) Metadata() driven.MetadataStore { return s.meta }

// Close drops one reference and closes the database with the last one.
func (s *snapshot) Close() error {
	if s.refs.Add(-1) == 0 {
		return s.meta.Close()
	}
	return nil
}

// ==================== Helpers ====================

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	// Some filesystems do not support syncing directories.
	if err := d.Sync(); err != nil && !errors.Is(err, os.ErrInvalid) {
		logger.Debug("Sync %s: %v", dir, err)
	}
	return nil
}
