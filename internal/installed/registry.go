// Package installed maintains the registry of locally installed
// connection modules.
//
// Each installed module version lives in its own subdirectory of the
// modules dir and carries a module.yaml manifest. Multiple installed
// versions of the same module fold into a single InstalledModuleInfo
// record. Malformed manifests are logged and skipped; a broken module
// on disk never takes the registry down.
package installed

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/connhub/console/internal/logging"
	"github.com/connhub/console/internal/shared/types"
)

const manifestName = "module.yaml"

// Registry caches installed-module metadata scanned from disk.
type Registry struct {
	dir     string
	log     *logging.Logger
	modules sync.Map // module id -> *types.InstalledModuleInfo
}

// NewRegistry creates a registry over the given modules directory.
func NewRegistry(dir string, log *logging.Logger) *Registry {
	return &Registry{
		dir: dir,
		log: log,
	}
}

// Rescan walks the modules directory and rebuilds the cache.
func (r *Registry) Rescan() error {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			r.log.Warn("Modules directory not found", zap.String("dir", r.dir))
			r.replaceAll(nil)
			return nil
		}
		return fmt.Errorf("scan modules dir: %w", err)
	}

	byID := make(map[string]*moduleVersions)
	var loaded, failed int

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		path := filepath.Join(r.dir, entry.Name(), manifestName)
		m, err := loadManifest(path)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				r.log.Warn("Skipping module directory",
					zap.String("dir", entry.Name()),
					zap.Error(err),
				)
				failed++
			}
			continue
		}

		fold(byID, m)
		loaded++
	}

	infos := make(map[string]*types.InstalledModuleInfo, len(byID))
	for id, mv := range byID {
		infos[id] = mv.toInfo()
	}
	r.replaceAll(infos)

	r.log.Info("Installed modules scanned",
		zap.Int("modules", len(infos)),
		zap.Int("versions", loaded),
		zap.Int("failed", failed),
	)
	return nil
}

// List returns all installed modules, sorted by id.
func (r *Registry) List() []types.InstalledModuleInfo {
	var infos []types.InstalledModuleInfo
	r.modules.Range(func(_, value interface{}) bool {
		infos = append(infos, *value.(*types.InstalledModuleInfo))
		return true
	})

	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Get returns one installed module by id.
func (r *Registry) Get(id string) (types.InstalledModuleInfo, bool) {
	val, ok := r.modules.Load(id)
	if !ok {
		return types.InstalledModuleInfo{}, false
	}
	return *val.(*types.InstalledModuleInfo), true
}

// Count returns the number of installed modules.
func (r *Registry) Count() int {
	n := 0
	r.modules.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (r *Registry) replaceAll(infos map[string]*types.InstalledModuleInfo) {
	r.modules.Range(func(key, _ interface{}) bool {
		r.modules.Delete(key)
		return true
	})
	for id, info := range infos {
		r.modules.Store(id, info)
	}
}

// moduleVersions accumulates all installed versions of one module id
// during a scan.
type moduleVersions struct {
	newest   *manifest // newest version overall, wins metadata conflicts
	stable   string
	pre      string
	versions []string
	hasHelp  bool
}

func fold(byID map[string]*moduleVersions, m *manifest) {
	mv, ok := byID[m.ID]
	if !ok {
		mv = &moduleVersions{}
		byID[m.ID] = mv
	}

	mv.versions = append(mv.versions, m.Version)
	if m.HasHelp {
		mv.hasHelp = true
	}

	if m.Prerelease {
		if mv.pre == "" || compareVersions(m.Version, mv.pre) > 0 {
			mv.pre = m.Version
		}
	} else {
		if mv.stable == "" || compareVersions(m.Version, mv.stable) > 0 {
			mv.stable = m.Version
		}
	}

	if mv.newest == nil || compareVersions(m.Version, mv.newest.Version) > 0 {
		mv.newest = m
	}
}

func (mv *moduleVersions) toInfo() *types.InstalledModuleInfo {
	sort.Slice(mv.versions, func(i, j int) bool {
		return compareVersions(mv.versions[i], mv.versions[j]) < 0
	})

	m := mv.newest
	return &types.InstalledModuleInfo{
		ID:           m.ID,
		Name:         m.Name,
		Manufacturer: m.Manufacturer,
		Shortname:    m.Shortname,
		Products:     m.Products,
		Versions: types.ModuleVersionInfo{
			StableVersion:     mv.stable,
			PrereleaseVersion: mv.pre,
			InstalledVersions: mv.versions,
		},
		IsLegacy: m.APIVersion < currentAPIVersion,
		HasHelp:  mv.hasHelp,
	}
}
